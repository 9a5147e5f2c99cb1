package auth_test

import (
	"context"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/jrsteele09/go-waterres-client/apiclient"
	"github.com/jrsteele09/go-waterres-client/auth"
	"github.com/jrsteele09/go-waterres-client/internal/apitest"
	apperrors "github.com/jrsteele09/go-waterres-client/internal/errors"
	"github.com/jrsteele09/go-waterres-client/kvstore"
	"github.com/jrsteele09/go-waterres-client/tokenstore"
	"github.com/stretchr/testify/require"
)

type nopNavigator struct{}

func (nopNavigator) RedirectToLogin()        {}
func (nopNavigator) PromptReauthentication() {}

type nopNotifier struct{}

func (nopNotifier) Notify(apiclient.Kind, string) {}

// testFixture holds all test dependencies
type testFixture struct {
	backend *apitest.Server
	kv      *kvstore.InMemoryStore
	store   *tokenstore.Store
	client  *apiclient.Client
	session *auth.Session
}

func setupTestFixture(t *testing.T) *testFixture {
	t.Helper()

	backend := apitest.NewServer(t)
	kv := kvstore.NewInMemoryStore()
	f := &testFixture{backend: backend, kv: kv}
	f.session, f.client, f.store = f.newSession(t)
	return f
}

// newSession builds a fresh client and session over the fixture's storage,
// as a restarted process would.
func (f *testFixture) newSession(t *testing.T, options ...auth.SessionOption) (*auth.Session, *apiclient.Client, *tokenstore.Store) {
	t.Helper()

	store := tokenstore.New(f.kv, tokenstore.WithPassphrase("test passphrase"))
	client := apiclient.New(f.backend.BaseURL(),
		apiclient.WithHTTPClient(f.backend.Client()),
		apiclient.WithNavigator(nopNavigator{}),
		apiclient.WithNotifier(nopNotifier{}),
	)
	session, err := auth.NewSession(client, store, options...)
	require.NoError(t, err)
	return session, client, store
}

func (f *testFixture) login(t *testing.T) *auth.LoginResponse {
	t.Helper()
	resp, err := f.session.Login(context.Background(), auth.Credentials{Username: apitest.Username, Password: apitest.Password})
	require.NoError(t, err)
	return resp
}

func TestNewSessionRequiresDependencies(t *testing.T) {
	_, err := auth.NewSession(nil, tokenstore.New(kvstore.NewInMemoryStore()))
	require.Error(t, err)

	_, err = auth.NewSession(apiclient.New(""), nil)
	require.Error(t, err)
}

func TestLogin(t *testing.T) {
	ctx := context.Background()

	t.Run("success stores tokens and grants", func(t *testing.T) {
		f := setupTestFixture(t)
		resp := f.login(t)

		require.Equal(t, auth.StateAuthenticated, f.session.State())
		require.True(t, f.session.IsAuthenticated())
		require.Equal(t, resp.AccessToken, f.session.AccessToken())
		require.True(t, f.session.HasRefreshToken())

		stored, err := f.store.AccessToken(ctx)
		require.NoError(t, err)
		require.Equal(t, resp.AccessToken, stored)
		storedRefresh, err := f.store.RefreshToken(ctx)
		require.NoError(t, err)
		require.Equal(t, resp.RefreshToken, storedRefresh)

		require.Equal(t, apitest.Username, f.session.User().Username)
		require.Equal(t, "System Administrator", f.session.User().DisplayName())
		require.True(t, f.session.HasPermission("system:user:edit"))
		require.True(t, f.session.HasAllPermissions(apitest.Permissions...))
		require.False(t, f.session.HasPermission("system:role:delete"))
		require.True(t, f.session.HasRole(apitest.RoleName))
	})

	t.Run("invalid form is rejected before any call", func(t *testing.T) {
		f := setupTestFixture(t)
		_, err := f.session.Login(ctx, auth.Credentials{Username: "", Password: "x"})
		require.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
		require.ErrorIs(t, err, apperrors.ErrValidation)
		require.Zero(t, f.backend.CallCount(http.MethodPost, auth.LoginPath))
		require.Equal(t, auth.StateAnonymous, f.session.State())
	})

	t.Run("wrong password stays anonymous", func(t *testing.T) {
		f := setupTestFixture(t)
		_, err := f.session.Login(ctx, auth.Credentials{Username: apitest.Username, Password: "Wrong#2024"})
		require.ErrorIs(t, err, apperrors.ErrUnauthorized)
		require.Equal(t, auth.StateAnonymous, f.session.State())
		require.Empty(t, f.session.AccessToken())

		stored, err := f.store.AccessToken(ctx)
		require.NoError(t, err)
		require.Empty(t, stored)
	})

	t.Run("remember saves and forgets credentials", func(t *testing.T) {
		f := setupTestFixture(t)
		_, err := f.session.Login(ctx, auth.Credentials{Username: apitest.Username, Password: apitest.Password, Remember: true})
		require.NoError(t, err)

		creds, err := f.session.RememberedCredentials(ctx)
		require.NoError(t, err)
		require.Equal(t, &auth.Credentials{Username: apitest.Username, Password: apitest.Password, Remember: true}, creds)

		f.login(t)
		creds, err = f.session.RememberedCredentials(ctx)
		require.NoError(t, err)
		require.Nil(t, creds)
	})
}

func TestLoginThenInitializeRestoresSession(t *testing.T) {
	f := setupTestFixture(t)
	f.login(t)
	before := f.session.Grants()

	restored, _, _ := f.newSession(t)
	require.Equal(t, auth.StateAnonymous, restored.State())

	restored.Initialize(context.Background())

	require.Equal(t, auth.StateAuthenticated, restored.State())
	require.True(t, restored.IsAuthenticated())
	require.Equal(t, f.session.AccessToken(), restored.AccessToken())
	require.Equal(t, before.Permissions.Sorted(), restored.Grants().Permissions.Sorted())
	require.Equal(t, before.Roles.Sorted(), restored.Grants().Roles.Sorted())
	require.Equal(t, 1, f.backend.CallCount(http.MethodPost, auth.LoginPath))
}

func TestInitialize(t *testing.T) {
	ctx := context.Background()

	t.Run("nothing stored", func(t *testing.T) {
		f := setupTestFixture(t)
		f.session.Initialize(ctx)
		require.Equal(t, auth.StateAnonymous, f.session.State())
		require.Zero(t, f.backend.CallCount(http.MethodGet, auth.MePath))
	})

	t.Run("malformed token is discarded without a call", func(t *testing.T) {
		f := setupTestFixture(t)
		require.NoError(t, f.store.SetAccessToken(ctx, "not-a-jwt"))
		require.NoError(t, f.store.SetRefreshToken(ctx, "refresh"))

		f.session.Initialize(ctx)

		require.Equal(t, auth.StateAnonymous, f.session.State())
		require.Zero(t, f.backend.CallCount(http.MethodGet, auth.MePath))
		stored, err := f.store.AccessToken(ctx)
		require.NoError(t, err)
		require.Empty(t, stored)
	})

	t.Run("rejected token clears the session", func(t *testing.T) {
		f := setupTestFixture(t)
		require.NoError(t, f.store.SetAccessToken(ctx, apitest.SignToken("ghost", time.Now().Add(time.Hour))))

		f.session.Initialize(ctx)

		require.Equal(t, auth.StateAnonymous, f.session.State())
		require.False(t, f.session.IsAuthenticated())
		require.Equal(t, 1, f.backend.CallCount(http.MethodGet, auth.MePath))
		stored, err := f.store.AccessToken(ctx)
		require.NoError(t, err)
		require.Empty(t, stored)
	})
}

func TestGetCurrentUserShapes(t *testing.T) {
	tests := []struct {
		shape       string
		username    string
		permissions []string
		roles       []string
		wantErr     bool
	}{
		{shape: apitest.ShapeFlat, username: apitest.Username, permissions: apitest.Permissions, roles: []string{apitest.RoleName}},
		{shape: apitest.ShapeNested, username: apitest.Username, permissions: apitest.Permissions, roles: []string{apitest.RoleName}},
		{shape: apitest.ShapeOpaque, username: "", permissions: []string{}, roles: []string{}},
		{shape: apitest.ShapeString, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.shape, func(t *testing.T) {
			f := setupTestFixture(t)
			f.login(t)
			f.backend.SetMeShape(tt.shape)

			profile, err := f.session.GetCurrentUser(context.Background())
			if tt.wantErr {
				require.ErrorIs(t, err, apperrors.ErrInvalidUserResponse)
				require.Equal(t, auth.StateAnonymous, f.session.State())
				require.Empty(t, f.session.AccessToken())
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.username, profile.UserInfo.Username)
			require.ElementsMatch(t, tt.permissions, profile.Permissions.Sorted())
			require.ElementsMatch(t, tt.roles, profile.Roles.Sorted())
			require.Equal(t, auth.StateAuthenticated, f.session.State())
		})
	}
}

func TestLogout(t *testing.T) {
	ctx := context.Background()

	t.Run("calls the server and clears", func(t *testing.T) {
		f := setupTestFixture(t)
		f.login(t)
		f.session.Logout(ctx)

		require.Equal(t, 1, f.backend.CallCount(http.MethodPost, auth.LogoutPath))
		require.Equal(t, auth.StateAnonymous, f.session.State())
		require.Nil(t, f.session.User())
		require.True(t, f.session.HasAnyPermission())
		require.False(t, f.session.HasPermission("system:user:view"))

		stored, err := f.store.RefreshToken(ctx)
		require.NoError(t, err)
		require.Empty(t, stored)
	})

	t.Run("server failure is ignored", func(t *testing.T) {
		f := setupTestFixture(t)
		f.login(t)
		f.backend.Handle(http.MethodPost, auth.LogoutPath, func(w http.ResponseWriter, r *http.Request) {
			apitest.WriteError(w, http.StatusInternalServerError, "boom", nil)
		})
		f.session.Logout(ctx)
		require.Equal(t, auth.StateAnonymous, f.session.State())
	})

	t.Run("anonymous logout makes no call", func(t *testing.T) {
		f := setupTestFixture(t)
		f.session.Logout(ctx)
		require.Zero(t, f.backend.CallCount(http.MethodPost, auth.LogoutPath))
	})
}

func TestExpiredTokenIsRefreshedAndRetried(t *testing.T) {
	ctx := context.Background()
	f := setupTestFixture(t)
	login := f.login(t)
	f.backend.ExpireAccessTokens()

	ok, err := f.session.ValidateToken(ctx)
	require.NoError(t, err)
	require.True(t, ok)

	require.Equal(t, 1, f.backend.CallCount(http.MethodPost, apiclient.RefreshPath))
	require.Equal(t, 2, f.backend.CallCount(http.MethodGet, auth.ValidatePath))
	require.NotEqual(t, login.AccessToken, f.session.AccessToken())

	stored, err := f.store.RefreshToken(ctx)
	require.NoError(t, err)
	require.NotEqual(t, login.RefreshToken, stored, "refresh token should rotate")
}

func TestConcurrentExpiredCallsRefreshOnce(t *testing.T) {
	ctx := context.Background()
	f := setupTestFixture(t)
	f.login(t)
	f.backend.ExpireAccessTokens()
	f.backend.SetRefreshDelay(100 * time.Millisecond)

	const calls = 6
	var wg sync.WaitGroup
	errs := make([]error, calls)
	for i := 0; i < calls; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.session.ValidateToken(ctx)
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		require.NoError(t, err)
	}
	require.Equal(t, 1, f.backend.CallCount(http.MethodPost, apiclient.RefreshPath))
}

func TestRefreshFailureClearsSession(t *testing.T) {
	ctx := context.Background()
	f := setupTestFixture(t)
	f.login(t)
	f.backend.ExpireAccessTokens()
	f.backend.FailRefresh(true)

	ok, err := f.session.ValidateToken(ctx)
	require.NoError(t, err)
	require.False(t, ok)
	require.Equal(t, auth.StateAnonymous, f.session.State())
	require.Empty(t, f.session.AccessToken())
}

func TestRefreshAccessToken(t *testing.T) {
	ctx := context.Background()

	t.Run("without refresh token", func(t *testing.T) {
		f := setupTestFixture(t)
		_, err := f.session.RefreshAccessToken(ctx)
		require.ErrorIs(t, err, apperrors.ErrNoRefreshToken)
	})

	t.Run("rejected refresh marks the session expired", func(t *testing.T) {
		f := setupTestFixture(t)
		f.login(t)
		f.backend.Handle(http.MethodPost, apiclient.RefreshPath, func(w http.ResponseWriter, r *http.Request) {
			apitest.WriteError(w, http.StatusBadRequest, "refresh token revoked", nil)
		})
		_, err := f.session.RefreshAccessToken(ctx)
		require.ErrorIs(t, err, apperrors.ErrRefreshFailed)
		require.Equal(t, auth.StateExpired, f.session.State())
	})
}

func TestEnsureFresh(t *testing.T) {
	ctx := context.Background()

	t.Run("not logged in", func(t *testing.T) {
		f := setupTestFixture(t)
		require.ErrorIs(t, f.session.EnsureFresh(ctx), apperrors.ErrNotAuthenticated)
	})

	t.Run("token with plenty of time is kept", func(t *testing.T) {
		f := setupTestFixture(t)
		f.login(t)
		require.NoError(t, f.session.EnsureFresh(ctx))
		require.Zero(t, f.backend.CallCount(http.MethodPost, apiclient.RefreshPath))
	})

	t.Run("token close to expiry is refreshed", func(t *testing.T) {
		f := setupTestFixture(t)
		f.backend.SetAccessTTL(100 * time.Second)
		login := f.login(t)
		f.backend.SetAccessTTL(time.Hour)

		require.NoError(t, f.session.EnsureFresh(ctx))
		require.Equal(t, 1, f.backend.CallCount(http.MethodPost, apiclient.RefreshPath))
		require.NotEqual(t, login.AccessToken, f.session.AccessToken())
	})

	t.Run("threshold is configurable", func(t *testing.T) {
		f := setupTestFixture(t)
		f.backend.SetAccessTTL(100 * time.Second)
		f.session, _, _ = f.newSession(t, auth.WithExpiryThreshold(30*time.Second))
		f.login(t)

		require.NoError(t, f.session.EnsureFresh(ctx))
		require.Zero(t, f.backend.CallCount(http.MethodPost, apiclient.RefreshPath))
	})
}

func TestTokenSource(t *testing.T) {
	f := setupTestFixture(t)
	f.login(t)

	tok, err := f.session.TokenSource(context.Background()).Token()
	require.NoError(t, err)
	require.Equal(t, f.session.AccessToken(), tok.AccessToken)
	require.Equal(t, "Bearer", tok.Type())
	require.True(t, tok.Valid())
	require.WithinDuration(t, time.Now().Add(time.Hour), tok.Expiry, time.Minute)
}
