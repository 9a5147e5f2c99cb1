// Package auth keeps the logged in user's session: tokens, profile and
// grants. A Session authenticates an apiclient.Client and refreshes its
// access token when the client reports it expired.
package auth

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jrsteele09/go-waterres-client/apiclient"
	apperrors "github.com/jrsteele09/go-waterres-client/internal/errors"
	"github.com/jrsteele09/go-waterres-client/internal/utils"
	"github.com/jrsteele09/go-waterres-client/token/jwt"
	"github.com/jrsteele09/go-waterres-client/tokenstore"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

const (
	LoginPath    = "/auth/login"
	LogoutPath   = "/auth/logout"
	MePath       = "/auth/me"
	ValidatePath = "/auth/validate"
)

type State int

const (
	StateAnonymous State = iota
	StateAuthenticating
	StateAuthenticated
	StateExpired
)

func (s State) String() string {
	switch s {
	case StateAnonymous:
		return "anonymous"
	case StateAuthenticating:
		return "authenticating"
	case StateAuthenticated:
		return "authenticated"
	case StateExpired:
		return "expired"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

type Session struct {
	client          *apiclient.Client
	store           *tokenstore.Store
	inspector       *jwt.Inspector
	expiryThreshold time.Duration

	mu           sync.RWMutex
	state        State
	accessToken  string
	refreshToken string
	user         *UserInfo
	grants       Grants
}

var (
	_ apiclient.Session = (*Session)(nil)
	_ Authorizer        = (*Session)(nil)
)

type SessionOption func(*Session)

// WithExpiryThreshold sets how close to expiry EnsureFresh refreshes.
func WithExpiryThreshold(d time.Duration) SessionOption {
	return func(s *Session) {
		if d > 0 {
			s.expiryThreshold = d
		}
	}
}

// WithNowFunc sets the clock used for token expiry checks.
func WithNowFunc(nowFunc func() time.Time) SessionOption {
	return func(s *Session) {
		s.inspector = jwt.NewInspector(jwt.WithNowFunc(nowFunc))
	}
}

// NewSession creates an anonymous session and attaches it to client.
// Persisted tokens are loaded by Initialize.
func NewSession(client *apiclient.Client, store *tokenstore.Store, options ...SessionOption) (*Session, error) {
	if client == nil {
		return nil, errors.New("[NewSession] client is required")
	}
	if store == nil {
		return nil, errors.New("[NewSession] token store is required")
	}

	s := &Session{
		client:          client,
		store:           store,
		inspector:       jwt.NewInspector(),
		expiryThreshold: jwt.DefaultExpiryThreshold * time.Second,
		grants:          Grants{Permissions: NewPermissionSet(), Roles: NewRoleSet()},
	}
	for _, opt := range options {
		opt(s)
	}

	client.AttachSession(s)
	return s, nil
}

// Login exchanges credentials for tokens and loads the user's grants.
func (s *Session) Login(ctx context.Context, creds Credentials) (*LoginResponse, error) {
	if err := validateRequest(creds); err != nil {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrInvalidCredentials, err)
	}

	s.setState(StateAuthenticating)
	resp, err := apiclient.Call[LoginResponse](ctx, s.client, apiclient.Post(LoginPath, creds))
	if err == nil && resp.AccessToken == "" {
		err = ErrMissingAccessToken
	}
	if err != nil {
		s.setState(StateAnonymous)
		return nil, errors.Wrap(err, "[Session.Login] login failed")
	}

	if err := s.store.SetAccessToken(ctx, resp.AccessToken); err != nil {
		s.setState(StateAnonymous)
		return nil, errors.Wrap(err, "[Session.Login] failed to persist access token")
	}
	if resp.RefreshToken != "" {
		if err := s.store.SetRefreshToken(ctx, resp.RefreshToken); err != nil {
			log.Err(err).Msg("Failed to persist refresh token")
		}
	}
	s.rememberCredentials(ctx, creds)

	user := resp.UserInfo
	if user == nil {
		user = &UserInfo{Username: creds.Username}
	}
	roles := append(append([]string{}, resp.Roles...), resp.RoleName, user.RoleName)

	s.mu.Lock()
	s.accessToken = resp.AccessToken
	s.refreshToken = resp.RefreshToken
	s.user = user
	s.grants = Grants{Permissions: NewPermissionSet(resp.Permissions...), Roles: NewRoleSet(roles...)}
	s.state = StateAuthenticated
	s.mu.Unlock()

	log.Info().Str("username", user.Username).Msg("Logged in")
	return &resp, nil
}

func (s *Session) rememberCredentials(ctx context.Context, creds Credentials) {
	if !creds.Remember {
		if err := s.store.ClearRememberedCredentials(ctx); err != nil {
			log.Err(err).Msg("Failed to clear remembered credentials")
		}
		return
	}
	if err := s.store.SetRememberedCredentials(ctx, creds.Username, creds.Password); err != nil {
		log.Warn().Err(err).Msg("Credentials not remembered")
	}
}

// RememberedCredentials returns the credentials saved by a Login with
// Remember set, or nil.
func (s *Session) RememberedCredentials(ctx context.Context) (*Credentials, error) {
	creds, err := s.store.RememberedCredentials(ctx)
	if err != nil || creds == nil {
		return nil, err
	}
	return &Credentials{Username: creds.Username, Password: creds.Password, Remember: true}, nil
}

// Logout tells the server when a token is held, then always clears the
// local session.
func (s *Session) Logout(ctx context.Context) {
	if s.AccessToken() != "" {
		if err := apiclient.Exec(ctx, s.client, apiclient.Post(LogoutPath, nil)); err != nil {
			log.Debug().Err(err).Msg("Logout call failed")
		}
	}
	s.Clear(ctx)
}

// GetCurrentUser loads the profile and grants of the token holder. Any
// failure clears the session.
func (s *Session) GetCurrentUser(ctx context.Context) (*Profile, error) {
	resp, err := s.client.Do(ctx, apiclient.Get(MePath, nil))
	if err != nil {
		s.Clear(ctx)
		return nil, errors.Wrap(err, "[Session.GetCurrentUser] request failed")
	}

	parsed, err := parseProfileResponse(resp.Data)
	if err != nil {
		s.Clear(ctx)
		return nil, errors.Wrap(err, "[Session.GetCurrentUser] unexpected response")
	}
	profile := parsed.normalize()

	s.mu.Lock()
	s.user = profile.UserInfo
	s.grants = Grants{Permissions: profile.Permissions, Roles: profile.Roles}
	s.state = StateAuthenticated
	s.mu.Unlock()

	return &profile, nil
}

// Initialize restores a persisted session. A stored token that is not a
// well formed JWT is discarded without a network call; any other failure
// leaves the session anonymous.
func (s *Session) Initialize(ctx context.Context) {
	accessToken, err := s.store.AccessToken(ctx)
	if err != nil {
		log.Err(err).Msg("Failed to read stored access token")
		return
	}
	if accessToken == "" {
		log.Debug().Msg("No stored access token")
		return
	}
	if !jwt.IsValidFormat(accessToken) {
		log.Warn().Msg("Stored access token is malformed, discarding it")
		s.Clear(ctx)
		return
	}

	refreshToken, err := s.store.RefreshToken(ctx)
	if err != nil {
		log.Err(err).Msg("Failed to read stored refresh token")
	}

	s.mu.Lock()
	s.accessToken = accessToken
	s.refreshToken = refreshToken
	s.mu.Unlock()

	if _, err := s.GetCurrentUser(ctx); err != nil {
		log.Err(err).Msg("Failed to restore session")
	}
}

// RefreshAccessToken exchanges the refresh token for a new access token.
// Concurrent callers should go through the client's RefreshNow so only one
// exchange is in flight.
func (s *Session) RefreshAccessToken(ctx context.Context) (string, error) {
	s.mu.RLock()
	refreshToken := s.refreshToken
	s.mu.RUnlock()
	if refreshToken == "" {
		return "", apperrors.ErrNoRefreshToken
	}

	resp, err := apiclient.Call[TokenResponse](ctx, s.client, apiclient.Post(apiclient.RefreshPath, refreshRequest{RefreshToken: refreshToken}))
	if err == nil && resp.AccessToken == "" {
		err = ErrMissingAccessToken
	}
	if err != nil {
		s.setState(StateExpired)
		return "", fmt.Errorf("%w: %w", apperrors.ErrRefreshFailed, err)
	}

	if err := s.store.SetAccessToken(ctx, resp.AccessToken); err != nil {
		log.Err(err).Msg("Failed to persist refreshed access token")
	}
	if resp.RefreshToken != "" {
		if err := s.store.SetRefreshToken(ctx, resp.RefreshToken); err != nil {
			log.Err(err).Msg("Failed to persist rotated refresh token")
		}
	}

	s.mu.Lock()
	s.accessToken = resp.AccessToken
	if resp.RefreshToken != "" {
		s.refreshToken = resp.RefreshToken
	}
	if s.state == StateExpired {
		s.state = StateAuthenticated
	}
	s.mu.Unlock()

	return resp.AccessToken, nil
}

// EnsureFresh refreshes the access token when it is expired or within the
// expiry threshold.
func (s *Session) EnsureFresh(ctx context.Context) error {
	token := s.AccessToken()
	if token == "" {
		return apperrors.ErrNotAuthenticated
	}

	threshold := int64(s.expiryThreshold / time.Second)
	if !s.inspector.IsExpired(token) && !s.inspector.IsExpiringSoon(token, threshold) {
		return nil
	}

	log.Debug().Int64("remaining", s.inspector.RemainingSeconds(token)).Msg("Access token expiring, refreshing")
	if _, err := s.client.RefreshNow(ctx); err != nil {
		return errors.Wrap(err, "[Session.EnsureFresh] refresh failed")
	}
	return nil
}

// Clear forgets tokens, profile and grants, locally and in the store.
func (s *Session) Clear(ctx context.Context) {
	if err := s.store.RemoveTokens(ctx); err != nil {
		log.Err(err).Msg("Failed to remove stored tokens")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.accessToken = ""
	s.refreshToken = ""
	s.user = nil
	s.grants = Grants{Permissions: NewPermissionSet(), Roles: NewRoleSet()}
	s.state = StateAnonymous
}

func (s *Session) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.accessToken
}

func (s *Session) HasRefreshToken() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.refreshToken != ""
}

func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

func (s *Session) setState(state State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = state
}

// IsAuthenticated is true once a token and a profile are both held.
func (s *Session) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.accessToken != "" && s.user != nil
}

// User returns a copy of the current profile, or nil.
func (s *Session) User() *UserInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	return utils.Ptr(utils.Value(s.user))
}

// Grants returns the current permission and role sets.
func (s *Session) Grants() Grants {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.grants
}

func (s *Session) HasPermission(permission string) bool {
	return s.Grants().HasPermission(permission)
}

func (s *Session) HasAnyPermission(permissions ...string) bool {
	return s.Grants().HasAnyPermission(permissions...)
}

func (s *Session) HasAllPermissions(permissions ...string) bool {
	return s.Grants().HasAllPermissions(permissions...)
}

func (s *Session) HasRole(role string) bool {
	return s.Grants().HasRole(role)
}

func (s *Session) HasAnyRole(roles ...string) bool {
	return s.Grants().HasAnyRole(roles...)
}

func (s *Session) HasAllRoles(roles ...string) bool {
	return s.Grants().HasAllRoles(roles...)
}
