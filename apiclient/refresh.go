package apiclient

import (
	"context"
	"strings"
	"sync"

	apperrors "github.com/jrsteele09/go-waterres-client/internal/errors"
	"github.com/jrsteele09/go-waterres-client/internal/metrics"
	"github.com/rs/zerolog/log"
)

// RefreshPath is the endpoint that exchanges a refresh token for a new
// access token.
const RefreshPath = "/auth/refresh"

type refreshResult struct {
	token string
	err   error
}

// refreshCoordinator lets at most one refresh run at a time. Callers that
// arrive while a refresh is in flight wait on a buffered channel and are
// settled in arrival order when it completes. The mutex only guards the flag
// and the queue.
type refreshCoordinator struct {
	navigator Navigator
	metrics   *metrics.Metrics

	mu         sync.Mutex
	refreshing bool
	pending    []chan refreshResult
}

func newRefreshCoordinator(navigator Navigator, m *metrics.Metrics) *refreshCoordinator {
	return &refreshCoordinator{
		navigator: navigator,
		metrics:   m,
	}
}

// handleUnauthorized runs the refresh protocol for a call to path that was
// answered with 401. It returns the token to retry with.
func (rc *refreshCoordinator) handleUnauthorized(ctx context.Context, sess Session, path string) (string, error) {
	if strings.Contains(path, RefreshPath) {
		// The refresh call itself was rejected. When it was issued by an
		// in-flight refresh, its owner settles the queue and clears the session.
		if !rc.inFlight() {
			log.Warn().Str("path", path).Msg("Refresh token rejected, redirecting to login")
			sess.Clear(ctx)
			rc.navigator.RedirectToLogin()
		}
		return "", apperrors.ErrRefreshFailed
	}

	return rc.refreshOrWait(ctx, sess, func() {
		log.Debug().Str("path", path).Msg("No refresh token, redirecting to login")
		sess.Clear(ctx)
		rc.navigator.RedirectToLogin()
	})
}

// refresh runs a refresh outside of a failed call, sharing any refresh
// already in flight.
func (rc *refreshCoordinator) refresh(ctx context.Context, sess Session) (string, error) {
	return rc.refreshOrWait(ctx, sess, nil)
}

func (rc *refreshCoordinator) refreshOrWait(ctx context.Context, sess Session, noRefreshToken func()) (string, error) {
	hasRefreshToken := sess.HasRefreshToken()

	rc.mu.Lock()
	if rc.refreshing {
		ch := make(chan refreshResult, 1)
		rc.pending = append(rc.pending, ch)
		rc.mu.Unlock()
		return rc.wait(ctx, ch)
	}
	if !hasRefreshToken {
		rc.mu.Unlock()
		if noRefreshToken != nil {
			noRefreshToken()
		}
		return "", apperrors.ErrNoRefreshToken
	}
	rc.refreshing = true
	rc.mu.Unlock()

	return rc.run(ctx, sess)
}

func (rc *refreshCoordinator) wait(ctx context.Context, ch <-chan refreshResult) (string, error) {
	rc.metrics.AddRefreshWaiters(1)
	defer rc.metrics.AddRefreshWaiters(-1)

	select {
	case res := <-ch:
		return res.token, res.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (rc *refreshCoordinator) run(ctx context.Context, sess Session) (string, error) {
	log.Debug().Msg("Refreshing access token")

	// Waiters depend on this refresh, so it outlives the caller that started it.
	token, err := sess.RefreshAccessToken(context.WithoutCancel(ctx))
	if err == nil && token == "" {
		err = apperrors.Wrapf(apperrors.ErrRefreshFailed, "refresh returned an empty access token")
	}

	rc.mu.Lock()
	waiters := rc.pending
	rc.pending = nil
	rc.refreshing = false
	rc.mu.Unlock()

	for _, ch := range waiters {
		ch <- refreshResult{token: token, err: err}
	}
	rc.metrics.ObserveRefresh(err == nil)

	if err != nil {
		log.Err(err).Int("waiters", len(waiters)).Msg("Access token refresh failed")
		sess.Clear(context.WithoutCancel(ctx))
		rc.navigator.PromptReauthentication()
		return "", err
	}

	log.Debug().Int("waiters", len(waiters)).Msg("Access token refreshed")
	return token, nil
}

func (rc *refreshCoordinator) inFlight() bool {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	return rc.refreshing
}

func (rc *refreshCoordinator) pendingCount() int {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	return len(rc.pending)
}
