package apiclient

import (
	"context"

	apperrors "github.com/jrsteele09/go-waterres-client/internal/errors"
	"github.com/rs/zerolog/log"
)

// Session is the token holder the client authenticates with and refreshes
// through. AccessToken and HasRefreshToken must not block on I/O.
type Session interface {
	AccessToken() string
	HasRefreshToken() bool
	RefreshAccessToken(ctx context.Context) (string, error)
	Clear(ctx context.Context)
}

// Notifier shows user-visible failure messages.
type Notifier interface {
	Notify(kind Kind, message string)
}

// Navigator sends the user back to the login entry point. Calls are
// fire-and-forget.
type Navigator interface {
	RedirectToLogin()
	PromptReauthentication()
}

type logNotifier struct{}

func (logNotifier) Notify(kind Kind, message string) {
	log.Warn().Str("kind", kind.String()).Msg(message)
}

type logNavigator struct{}

func (logNavigator) RedirectToLogin() {
	log.Info().Msg("Login required")
}

func (logNavigator) PromptReauthentication() {
	log.Warn().Msg("Login session has expired, please log in again")
}

// anonymousSession is used until a Session is attached.
type anonymousSession struct{}

func (anonymousSession) AccessToken() string    { return "" }
func (anonymousSession) HasRefreshToken() bool { return false }
func (anonymousSession) Clear(context.Context) {}

func (anonymousSession) RefreshAccessToken(context.Context) (string, error) {
	return "", apperrors.ErrNoRefreshToken
}
