package auth

import (
	"context"

	"github.com/pkg/errors"
	"golang.org/x/oauth2"
)

type sessionTokenSource struct {
	ctx     context.Context
	session *Session
}

// TokenSource adapts the session for code that authenticates with
// golang.org/x/oauth2. Each Token call refreshes first when the access token
// is close to expiry.
func (s *Session) TokenSource(ctx context.Context) oauth2.TokenSource {
	return &sessionTokenSource{ctx: ctx, session: s}
}

func (ts *sessionTokenSource) Token() (*oauth2.Token, error) {
	if err := ts.session.EnsureFresh(ts.ctx); err != nil {
		return nil, errors.Wrap(err, "[sessionTokenSource.Token] no usable access token")
	}

	ts.session.mu.RLock()
	tok := &oauth2.Token{
		AccessToken:  ts.session.accessToken,
		TokenType:    "Bearer",
		RefreshToken: ts.session.refreshToken,
	}
	ts.session.mu.RUnlock()

	if expiry, ok := ts.session.inspector.ExpiresAt(tok.AccessToken); ok {
		tok.Expiry = expiry
	}
	return tok, nil
}
