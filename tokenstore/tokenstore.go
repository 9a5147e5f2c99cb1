// Package tokenstore persists the access token, the refresh token and
// optionally remembered login credentials in a kvstore.Store.
package tokenstore

import (
	"context"
	"encoding/json"
	"errors"

	apperrors "github.com/jrsteele09/go-waterres-client/internal/errors"
	"github.com/jrsteele09/go-waterres-client/kvstore"
	"github.com/rs/zerolog/log"
)

// Storage keys shared with the browser front end.
const (
	TokenKey        = "water_resources_token"
	RefreshTokenKey = "water_resources_refresh_token"
	CredentialsKey  = "water_resources_credentials"
)

// ErrCredentialsDisabled is returned when remembering credentials without a
// configured passphrase.
var ErrCredentialsDisabled = apperrors.Wrapf(apperrors.ErrUnsupported, "remembering credentials requires a passphrase")

// Credentials are the remembered login form values.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type Store struct {
	kv     kvstore.Store
	sealer *sealer
}

type Option func(*Store)

// WithPassphrase enables remembered credentials, sealed under passphrase.
func WithPassphrase(passphrase string) Option {
	return func(s *Store) {
		if passphrase != "" {
			s.sealer = newSealer(passphrase)
		}
	}
}

func New(kv kvstore.Store, options ...Option) *Store {
	s := &Store{kv: kv}
	for _, opt := range options {
		opt(s)
	}
	return s
}

// AccessToken returns the stored access token, or "" when none is stored.
func (s *Store) AccessToken(ctx context.Context) (string, error) {
	return s.get(ctx, TokenKey)
}

func (s *Store) SetAccessToken(ctx context.Context, token string) error {
	return apperrors.Wrapf(s.kv.Set(ctx, TokenKey, token), "tokenstore.SetAccessToken")
}

// RefreshToken returns the stored refresh token, or "" when none is stored.
func (s *Store) RefreshToken(ctx context.Context) (string, error) {
	return s.get(ctx, RefreshTokenKey)
}

func (s *Store) SetRefreshToken(ctx context.Context, token string) error {
	return apperrors.Wrapf(s.kv.Set(ctx, RefreshTokenKey, token), "tokenstore.SetRefreshToken")
}

func (s *Store) RemoveRefreshToken(ctx context.Context) error {
	return apperrors.Wrapf(s.kv.Delete(ctx, RefreshTokenKey), "tokenstore.RemoveRefreshToken")
}

// RemoveTokens deletes both the access and the refresh token.
func (s *Store) RemoveTokens(ctx context.Context) error {
	return errors.Join(
		apperrors.Wrapf(s.kv.Delete(ctx, TokenKey), "tokenstore.RemoveTokens access"),
		apperrors.Wrapf(s.kv.Delete(ctx, RefreshTokenKey), "tokenstore.RemoveTokens refresh"),
	)
}

// RememberedCredentials returns nil when nothing is remembered, remembering is
// disabled, or the stored value cannot be opened.
func (s *Store) RememberedCredentials(ctx context.Context) (*Credentials, error) {
	if s.sealer == nil {
		return nil, nil
	}

	sealed, err := s.get(ctx, CredentialsKey)
	if err != nil || sealed == "" {
		return nil, err
	}

	plaintext, err := s.sealer.open(sealed)
	if err != nil {
		log.Warn().Err(err).Msg("Discarding unreadable remembered credentials")
		return nil, nil
	}

	var creds Credentials
	if err := json.Unmarshal(plaintext, &creds); err != nil {
		log.Warn().Err(err).Msg("Discarding unparsable remembered credentials")
		return nil, nil
	}
	return &creds, nil
}

func (s *Store) SetRememberedCredentials(ctx context.Context, username, password string) error {
	if s.sealer == nil {
		return ErrCredentialsDisabled
	}

	plaintext, err := json.Marshal(Credentials{Username: username, Password: password})
	if err != nil {
		return apperrors.Wrapf(err, "tokenstore.SetRememberedCredentials encode")
	}
	sealed, err := s.sealer.seal(plaintext)
	if err != nil {
		return apperrors.Wrapf(err, "tokenstore.SetRememberedCredentials seal")
	}
	return apperrors.Wrapf(s.kv.Set(ctx, CredentialsKey, sealed), "tokenstore.SetRememberedCredentials")
}

func (s *Store) ClearRememberedCredentials(ctx context.Context) error {
	return apperrors.Wrapf(s.kv.Delete(ctx, CredentialsKey), "tokenstore.ClearRememberedCredentials")
}

func (s *Store) get(ctx context.Context, key string) (string, error) {
	value, err := s.kv.Get(ctx, key)
	if errors.Is(err, kvstore.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", apperrors.Wrapf(err, "tokenstore get %s", key)
	}
	return value, nil
}
