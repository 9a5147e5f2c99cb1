package auth

import (
	"context"

	"github.com/jrsteele09/go-waterres-client/apiclient"
	apperrors "github.com/jrsteele09/go-waterres-client/internal/errors"
	"github.com/pkg/errors"
)

const (
	RegisterPath       = "/auth/register"
	PasswordResetPath  = "/auth/password/reset"
	PasswordUpdatePath = "/auth/password/update"
	PasswordChangePath = "/auth/password/change"
)

type passwordResetEmail struct {
	Email string `json:"email" validate:"required,email"`
}

// Register creates an account. It does not log the new user in.
func (s *Session) Register(ctx context.Context, req RegisterRequest) (*UserInfo, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	user, err := apiclient.Call[*UserInfo](ctx, s.client, apiclient.Post(RegisterPath, req))
	if err != nil {
		return nil, errors.Wrap(err, "[Session.Register] failed")
	}
	return user, nil
}

func (s *Session) SendPasswordResetEmail(ctx context.Context, email string) error {
	body := passwordResetEmail{Email: email}
	if err := validateRequest(body); err != nil {
		return err
	}
	return errors.Wrap(apiclient.Exec(ctx, s.client, apiclient.Post(PasswordResetPath, body)), "[Session.SendPasswordResetEmail] failed")
}

// ResetPassword sets a new password using the token from a reset email.
func (s *Session) ResetPassword(ctx context.Context, req ResetPasswordRequest) error {
	if err := validateRequest(req); err != nil {
		return err
	}
	return errors.Wrap(apiclient.Exec(ctx, s.client, apiclient.Post(PasswordUpdatePath, req)), "[Session.ResetPassword] failed")
}

func (s *Session) ChangePassword(ctx context.Context, req ChangePasswordRequest) error {
	if s.AccessToken() == "" {
		return apperrors.ErrNotAuthenticated
	}
	if err := validateRequest(req); err != nil {
		return err
	}
	return errors.Wrap(apiclient.Exec(ctx, s.client, apiclient.Post(PasswordChangePath, req)), "[Session.ChangePassword] failed")
}

// ValidateToken asks the server whether the current access token is still
// accepted. A rejected token reports false without an error.
func (s *Session) ValidateToken(ctx context.Context) (bool, error) {
	if s.AccessToken() == "" {
		return false, nil
	}
	err := apiclient.Exec(ctx, s.client, apiclient.Get(ValidatePath, nil))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, apperrors.ErrUnauthorized), errors.Is(err, apperrors.ErrForbidden):
		return false, nil
	default:
		return false, errors.Wrap(err, "[Session.ValidateToken] failed")
	}
}
