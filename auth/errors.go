package auth

import (
	"errors"

	apperrors "github.com/jrsteele09/go-waterres-client/internal/errors"
)

var (
	ErrMissingAccessToken = apperrors.Wrapf(apperrors.ErrInvalidUserResponse, "login response has no access token")
	ErrNotObjectProfile   = apperrors.Wrapf(apperrors.ErrInvalidUserResponse, "user info is not an object")
	ErrPasswordsDontMatch = errors.New("passwords do not match")
)
