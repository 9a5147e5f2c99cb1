package errors

import (
	"errors"
	"fmt"
)

// Common error types for the water resources API client
var (
	// Transport errors
	ErrNetwork = errors.New("network connection failed")
	ErrTimeout = errors.New("request timed out")

	// Authentication errors
	ErrUnauthorized        = errors.New("authentication expired")
	ErrNoRefreshToken      = errors.New("no refresh token available")
	ErrRefreshFailed       = errors.New("token refresh failed")
	ErrNotAuthenticated    = errors.New("not authenticated")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrMalformedToken      = errors.New("malformed token")
	ErrInvalidUserResponse = errors.New("invalid user info response")

	// Authorization errors
	ErrForbidden = errors.New("access to the resource is forbidden")

	// Request errors
	ErrNotFound   = errors.New("resource not found")
	ErrValidation = errors.New("validation failed")
	ErrBadRequest = errors.New("bad request")
	ErrBusiness   = errors.New("business rule rejected")
	ErrRejected   = errors.New("request rejected")

	// Server errors
	ErrServer      = errors.New("server error")
	ErrUnavailable = errors.New("service unavailable")

	// Storage errors
	ErrKeyNotFound = errors.New("key not found")

	// General errors
	ErrInternal    = errors.New("internal error")
	ErrUnsupported = errors.New("unsupported operation")
)

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
