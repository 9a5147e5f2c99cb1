package apiclient

import (
	"encoding/json"
	"errors"
	"fmt"

	apperrors "github.com/jrsteele09/go-waterres-client/internal/errors"
)

// Kind classifies a failed call.
type Kind int

const (
	KindUnknown Kind = iota
	KindNetwork
	KindTimeout
	KindAuthExpired
	KindForbidden
	KindNotFound
	KindValidation
	KindBusiness
	KindBadRequest
	KindRejected
	KindServer
	KindUnavailable
)

var kindNames = map[Kind]string{
	KindUnknown:     "unknown",
	KindNetwork:     "network",
	KindTimeout:     "timeout",
	KindAuthExpired: "auth_expired",
	KindForbidden:   "forbidden",
	KindNotFound:    "not_found",
	KindValidation:  "validation",
	KindBusiness:    "business",
	KindBadRequest:  "bad_request",
	KindRejected:    "rejected",
	KindServer:      "server_error",
	KindUnavailable: "unavailable",
}

var kindSentinels = map[Kind]error{
	KindNetwork:     apperrors.ErrNetwork,
	KindTimeout:     apperrors.ErrTimeout,
	KindAuthExpired: apperrors.ErrUnauthorized,
	KindForbidden:   apperrors.ErrForbidden,
	KindNotFound:    apperrors.ErrNotFound,
	KindValidation:  apperrors.ErrValidation,
	KindBusiness:    apperrors.ErrBusiness,
	KindBadRequest:  apperrors.ErrBadRequest,
	KindRejected:    apperrors.ErrRejected,
	KindServer:      apperrors.ErrServer,
	KindUnavailable: apperrors.ErrUnavailable,
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// notifies reports whether failures of this kind are shown to the user.
// Expired sessions are recovered locally and business errors are left to the
// caller.
func (k Kind) notifies() bool {
	return k != KindAuthExpired && k != KindBusiness
}

// Error is returned by every failed Client call.
type Error struct {
	Kind    Kind
	Status  int    // HTTP status, 0 for transport failures
	Code    int    // envelope code when the server sent one
	Message string // user-facing message

	// FieldErrors holds the per-field messages of a 422 response.
	FieldErrors map[string][]string

	// Data is the untouched envelope payload of a business error.
	Data json.RawMessage

	Err error
}

func (e *Error) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("%s (status %d): %s", e.Kind, e.Status, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches the sentinel in internal/errors for the error's kind.
func (e *Error) Is(target error) bool {
	sentinel, ok := kindSentinels[e.Kind]
	return ok && target == sentinel
}

// DecodeData unmarshals the business payload into v.
func (e *Error) DecodeData(v any) error {
	if !hasPayload(e.Data) {
		return apperrors.Wrapf(apperrors.ErrNotFound, "error carries no data")
	}
	return json.Unmarshal(e.Data, v)
}

// KindOf returns the kind of an *Error in err's chain, or KindUnknown.
func KindOf(err error) Kind {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	return KindUnknown
}

// AsBusiness returns the business error in err's chain, if any.
func AsBusiness(err error) (*Error, bool) {
	var apiErr *Error
	if errors.As(err, &apiErr) && apiErr.Kind == KindBusiness {
		return apiErr, true
	}
	return nil, false
}
