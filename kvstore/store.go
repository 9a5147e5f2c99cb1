// Package kvstore defines the durable key-value storage the client persists
// its tokens and remembered credentials in.
package kvstore

import (
	"context"

	apperrors "github.com/jrsteele09/go-waterres-client/internal/errors"
)

// ErrNotFound is returned by Get when the key has no value.
var ErrNotFound = apperrors.ErrKeyNotFound

// Store is a string key-value store. Implementations must be safe for
// concurrent use. Delete of a missing key is not an error.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}
