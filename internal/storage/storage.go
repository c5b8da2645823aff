// Package storage is the key-value persistence the storefront keeps its
// client state in: the identity (token, user), cart snapshots and the
// admin demo data. Values are opaque strings, usually JSON.
package storage

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("key not found")

// Store is implemented by every persistence driver.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	// SetMany writes all values together. Drivers apply the batch atomically
	// where the backend allows it.
	SetMany(ctx context.Context, values map[string]string) error
	DeleteMany(ctx context.Context, keys ...string) error
	Close() error
}
