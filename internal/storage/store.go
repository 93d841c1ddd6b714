// Package storage provides abstractions for the cache's durable key/value backend.
package storage

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get when no value is stored under the key.
var ErrNotFound = errors.New("storage: key not found")

// Store defines the interface for the byte-level storage behind the resource cache.
// This abstraction allows swapping backends (SQLite, Redis, in-memory)
// without changing the cache.
//
// A Store knows nothing about expiry; the cache encodes it in the value.
type Store interface {
	// Get returns the value stored under key, or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key string, value []byte) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Clear removes every key the store owns.
	Clear(ctx context.Context) error

	// Close releases any resources held by the store.
	Close() error
}
