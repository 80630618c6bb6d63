// Package store defines the persisted session artifact store. Artifacts
// are small string values (tokens, cached identity material) that must
// survive restarts and be purgeable by pattern on logout.
package store

import (
	"context"
	"errors"
)

// ErrKeyNotFound is returned when a key does not exist in the store
var ErrKeyNotFound = errors.New("key not found")

// Store is a flat key/value store for session artifacts. Pattern
// matching in DeleteMatching uses path.Match syntax; implementations
// scope patterns to their own keyspace.
type Store interface {
	Put(ctx context.Context, key, value string) error
	Get(ctx context.Context, key string) (string, error)
	Delete(ctx context.Context, key string) error
	DeleteMatching(ctx context.Context, patterns ...string) (int, error)
	Close() error
}
