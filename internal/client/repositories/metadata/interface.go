// Package metadata stores the client's small key/value records (session
// tokens and credentials) in the local database.
package metadata

import (
	"context"
)

// Repository is a flat string key/value store.
//
// Get reports absence with ok == false and a nil error; errors are reserved
// for storage failures.
type Repository interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key string, value string) error
	Delete(ctx context.Context, keys ...string) error
	List(ctx context.Context) (map[string]string, error)
	Clear(ctx context.Context) error
}
