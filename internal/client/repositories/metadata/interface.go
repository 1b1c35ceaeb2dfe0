// Package metadata is the CLI's local key/value store. It keeps the
// logged-in user's name and access token between runs.
package metadata

import (
	"context"
	"time"
)

type Repository interface {
	// Get returns (nil, nil) when key is absent.
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	UpdatedAt(ctx context.Context, key string) (time.Time, error)
	Delete(ctx context.Context, key string) error
	List(ctx context.Context) (map[string][]byte, error)
	Clear(ctx context.Context) error
}
