package metadata

import (
	"context"
	"time"
)

// Entry describes one stored value without its payload.
type Entry struct {
	Key       string
	Size      int
	UpdatedAt time.Time
}

// Repository is the client's persisted key/value area. It backs the catalog
// cache, so Get returns (nil, nil) for a missing key.
type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	List(ctx context.Context) ([]Entry, error)
	Clear(ctx context.Context) error
}
