// Package catalogcache caches rarely-changing catalog collections in a
// persisted key/value store and invalidates them two ways: by age (the
// freshness window) and by a global admin-write marker that every admin
// mutation bumps.
//
// The same Cache type backs the command-line client (SQLite store) and the
// server's public catalog handlers (in-memory TTL store). The *Cache value is
// passed explicitly to every admin mutation path and every public fetch path.
package catalogcache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/dmitrijs2005/trophyshop/internal/common"
	"github.com/dmitrijs2005/trophyshop/internal/logging"
)

// DefaultFreshnessWindow bounds staleness when no write marker is observed.
const DefaultFreshnessWindow = 10 * time.Minute

// Store is the persisted key/value area. Get returns (nil, nil) for a missing key.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}

// Loader fetches the authoritative payload, bypassing any transport cache.
type Loader func(ctx context.Context) (json.RawMessage, error)

// envelope is the persisted form of a cache entry.
type envelope struct {
	Data      json.RawMessage `json:"data"`
	Timestamp int64           `json:"timestamp"`
}

type Cache struct {
	store     Store
	window    time.Duration
	now       func() time.Time
	markerKey string
	logger    logging.Logger
}

type Option func(*Cache)

func WithFreshnessWindow(d time.Duration) Option {
	return func(c *Cache) {
		if d > 0 {
			c.window = d
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

func WithLogger(l logging.Logger) Option {
	return func(c *Cache) { c.logger = l.With("module", "catalogcache") }
}

func New(store Store, opts ...Option) *Cache {
	c := &Cache{
		store:     store,
		window:    DefaultFreshnessWindow,
		now:       time.Now,
		markerKey: common.CacheKeyLastAdminWrite,
		logger:    logging.NewDiscard(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FreshnessWindow reports the configured maximum entry age.
func (c *Cache) FreshnessWindow() time.Duration { return c.window }

// Fetch returns the cached payload for key when it is younger than the
// freshness window and was written strictly after the last admin write. An
// entry stamped in the same millisecond as the marker counts as stale, since
// its load may have raced the write. Otherwise it calls
// load, stores the result with the current timestamp and returns it. A load
// error is returned as is and the previous entry is left untouched.
func (c *Cache) Fetch(ctx context.Context, key string, load Loader) (json.RawMessage, error) {
	if data, ok := c.lookup(ctx, key); ok {
		return data, nil
	}
	return c.Refresh(ctx, key, load)
}

// Refresh calls load unconditionally and overwrites the entry on success.
func (c *Cache) Refresh(ctx context.Context, key string, load Loader) (json.RawMessage, error) {
	data, err := load(ctx)
	if err != nil {
		return nil, err
	}

	raw, err := json.Marshal(envelope{Data: data, Timestamp: c.now().UnixMilli()})
	if err != nil {
		return nil, fmt.Errorf("encode cache entry %s: %w", key, err)
	}
	// The store only saves round trips; a failed write still serves fresh data.
	if err := c.store.Set(ctx, key, raw); err != nil {
		c.logger.Warn(ctx, "cache write failed", "key", key, "error", err)
	}
	return data, nil
}

func (c *Cache) lookup(ctx context.Context, key string) (json.RawMessage, bool) {
	raw, err := c.store.Get(ctx, key)
	if err != nil {
		c.logger.Warn(ctx, "cache read failed", "key", key, "error", err)
		return nil, false
	}
	if raw == nil {
		return nil, false
	}

	var e envelope
	if err := json.Unmarshal(raw, &e); err != nil || e.Data == nil {
		c.logger.Warn(ctx, "ignoring unreadable cache entry", "key", key)
		return nil, false
	}

	age := c.now().UnixMilli() - e.Timestamp
	if age >= c.window.Milliseconds() {
		return nil, false
	}

	marker, ok, err := c.LastAdminWrite(ctx)
	if err != nil {
		// Unknown marker: assume an admin wrote after us.
		c.logger.Warn(ctx, "write marker read failed", "error", err)
		return nil, false
	}
	// Equal stamps count as stale: a write in the same millisecond as the
	// load may not be reflected in it.
	if ok && marker >= e.Timestamp {
		return nil, false
	}
	return e.Data, true
}

// MarkAdminWrite records "now" as the last admin write. Every entry written
// before this instant is bypassed by the next Fetch.
func (c *Cache) MarkAdminWrite(ctx context.Context) error {
	value := strconv.FormatInt(c.now().UnixMilli(), 10)
	if err := c.store.Set(ctx, c.markerKey, []byte(value)); err != nil {
		return fmt.Errorf("set write marker: %w", err)
	}
	return nil
}

// LastAdminWrite returns the marker in epoch milliseconds; ok is false when
// no admin write was ever recorded.
func (c *Cache) LastAdminWrite(ctx context.Context) (epochMs int64, ok bool, err error) {
	raw, err := c.store.Get(ctx, c.markerKey)
	if err != nil {
		return 0, false, err
	}
	if raw == nil {
		return 0, false, nil
	}
	v, err := strconv.ParseInt(string(raw), 10, 64)
	if err != nil {
		return 0, false, fmt.Errorf("parse write marker %q: %w", raw, err)
	}
	return v, true, nil
}

// FetchJSON is Fetch for a typed collection. A cached payload that no longer
// decodes into T is reloaded once instead of failing.
func FetchJSON[T any](ctx context.Context, c *Cache, key string, load func(ctx context.Context) (T, error)) (T, error) {
	var out T

	loader := func(ctx context.Context) (json.RawMessage, error) {
		v, err := load(ctx)
		if err != nil {
			return nil, err
		}
		return json.Marshal(v)
	}

	data, err := c.Fetch(ctx, key, loader)
	if err != nil {
		return out, err
	}
	if err := json.Unmarshal(data, &out); err == nil {
		return out, nil
	}

	data, err = c.Refresh(ctx, key, loader)
	if err != nil {
		return out, err
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return out, errors.Join(common.ErrorInternal, fmt.Errorf("decode %s: %w", key, err))
	}
	return out, nil
}
