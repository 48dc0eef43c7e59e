package catalogcache

import (
	"context"
	"time"

	"github.com/jellydator/ttlcache/v3"
)

// MemoryStore is a process-local Store whose items expire after ttl.
// Reads do not extend an item's lifetime.
type MemoryStore struct {
	items *ttlcache.Cache[string, []byte]
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	items := ttlcache.New[string, []byte](
		ttlcache.WithTTL[string, []byte](ttl),
		ttlcache.WithDisableTouchOnHit[string, []byte](),
	)
	return &MemoryStore{items: items}
}

func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, error) {
	item := s.items.Get(key)
	if item == nil {
		return nil, nil
	}
	return item.Value(), nil
}

func (s *MemoryStore) Set(_ context.Context, key string, value []byte) error {
	s.items.Set(key, value, ttlcache.DefaultTTL)
	return nil
}

// Len reports the number of live items.
func (s *MemoryStore) Len() int { return s.items.Len() }
