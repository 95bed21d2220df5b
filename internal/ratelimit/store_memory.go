package ratelimit

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

var _ CounterStore = (*MemoryStore)(nil)

// MemoryStore keeps attempt buckets in process memory. Expired buckets
// are swept by the cache janitor; correctness holds for a single
// instance only.
type MemoryStore struct {
	cache *gocache.Cache
}

func NewMemoryStore(window time.Duration) *MemoryStore {
	return &MemoryStore{
		cache: gocache.New(window, 2*window),
	}
}

func (s *MemoryStore) Increment(_ context.Context, key string, window time.Duration) (int64, error) {
	// Add fails when the bucket already exists, which keeps the
	// original expiry: a fixed window anchored at the first attempt.
	if err := s.cache.Add(key, int64(1), window); err == nil {
		return 1, nil
	}
	n, err := s.cache.IncrementInt64(key, 1)
	if err != nil {
		// Bucket expired between Add and Increment; start fresh.
		s.cache.Set(key, int64(1), window)
		return 1, nil
	}
	return n, nil
}

func (s *MemoryStore) Count(_ context.Context, key string) (int64, error) {
	v, found := s.cache.Get(key)
	if !found {
		return 0, nil
	}
	n, ok := v.(int64)
	if !ok {
		return 0, nil
	}
	return n, nil
}
