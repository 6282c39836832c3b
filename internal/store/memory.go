package store

import (
	"context"
	"time"

	"github.com/maypok86/otter/v2"

	"github.com/AhmedHeshamC/weatherAPI/internal/weather"
)

// MemoryStore is an in-process weather.Cache bounded by entry count, with a
// per-entry expiry set on every write.
type MemoryStore struct {
	cache *otter.Cache[string, []byte]
}

// NewMemoryStore creates a MemoryStore holding at most maxEntries entries.
// defaultTTL applies until Set overrides it.
func NewMemoryStore(maxEntries int, defaultTTL time.Duration) *MemoryStore {
	if maxEntries <= 0 {
		maxEntries = 10_000
	}
	if defaultTTL <= 0 {
		defaultTTL = time.Hour
	}
	return &MemoryStore{
		cache: otter.Must(&otter.Options[string, []byte]{
			MaximumSize:      maxEntries,
			ExpiryCalculator: otter.ExpiryWriting[string, []byte](defaultTTL),
		}),
	}
}

func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, error) {
	if val, ok := s.cache.GetIfPresent(key); ok {
		return val, nil
	}
	return nil, weather.ErrCacheMiss
}

func (s *MemoryStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	s.cache.Set(key, value)
	if ttl > 0 {
		s.cache.SetExpiresAfter(key, ttl)
	}
	return nil
}
