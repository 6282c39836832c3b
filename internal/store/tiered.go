package store

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/AhmedHeshamC/weatherAPI/internal/weather"
)

// TieredStore puts a local cache in front of a shared one. Reads go L1 then
// L2 and back-populate L1; writes go to both. L1 failures fall through to L2.
type TieredStore struct {
	local    weather.Cache
	remote   weather.Cache
	localTTL time.Duration
}

func NewTieredStore(local, remote weather.Cache, localTTL time.Duration) *TieredStore {
	return &TieredStore{
		local:    local,
		remote:   remote,
		localTTL: localTTL,
	}
}

func (t *TieredStore) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := t.local.Get(ctx, key)
	if err == nil {
		return data, nil
	}
	if !errors.Is(err, weather.ErrCacheMiss) {
		log.Printf("ERROR: local cache get failed for key %s, trying shared cache: %v", key, err)
	}

	data, err = t.remote.Get(ctx, key)
	if err != nil {
		return nil, err
	}

	if err := t.local.Set(ctx, key, data, t.localTTL); err != nil {
		log.Printf("ERROR: local cache back-populate failed for key %s: %v", key, err)
	}
	return data, nil
}

// Set writes L2 first; the local copy never outlives the shared one.
func (t *TieredStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := t.remote.Set(ctx, key, value, ttl); err != nil {
		return err
	}

	localTTL := t.localTTL
	if ttl > 0 && ttl < localTTL {
		localTTL = ttl
	}
	if err := t.local.Set(ctx, key, value, localTTL); err != nil {
		log.Printf("ERROR: local cache set failed for key %s: %v", key, err)
	}
	return nil
}
