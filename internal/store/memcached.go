package store

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bradfitz/gomemcache/memcache"

	"github.com/AhmedHeshamC/weatherAPI/internal/weather"
)

// MemcachedStore is a weather.Cache backed by one or more memcached servers.
// gomemcache has no context support; the client timeout bounds each call.
type MemcachedStore struct {
	client *memcache.Client
}

func NewMemcachedStore(timeout time.Duration, servers ...string) *MemcachedStore {
	client := memcache.New(servers...)
	if timeout > 0 {
		client.Timeout = timeout
	}
	return &MemcachedStore{client: client}
}

func (m *MemcachedStore) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	item, err := m.client.Get(memcacheKey(key))
	if err != nil {
		if errors.Is(err, memcache.ErrCacheMiss) {
			return nil, weather.ErrCacheMiss
		}
		return nil, fmt.Errorf("memcached get %s: %w", key, err)
	}
	return item.Value, nil
}

func (m *MemcachedStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := m.client.Set(&memcache.Item{
		Key:        memcacheKey(key),
		Value:      value,
		Expiration: expirationSeconds(ttl),
	})
	if err != nil {
		return fmt.Errorf("memcached set %s: %w", key, err)
	}
	return nil
}

// Ping checks that every server answers.
func (m *MemcachedStore) Ping(context.Context) error {
	return m.client.Ping()
}

// maxKeyLength is memcached's key limit.
const maxKeyLength = 250

// memcacheKey returns key unchanged when memcached accepts it. Longer keys, or
// keys with spaces or control bytes, are replaced by a SHA-256 digest under
// the same prefix.
func memcacheKey(key string) string {
	if len(key) <= maxKeyLength && !strings.ContainsFunc(key, illegalKeyRune) {
		return key
	}
	sum := sha256.Sum256([]byte(key))
	return weather.KeyPrefix + "sha256_" + hex.EncodeToString(sum[:])
}

func illegalKeyRune(r rune) bool {
	return r <= ' ' || r == 0x7f
}

// expirationSeconds rounds ttl up to whole seconds; memcached treats values
// above 30 days as absolute unix timestamps, so those are converted.
func expirationSeconds(ttl time.Duration) int32 {
	if ttl <= 0 {
		return 0
	}
	secs := int64((ttl + time.Second - 1) / time.Second)
	const thirtyDays = 30 * 24 * 60 * 60
	if secs > thirtyDays {
		return int32(time.Now().Unix() + secs)
	}
	return int32(secs)
}
