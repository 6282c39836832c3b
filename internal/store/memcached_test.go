package store

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/AhmedHeshamC/weatherAPI/internal/weather"
)

func TestMemcachedExpirationSeconds(t *testing.T) {
	assert.Equal(t, int32(0), expirationSeconds(0))
	assert.Equal(t, int32(1), expirationSeconds(10*time.Millisecond))
	assert.Equal(t, int32(3600), expirationSeconds(time.Hour))

	// Beyond 30 days memcached expects an absolute timestamp.
	abs := expirationSeconds(60 * 24 * time.Hour)
	assert.Greater(t, int64(abs), time.Now().Unix())
}

func TestMemcacheKey(t *testing.T) {
	assert.Equal(t, "weather_new_york", memcacheKey("weather_new_york"))
	assert.Equal(t, "weather_são_paulo", memcacheKey("weather_são_paulo"))

	long := "weather_" + strings.Repeat("x", 300)
	hashed := memcacheKey(long)
	assert.LessOrEqual(t, len(hashed), maxKeyLength)
	assert.True(t, strings.HasPrefix(hashed, weather.KeyPrefix))
	assert.Equal(t, hashed, memcacheKey(long))
	assert.NotEqual(t, hashed, memcacheKey(long+"y"))

	for _, key := range []string{"weather_a\x01b", "weather_a\x7fb", "weather_a b"} {
		k := memcacheKey(key)
		assert.NotEqual(t, key, k)
		assert.False(t, strings.ContainsFunc(k, illegalKeyRune), "key %q", k)
	}
}

func TestMemcachedStoreHonorsCanceledContext(t *testing.T) {
	m := NewMemcachedStore(50*time.Millisecond, "127.0.0.1:1")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := m.Get(ctx, "weather_london")
	assert.ErrorIs(t, err, context.Canceled)
	assert.ErrorIs(t, m.Set(ctx, "weather_london", []byte("x"), time.Minute), context.Canceled)
}
