package store

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AhmedHeshamC/weatherAPI/internal/weather"
)

func setupRedis(t *testing.T) (*miniredis.Miniredis, *RedisStore) {
	s, err := miniredis.Run()
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(s.Close)

	cli := redis.NewClient(&redis.Options{Addr: s.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = cli.Close() })
	return s, NewRedisStore(cli)
}

func TestRedisStoreGetSet(t *testing.T) {
	s, rs := setupRedis(t)
	ctx := context.Background()

	_, err := rs.Get(ctx, "weather_london")
	assert.ErrorIs(t, err, weather.ErrCacheMiss)

	require.NoError(t, rs.Set(ctx, "weather_london", []byte(`{"location":"London"}`), time.Hour))

	data, err := rs.Get(ctx, "weather_london")
	require.NoError(t, err)
	assert.Equal(t, `{"location":"London"}`, string(data))
	assert.Equal(t, time.Hour, s.TTL("weather_london"))
	assert.NoError(t, rs.Ping(ctx))
}

func TestRedisStoreExpiry(t *testing.T) {
	s, rs := setupRedis(t)
	ctx := context.Background()

	require.NoError(t, rs.Set(ctx, "weather_paris", []byte("x"), time.Minute))
	s.FastForward(2 * time.Minute)

	_, err := rs.Get(ctx, "weather_paris")
	assert.ErrorIs(t, err, weather.ErrCacheMiss)
}

func TestRedisStoreUnavailable(t *testing.T) {
	s, rs := setupRedis(t)
	s.Close()

	_, err := rs.Get(context.Background(), "weather_london")
	require.Error(t, err)
	assert.NotErrorIs(t, err, weather.ErrCacheMiss)

	assert.Error(t, rs.Set(context.Background(), "weather_london", []byte("x"), time.Minute))
}
