package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AhmedHeshamC/weatherAPI/internal/store"
)

func TestLoadRequiresServerAPIKey(t *testing.T) {
	t.Setenv("SERVER_API_KEY", "")

	_, err := Load()
	assert.ErrorIs(t, err, ErrMissingAPIKey)
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("SERVER_API_KEY", "secret")
	t.Setenv("WEATHER_API_KEY", "vc-key")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "3000", cfg.Port)
	assert.Equal(t, "visualcrossing", cfg.Provider)
	assert.Equal(t, "vc-key", cfg.ProviderKeys.VisualCrossing)
	assert.Equal(t, 15*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, time.Hour, cfg.CacheTTL)
	assert.Equal(t, store.BackendRedis, cfg.Cache.Backend)
	assert.Equal(t, 2*time.Second, cfg.Cache.OpTimeout)
	assert.Zero(t, cfg.Cache.LocalTTL)
	assert.Equal(t, 100, cfg.RateLimitMax)
	assert.Equal(t, 15*time.Minute, cfg.RateLimitWindow)
	assert.Empty(t, cfg.WarmLocations)

	opts := cfg.ServiceOptions()
	assert.Equal(t, time.Hour, opts.TTL)
	assert.Equal(t, 10*time.Second, opts.FetchTimeout)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("SERVER_API_KEY", "secret")
	t.Setenv("CACHE_BACKEND", "SQLite")
	t.Setenv("CACHE_EXPIRATION_SECONDS", "120")
	t.Setenv("LOCAL_CACHE_TTL", "30s")
	t.Setenv("CACHE_DEBUG", "true")
	t.Setenv("WARM_LOCATIONS", " London, New York ,,10001 ")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, store.BackendSQLite, cfg.Cache.Backend)
	assert.Equal(t, 2*time.Minute, cfg.CacheTTL)
	assert.Equal(t, 30*time.Second, cfg.Cache.LocalTTL)
	assert.True(t, cfg.Cache.Debug)
	assert.Equal(t, []string{"London", "New York", "10001"}, cfg.WarmLocations)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	t.Setenv("SERVER_API_KEY", "secret")

	t.Run("ttl", func(t *testing.T) {
		t.Setenv("CACHE_EXPIRATION_SECONDS", "0")
		_, err := Load()
		assert.Error(t, err)
	})

	t.Run("duration", func(t *testing.T) {
		t.Setenv("FETCH_TIMEOUT", "soon")
		_, err := Load()
		assert.ErrorContains(t, err, "invalid FETCH_TIMEOUT")
	})
}
