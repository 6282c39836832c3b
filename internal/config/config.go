package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/AhmedHeshamC/weatherAPI/internal/store"
	"github.com/AhmedHeshamC/weatherAPI/internal/weather"
	"github.com/AhmedHeshamC/weatherAPI/internal/weather/providers"
)

// ErrMissingAPIKey is returned when SERVER_API_KEY is unset.
var ErrMissingAPIKey = errors.New("SERVER_API_KEY is not defined in the environment variables")

type AppConfig struct {
	Port string

	// ServerAPIKey guards /api/v1.
	ServerAPIKey string

	// Upstream provider selection and credentials.
	Provider     string
	ProviderKeys providers.Keys
	HTTPTimeout  time.Duration
	FetchTimeout time.Duration

	// Cache backend and write-back TTL.
	Cache    store.Config
	CacheTTL time.Duration

	// Inbound rate limit per client IP.
	RateLimitMax    int
	RateLimitWindow time.Duration

	// Locations kept warm by the scheduler.
	WarmLocations []string
	WarmInterval  time.Duration
}

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}
	cfg := &AppConfig{}

	cfg.Port = getenvDefault("PORT", "3000")
	cfg.ServerAPIKey = os.Getenv("SERVER_API_KEY")
	if cfg.ServerAPIKey == "" {
		return nil, ErrMissingAPIKey
	}

	cfg.Provider = strings.ToLower(getenvDefault("WEATHER_PROVIDER", "visualcrossing"))
	cfg.ProviderKeys = providers.Keys{
		VisualCrossing: os.Getenv("WEATHER_API_KEY"),
		WeatherAPI:     os.Getenv("WEATHERAPI_API_KEY"),
		OpenWeather:    os.Getenv("OPENWEATHER_API_KEY"),
		Geocoder:       os.Getenv("GEOCODER_API_KEY"),
	}

	var err error
	if cfg.HTTPTimeout, err = getenvDuration("HTTP_TIMEOUT", "15s"); err != nil {
		return nil, err
	}
	if cfg.FetchTimeout, err = getenvDuration("FETCH_TIMEOUT", "10s"); err != nil {
		return nil, err
	}

	ttlSeconds := getenvInt("CACHE_EXPIRATION_SECONDS", 3600)
	if ttlSeconds <= 0 {
		return nil, fmt.Errorf("invalid CACHE_EXPIRATION_SECONDS: must be positive, got %d", ttlSeconds)
	}
	cfg.CacheTTL = time.Duration(ttlSeconds) * time.Second

	cfg.Cache = store.Config{
		Backend: strings.ToLower(getenvDefault("CACHE_BACKEND", store.BackendRedis)),
		Redis: store.RedisConfig{
			Addr:     getenvDefault("REDIS_ADDR", "127.0.0.1:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       getenvInt("REDIS_DB", 0),
		},
		MemcachedServer: getenvDefault("MEMCACHED_SERVER", "127.0.0.1:11211"),
		SQLitePath:      getenvDefault("SQLITE_PATH", "weather-cache.db"),
		LocalSize:       getenvInt("LOCAL_CACHE_SIZE", 10_000),
		Debug:           getenvBool("CACHE_DEBUG", false),
	}
	if cfg.Cache.OpTimeout, err = getenvDuration("CACHE_OP_TIMEOUT", "2s"); err != nil {
		return nil, err
	}
	if cfg.Cache.LocalTTL, err = getenvDuration("LOCAL_CACHE_TTL", "0s"); err != nil {
		return nil, err
	}

	cfg.RateLimitMax = getenvInt("RATE_LIMIT_MAX", 100)
	if cfg.RateLimitWindow, err = getenvDuration("RATE_LIMIT_WINDOW", "15m"); err != nil {
		return nil, err
	}

	cfg.WarmLocations = splitList(os.Getenv("WARM_LOCATIONS"))
	if cfg.WarmInterval, err = getenvDuration("WARM_INTERVAL", "30m"); err != nil {
		return nil, err
	}

	return cfg, nil
}

// ServiceOptions maps the config onto weather.Options.
func (c *AppConfig) ServiceOptions() weather.Options {
	return weather.Options{
		TTL:          c.CacheTTL,
		FetchTimeout: c.FetchTimeout,
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}

func getenvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func getenvDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(getenvDefault(key, def))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
