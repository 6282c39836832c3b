package weather

import (
	"context"
	"time"
)

// Provider abstracts the upstream weather source (e.g. Visual Crossing,
// WeatherAPI, OpenWeatherMap, Open-Meteo). Fetch makes a single attempt and
// returns a *FetchError on failure.
type Provider interface {
	Name() string
	Fetch(ctx context.Context, location string) (Snapshot, error)
}

// Cache is the key-value contract a cache backend must satisfy.
// Get returns ErrCacheMiss when the key is absent; any other error means the
// cache itself could not answer.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}
