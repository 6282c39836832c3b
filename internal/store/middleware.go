package store

import (
	"context"
	"log"
	"time"

	"github.com/AhmedHeshamC/weatherAPI/internal/weather"
)

// Middleware decorates a cache backend.
type Middleware func(next weather.Cache) weather.Cache

// Chain wraps c so that mws[0] is the outermost layer.
func Chain(c weather.Cache, mws ...Middleware) weather.Cache {
	for i := len(mws) - 1; i >= 0; i-- {
		c = mws[i](c)
	}
	return c
}

type loggerWrapper struct {
	name string
	next weather.Cache
}

// LoggerMiddleware logs every operation on the wrapped backend with its
// duration and outcome.
func LoggerMiddleware(name string) Middleware {
	return func(next weather.Cache) weather.Cache {
		return &loggerWrapper{name: name, next: next}
	}
}

func (l *loggerWrapper) Get(ctx context.Context, key string) ([]byte, error) {
	start := time.Now()
	data, err := l.next.Get(ctx, key)
	log.Printf("DEBUG: [%s] get %s finished in %s, bytes=%d, err=%v", l.name, key, time.Since(start), len(data), err)
	return data, err
}

func (l *loggerWrapper) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	start := time.Now()
	err := l.next.Set(ctx, key, value, ttl)
	log.Printf("DEBUG: [%s] set %s (ttl %s) finished in %s, bytes=%d, err=%v", l.name, key, ttl, time.Since(start), len(value), err)
	return err
}
