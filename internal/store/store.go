// Package store holds the cache backends behind weather.Cache.
package store

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/AhmedHeshamC/weatherAPI/internal/weather"
)

// Backend names accepted by Open.
const (
	BackendRedis     = "redis"
	BackendMemcached = "memcached"
	BackendSQLite    = "sqlite"
	BackendMemory    = "memory"
)

// Config selects and configures a backend.
type Config struct {
	Backend         string
	Redis           RedisConfig
	MemcachedServer string
	SQLitePath      string
	OpTimeout       time.Duration

	// LocalTTL > 0 puts an in-process tier in front of a shared backend.
	LocalTTL  time.Duration
	LocalSize int

	Debug bool
}

// Opened is a ready cache plus whatever must be closed on shutdown.
// Purge is nil for backends that expire entries on their own.
type Opened struct {
	Cache weather.Cache
	Ping  func(ctx context.Context) error
	Purge func(ctx context.Context) (int64, error)
	io.Closer
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// Open builds the configured backend.
func Open(cfg Config) (*Opened, error) {
	var (
		shared weather.Cache
		ping   = func(context.Context) error { return nil }
		closer io.Closer = nopCloser{}
		purge  func(context.Context) (int64, error)
	)

	switch cfg.Backend {
	case "", BackendRedis:
		cli := NewRedisClient(cfg.Redis)
		rs := NewRedisStore(cli)
		shared, ping, closer = rs, rs.Ping, cli
	case BackendMemcached:
		ms := NewMemcachedStore(cfg.OpTimeout, cfg.MemcachedServer)
		shared, ping = ms, ms.Ping
	case BackendSQLite:
		ss, err := OpenSQLiteStore(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		shared, closer, purge = ss, ss, ss.Purge
	case BackendMemory:
		return &Opened{
			Cache:  wrap(NewMemoryStore(cfg.LocalSize, 0), BackendMemory, cfg.Debug),
			Ping:   ping,
			Closer: closer,
		}, nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Backend)
	}

	c := wrap(shared, cfg.Backend, cfg.Debug)
	if cfg.LocalTTL > 0 {
		local := wrap(NewMemoryStore(cfg.LocalSize, cfg.LocalTTL), "local", cfg.Debug)
		c = NewTieredStore(local, c, cfg.LocalTTL)
	}
	return &Opened{Cache: c, Ping: ping, Purge: purge, Closer: closer}, nil
}

func wrap(c weather.Cache, name string, debug bool) weather.Cache {
	if !debug {
		return c
	}
	return Chain(c, LoggerMiddleware(name))
}
