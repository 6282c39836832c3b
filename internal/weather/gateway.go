package weather

import (
	"context"
	"errors"
	"log"
	"time"

	"go.uber.org/atomic"
)

// LookupStatus is the outcome of a cache read as seen by the resolver.
type LookupStatus uint8

const (
	LookupMiss LookupStatus = iota
	LookupHit
	LookupError
)

func (s LookupStatus) String() string {
	switch s {
	case LookupHit:
		return "hit"
	case LookupError:
		return "error"
	default:
		return "miss"
	}
}

// CacheStats counts gateway traffic. Errors and misses are kept apart even
// though the resolver treats them alike.
type CacheStats struct {
	Hits        atomic.Int64
	Misses      atomic.Int64
	Errors      atomic.Int64
	Corrupt     atomic.Int64
	Writes      atomic.Int64
	WriteErrors atomic.Int64
}

// StatsSnapshot is a point-in-time copy of CacheStats.
type StatsSnapshot struct {
	Hits        int64 `json:"hits"`
	Misses      int64 `json:"misses"`
	Errors      int64 `json:"errors"`
	Corrupt     int64 `json:"corrupt"`
	Writes      int64 `json:"writes"`
	WriteErrors int64 `json:"writeErrors"`
}

// CacheGateway puts timeouts, logging and counters around a Cache backend.
// It never turns a cache failure into a request failure.
type CacheGateway struct {
	cache     Cache
	opTimeout time.Duration
	stats     CacheStats
}

// NewCacheGateway wraps cache. A non-positive opTimeout disables the
// per-operation bound.
func NewCacheGateway(cache Cache, opTimeout time.Duration) *CacheGateway {
	return &CacheGateway{
		cache:     cache,
		opTimeout: opTimeout,
	}
}

// Get reads key. The returned body is only meaningful for LookupHit.
func (g *CacheGateway) Get(ctx context.Context, key string) (LookupStatus, []byte) {
	ctx, cancel := g.bound(ctx)
	defer cancel()

	data, err := g.cache.Get(ctx, key)
	switch {
	case err == nil:
		g.stats.Hits.Inc()
		log.Printf("DEBUG: cache hit for key %s", key)
		return LookupHit, data
	case errors.Is(err, ErrCacheMiss):
		g.stats.Misses.Inc()
		log.Printf("DEBUG: cache miss for key %s", key)
		return LookupMiss, nil
	default:
		g.stats.Errors.Inc()
		log.Printf("ERROR: cache get failed for key %s: %v", key, err)
		return LookupError, nil
	}
}

// Set stores data under key for ttl. The error is logged and returned for
// callers that care; the resolver does not.
func (g *CacheGateway) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	ctx, cancel := g.bound(ctx)
	defer cancel()

	if err := g.cache.Set(ctx, key, data, ttl); err != nil {
		g.stats.WriteErrors.Inc()
		log.Printf("ERROR: cache set failed for key %s: %v", key, err)
		return err
	}
	g.stats.Writes.Inc()
	log.Printf("DEBUG: cached key %s for %s", key, ttl)
	return nil
}

// MarkCorrupt records a hit whose body could not be decoded.
func (g *CacheGateway) MarkCorrupt(key string, err error) {
	g.stats.Corrupt.Inc()
	log.Printf("ERROR: discarding cached data for key %s: %v", key, err)
}

// Stats returns the current counters.
func (g *CacheGateway) Stats() StatsSnapshot {
	return StatsSnapshot{
		Hits:        g.stats.Hits.Load(),
		Misses:      g.stats.Misses.Load(),
		Errors:      g.stats.Errors.Load(),
		Corrupt:     g.stats.Corrupt.Load(),
		Writes:      g.stats.Writes.Load(),
		WriteErrors: g.stats.WriteErrors.Load(),
	}
}

func (g *CacheGateway) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	if g.opTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, g.opTimeout)
}
