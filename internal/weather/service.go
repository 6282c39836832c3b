package weather

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"
)

const unresolvedReason = "Data not found or processing error"

// Service resolves batches of locations through the cache and, for misses,
// the upstream provider.
type Service struct {
	cache        *CacheGateway
	provider     Provider
	ttl          time.Duration
	fetchTimeout time.Duration
	writeTimeout time.Duration
}

// Options tunes a Service. Zero values fall back to defaults.
type Options struct {
	// TTL applied to entries written back after a fetch.
	TTL time.Duration
	// FetchTimeout bounds each upstream call.
	FetchTimeout time.Duration
	// WriteBackTimeout bounds the whole write-back phase.
	WriteBackTimeout time.Duration
}

const (
	DefaultTTL              = time.Hour
	DefaultFetchTimeout     = 10 * time.Second
	DefaultWriteBackTimeout = 5 * time.Second
)

// NewService creates a new Service.
func NewService(cache *CacheGateway, provider Provider, opts Options) *Service {
	if opts.TTL <= 0 {
		opts.TTL = DefaultTTL
	}
	if opts.FetchTimeout <= 0 {
		opts.FetchTimeout = DefaultFetchTimeout
	}
	if opts.WriteBackTimeout <= 0 {
		opts.WriteBackTimeout = DefaultWriteBackTimeout
	}
	return &Service{
		cache:        cache,
		provider:     provider,
		ttl:          opts.TTL,
		fetchTimeout: opts.FetchTimeout,
		writeTimeout: opts.WriteBackTimeout,
	}
}

// CacheStats exposes the gateway counters.
func (s *Service) CacheStats() StatsSnapshot {
	return s.cache.Stats()
}

// Resolve returns one Outcome per location, in input order. Only an invalid
// batch or an internal defect produce an error; every cache and upstream
// failure stays inside its own slot.
func (s *Service) Resolve(ctx context.Context, locations []string) ([]Outcome, error) {
	if err := ValidateBatch(locations); err != nil {
		return nil, err
	}

	n := len(locations)
	keys := make([]string, n)
	for i, loc := range locations {
		keys[i] = NormalizeKey(loc)
	}

	results := make([]Outcome, n)
	resolved := make([]bool, n)

	if err := s.lookupAll(ctx, keys, results, resolved); err != nil {
		return nil, err
	}

	var pending []PendingFetch
	for i := range locations {
		if !resolved[i] {
			pending = append(pending, PendingFetch{Index: i, Location: locations[i], Key: keys[i]})
		}
	}

	if len(pending) > 0 {
		log.Printf("INFO: fetching %d of %d locations from %s", len(pending), n, s.provider.Name())

		fetched, err := s.fetchAll(ctx, pending)
		if err != nil {
			return nil, err
		}
		for i, p := range pending {
			results[p.Index] = fetched[i]
			resolved[p.Index] = true
		}
		if err := s.writeBack(ctx, pending, fetched); err != nil {
			return nil, err
		}
	}

	for i := range results {
		if !resolved[i] {
			results[i] = Failed(locations[i], unresolvedReason)
		}
	}
	return results, nil
}

// Refresh fetches every location without consulting the cache and writes the
// successes back. It returns how many locations were refreshed.
func (s *Service) Refresh(ctx context.Context, locations []string) (int, error) {
	if err := ValidateBatch(locations); err != nil {
		return 0, err
	}

	pending := make([]PendingFetch, len(locations))
	for i, loc := range locations {
		pending[i] = PendingFetch{Index: i, Location: loc, Key: NormalizeKey(loc)}
	}

	fetched, err := s.fetchAll(ctx, pending)
	if err != nil {
		return 0, err
	}
	if err := s.writeBack(ctx, pending, fetched); err != nil {
		return 0, err
	}

	refreshed := 0
	for _, o := range fetched {
		if o.OK() {
			refreshed++
		}
	}
	return refreshed, nil
}

// lookupAll runs the cache phase. A hit with a decodable body resolves its
// slot; misses, errors and corrupt bodies leave it for the fetch phase.
func (s *Service) lookupAll(ctx context.Context, keys []string, results []Outcome, resolved []bool) error {
	return fanOut(len(keys), func(i int) {
		status, data := s.cache.Get(ctx, keys[i])
		if status != LookupHit {
			return
		}
		snap, err := DecodeSnapshot(data)
		if err != nil {
			s.cache.MarkCorrupt(keys[i], err)
			return
		}
		results[i] = Succeeded(snap)
		resolved[i] = true
	})
}

// fetchAll runs the fetch phase; out[i] corresponds to pending[i].
func (s *Service) fetchAll(ctx context.Context, pending []PendingFetch) ([]Outcome, error) {
	out := make([]Outcome, len(pending))
	err := fanOut(len(pending), func(i int) {
		out[i] = s.fetchOne(ctx, pending[i].Location)
	})
	return out, err
}

func (s *Service) fetchOne(ctx context.Context, location string) Outcome {
	ctx, cancel := context.WithTimeout(ctx, s.fetchTimeout)
	defer cancel()

	snap, err := s.provider.Fetch(ctx, location)
	if err == nil {
		return Succeeded(snap)
	}

	log.Printf("ERROR: provider %s fetch failed for %s: %v", s.provider.Name(), location, err)

	var fe *FetchError
	if !errors.As(err, &fe) {
		fe = NetworkError(location, err)
	}
	return Failed(location, fe.Message)
}

// writeBack caches every successful fetch. Results are not inspected; the
// phase is joined only so no write outlives the request.
func (s *Service) writeBack(ctx context.Context, pending []PendingFetch, fetched []Outcome) error {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.writeTimeout)
	defer cancel()

	return fanOut(len(pending), func(i int) {
		if !fetched[i].OK() {
			return
		}
		data, err := EncodeSnapshot(fetched[i].Snapshot)
		if err != nil {
			log.Printf("ERROR: encode snapshot for %s: %v", pending[i].Location, err)
			return
		}
		_ = s.cache.Set(ctx, pending[i].Key, data, s.ttl)
	})
}

// fanOut runs fn(0..n-1) concurrently and waits for all of them. A panic in
// any call is recovered and reported as ErrInternal once every call settled.
func fanOut(n int, fn func(i int)) error {
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		panicked error
	)

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					mu.Lock()
					if panicked == nil {
						panicked = fmt.Errorf("%w: %v", ErrInternal, r)
					}
					mu.Unlock()
				}
			}()
			fn(i)
		}(i)
	}

	wg.Wait()
	return panicked
}
