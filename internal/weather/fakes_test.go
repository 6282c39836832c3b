package weather

import (
	"context"
	"errors"
	"sync"
	"time"
)

var errCacheDown = errors.New("connection refused")

// fakeCache is an in-memory Cache that records calls and can be told to fail.
type fakeCache struct {
	mu       sync.Mutex
	data     map[string][]byte
	ttls     map[string]time.Duration
	getErr   error
	setErr   error
	gets     int
	sets     int
	setKeys  []string
	getDelay time.Duration
}

func newFakeCache() *fakeCache {
	return &fakeCache{
		data: map[string][]byte{},
		ttls: map[string]time.Duration{},
	}
}

func (f *fakeCache) Get(ctx context.Context, key string) ([]byte, error) {
	if f.getDelay > 0 {
		time.Sleep(f.getDelay)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gets++
	if f.getErr != nil {
		return nil, f.getErr
	}
	v, ok := f.data[key]
	if !ok {
		return nil, ErrCacheMiss
	}
	return v, nil
}

func (f *fakeCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sets++
	f.setKeys = append(f.setKeys, key)
	if f.setErr != nil {
		return f.setErr
	}
	f.data[key] = value
	f.ttls[key] = ttl
	return nil
}

func (f *fakeCache) counts() (gets, sets int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.gets, f.sets
}

func (f *fakeCache) prime(location string, s Snapshot) {
	data, err := EncodeSnapshot(s)
	if err != nil {
		panic(err)
	}
	f.data[NormalizeKey(location)] = data
}

// fakeProvider answers from a table; unknown locations are NotFound.
type fakeProvider struct {
	mu       sync.Mutex
	results  map[string]Snapshot
	failures map[string]error
	calls    map[string]int
	panicOn  string
	block    bool
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{
		results:  map[string]Snapshot{},
		failures: map[string]error{},
		calls:    map[string]int{},
	}
}

func (p *fakeProvider) Name() string { return "fake" }

func (p *fakeProvider) Fetch(ctx context.Context, location string) (Snapshot, error) {
	p.mu.Lock()
	p.calls[location]++
	snap, ok := p.results[location]
	ferr := p.failures[location]
	p.mu.Unlock()

	if location == p.panicOn {
		panic("provider bug")
	}
	if p.block {
		<-ctx.Done()
		return Snapshot{}, NetworkError(location, ctx.Err())
	}
	if ferr != nil {
		return Snapshot{}, ferr
	}
	if !ok {
		return Snapshot{}, NotFoundError(location)
	}
	return snap, nil
}

func (p *fakeProvider) totalCalls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, c := range p.calls {
		n += c
	}
	return n
}

func snapshotFor(label string) Snapshot {
	return Snapshot{
		Location:    label,
		Temperature: "18.2°C",
		Description: "Partially cloudy",
		Humidity:    "71%",
		WindSpeed:   "14.8 km/h",
		Source:      "Visual Crossing API",
	}
}
