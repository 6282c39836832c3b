package scheduler

import (
	"context"
	"log"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/AhmedHeshamC/weatherAPI/internal/weather"
)

// Refresher re-fetches locations and rewrites their cache entries.
type Refresher interface {
	Refresh(ctx context.Context, locations []string) (int, error)
}

// PurgeFunc deletes expired cache entries and reports how many went.
type PurgeFunc func(ctx context.Context) (int64, error)

// Scheduler periodically refreshes the cache for configured locations so hot
// entries are replaced before they expire.
type Scheduler struct {
	scheduler *gocron.Scheduler
	refresher Refresher
	locations []string
	interval  time.Duration
	purge     PurgeFunc
}

// New creates a new Scheduler.
func New(locations []string, interval time.Duration, refresher Refresher) *Scheduler {
	s := gocron.NewScheduler(time.UTC)
	return &Scheduler{
		scheduler: s,
		refresher: refresher,
		locations: locations,
		interval:  interval,
	}
}

// PurgeExpired registers an hourly cleanup job. Call before Start.
func (s *Scheduler) PurgeExpired(fn PurgeFunc) {
	s.purge = fn
}

// Start schedules the periodic jobs and starts the underlying scheduler.
func (s *Scheduler) Start() error {
	if len(s.locations) == 0 && s.purge == nil {
		log.Println("INFO: scheduler: no warm locations configured; nothing to schedule")
		return nil
	}

	if len(s.locations) > 0 {
		minutes := int(s.interval.Minutes())
		if minutes <= 0 {
			minutes = 30
		}
		if _, err := s.scheduler.Every(minutes).Minutes().Do(s.RunOnce); err != nil {
			return err
		}
	}

	if s.purge != nil {
		if _, err := s.scheduler.Every(1).Hour().Do(s.runPurge); err != nil {
			return err
		}
	}

	s.scheduler.StartAsync()
	return nil
}

// RunOnce refreshes every configured location, one batch at a time.
func (s *Scheduler) RunOnce() {
	log.Println("INFO: scheduler: running cache warm job")

	refreshed := 0
	for _, chunk := range chunks(s.locations, weather.MaxBatchSize) {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		n, err := s.refresher.Refresh(ctx, chunk)
		cancel()
		if err != nil {
			log.Printf("ERROR: scheduler: refresh failed for %v: %v", chunk, err)
			continue
		}
		refreshed += n
	}

	log.Printf("INFO: scheduler: completed cache warm job, refreshed %d of %d locations", refreshed, len(s.locations))
}

func (s *Scheduler) runPurge() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	n, err := s.purge(ctx)
	if err != nil {
		log.Printf("ERROR: scheduler: purge of expired cache entries failed: %v", err)
		return
	}
	log.Printf("INFO: scheduler: purged %d expired cache entries", n)
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}

func chunks(items []string, size int) [][]string {
	var out [][]string
	for len(items) > size {
		out = append(out, items[:size])
		items = items[size:]
	}
	if len(items) > 0 {
		out = append(out, items)
	}
	return out
}
