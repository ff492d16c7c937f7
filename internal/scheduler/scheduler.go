package scheduler

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/skyscope/skyscope-server/internal/favorites"
	"github.com/skyscope/skyscope-server/internal/providers"
	"github.com/skyscope/skyscope-server/internal/weather"
)

// LocationSource lists the locations the refresh job should keep warm.
type LocationSource interface {
	DistinctLocations(ctx context.Context) ([]favorites.Favorite, error)
}

// Fetcher runs one fetch cycle for a location.
type Fetcher interface {
	FetchAll(ctx context.Context, lat, lon float64, units weather.Units, override *providers.Location) (*weather.Bundle, error)
}

// SnapshotSink receives refreshed snapshots.
type SnapshotSink interface {
	Save(snapshot weather.WeatherSnapshot)
}

// Scheduler periodically refreshes a snapshot for every favorited
// location. Overlapping runs for the same location are serialized through
// a per-location ResultLatch so only the latest issued fetch lands.
type Scheduler struct {
	scheduler *gocron.Scheduler
	source    LocationSource
	fetcher   Fetcher
	sink      SnapshotSink
	interval  time.Duration

	mu      sync.Mutex
	latches map[string]*weather.ResultLatch
}

// New creates a Scheduler refreshing from source into sink every interval.
func New(source LocationSource, fetcher Fetcher, sink SnapshotSink, interval time.Duration) *Scheduler {
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		source:    source,
		fetcher:   fetcher,
		sink:      sink,
		interval:  interval,
		latches:   make(map[string]*weather.ResultLatch),
	}
}

// Start schedules the periodic job and starts the underlying scheduler.
func (s *Scheduler) Start() error {
	minutes := int(s.interval.Minutes())
	if minutes <= 0 {
		minutes = 15
	}

	_, err := s.scheduler.Every(minutes).Minutes().Do(s.refreshAll)
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	return nil
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}

func (s *Scheduler) refreshAll() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	locations, err := s.source.DistinctLocations(ctx)
	if err != nil {
		log.Printf("scheduler: listing favorited locations failed: %v", err)
		return
	}
	if len(locations) == 0 {
		return
	}

	log.Printf("scheduler: refreshing %d favorited locations", len(locations))

	var wg sync.WaitGroup
	for _, loc := range locations {
		loc := loc
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.refreshOne(ctx, loc)
		}()
	}
	wg.Wait()
}

func (s *Scheduler) refreshOne(ctx context.Context, loc favorites.Favorite) {
	latch := s.latchFor(weather.LocationKey(loc.CityName, loc.Country))
	gen := latch.Begin()

	fetchCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	bundle, err := s.fetcher.FetchAll(fetchCtx, loc.Lat, loc.Lon, weather.UnitsMetric, nil)
	if err != nil {
		log.Printf("scheduler: refresh failed for %s,%s: %v", loc.CityName, loc.Country, err)
		return
	}

	if !latch.Commit(gen, bundle) {
		// A newer refresh for this location was issued meanwhile.
		return
	}
	s.sink.Save(bundle.Weather)
}

func (s *Scheduler) latchFor(key string) *weather.ResultLatch {
	s.mu.Lock()
	defer s.mu.Unlock()
	latch, ok := s.latches[key]
	if !ok {
		latch = &weather.ResultLatch{}
		s.latches[key] = latch
	}
	return latch
}
