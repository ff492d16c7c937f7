package store

import (
	"errors"
	"sync"
	"time"

	"github.com/skyscope/skyscope-server/internal/weather"
)

// ErrNotFound is returned when no data is available for a given location.
var ErrNotFound = errors.New("no weather data for location")

// StoredSnapshot pairs a normalized snapshot with the time it was fetched.
type StoredSnapshot struct {
	Snapshot  weather.WeatherSnapshot `json:"snapshot"`
	FetchedAt time.Time               `json:"fetchedAt"`
}

// MemoryStore is a concurrency-safe in-memory snapshot store backing the
// multi-city dashboard. Snapshots are keyed by city:country and retained
// up to a count and age limit per location.
type MemoryStore struct {
	mu sync.RWMutex

	data map[string][]StoredSnapshot

	maxHistory int           // max snapshots per location, <= 0 is unlimited
	maxAge     time.Duration // max snapshot age, 0 is unlimited
}

func NewMemoryStore(maxHistory int, maxAge time.Duration) *MemoryStore {
	return &MemoryStore{
		data:       make(map[string][]StoredSnapshot),
		maxHistory: maxHistory,
		maxAge:     maxAge,
	}
}

// Save appends a snapshot for its own location and enforces retention.
func (s *MemoryStore) Save(snapshot weather.WeatherSnapshot) {
	s.saveAt(snapshot, time.Now().UTC())
}

func (s *MemoryStore) saveAt(snapshot weather.WeatherSnapshot, fetchedAt time.Time) {
	key := snapshot.Key()

	s.mu.Lock()
	defer s.mu.Unlock()

	history := append(s.data[key], StoredSnapshot{Snapshot: snapshot, FetchedAt: fetchedAt})

	if s.maxHistory > 0 && len(history) > s.maxHistory {
		history = history[len(history)-s.maxHistory:]
	}

	if s.maxAge > 0 {
		cutoff := fetchedAt.Add(-s.maxAge)
		i := 0
		for ; i < len(history); i++ {
			if !history[i].FetchedAt.Before(cutoff) {
				break
			}
		}
		history = history[i:]
	}

	s.data[key] = history
}

// Latest returns the most recent snapshot for a location.
func (s *MemoryStore) Latest(city, country string) (StoredSnapshot, error) {
	key := weather.LocationKey(city, country)

	s.mu.RLock()
	defer s.mu.RUnlock()

	history := s.data[key]
	if len(history) == 0 {
		return StoredSnapshot{}, ErrNotFound
	}
	return history[len(history)-1], nil
}

// Range returns snapshots for a location fetched between from and to,
// inclusive.
func (s *MemoryStore) Range(city, country string, from, to time.Time) ([]StoredSnapshot, error) {
	key := weather.LocationKey(city, country)

	s.mu.RLock()
	defer s.mu.RUnlock()

	history := s.data[key]
	if len(history) == 0 {
		return nil, ErrNotFound
	}

	var result []StoredSnapshot
	for _, entry := range history {
		if !entry.FetchedAt.Before(from) && !entry.FetchedAt.After(to) {
			result = append(result, entry)
		}
	}

	if len(result) == 0 {
		return nil, ErrNotFound
	}
	return result, nil
}
