package weather

import "sync"

// ResultLatch serializes overlapping fetch cycles for one location.
// Each cycle calls Begin for a generation number; Commit stores a bundle
// only when its generation is still the latest issued. A slow superseded
// fetch therefore never clobbers a newer result: last request wins, not
// last to resolve.
type ResultLatch struct {
	mu     sync.Mutex
	issued uint64
	bundle *Bundle
}

// Begin issues the next fetch generation.
func (l *ResultLatch) Begin() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.issued++
	return l.issued
}

// Commit stores the bundle if gen is the latest issued generation.
// Reports whether the bundle was accepted.
func (l *ResultLatch) Commit(gen uint64, b *Bundle) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if gen != l.issued {
		return false
	}
	l.bundle = b
	return true
}

// Latest returns the most recently committed bundle, if any.
func (l *ResultLatch) Latest() (*Bundle, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.bundle == nil {
		return nil, false
	}
	return l.bundle, true
}
