// Package cache holds the most recent validated point collection for a
// bounded freshness window, so re-renders and quick reloads do not hit the
// upstream source again.
package cache

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/patagoniaverde/firewatch/internal/domain"
)

// DefaultTTL is how long a fetched point collection is considered fresh.
const DefaultTTL = 5 * time.Minute

// Entry is one cached snapshot of validated points.
type Entry struct {
	Points    []domain.FirePoint
	FetchedAt time.Time
}

// Store is a single-entry TTL cache. The clock is constructor-injected so
// tests can drive expiry deterministically.
type Store struct {
	clock clockwork.Clock

	mu    sync.Mutex
	entry *Entry
}

// New creates an empty Store. A nil clock falls back to real time.
func New(clock clockwork.Clock) *Store {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Store{clock: clock}
}

// Get returns the current entry, if one has ever been set.
func (s *Store) Get() (Entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.entry == nil {
		return Entry{}, false
	}
	return *s.entry, true
}

// Set replaces the cached snapshot and stamps it with the current time.
func (s *Store) Set(points []domain.FirePoint) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entry = &Entry{Points: points, FetchedAt: s.clock.Now()}
}

// Valid reports whether an entry exists and is younger than ttl.
func (s *Store) Valid(ttl time.Duration) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.entry == nil {
		return false
	}
	return s.clock.Since(s.entry.FetchedAt) < ttl
}
