// Package history tracks which alert identifiers have already been
// dispatched so the same finding is surfaced at most once while its
// history entry is unexpired.
package history

import (
	"sync"
	"time"
)

// DefaultRetention bounds how long a dispatched alert identifier is
// remembered.
const DefaultRetention = 7 * 24 * time.Hour

// Store is the process-local dedup store. Entries expire after the
// retention window and are purged lazily at the start of each cycle.
type Store struct {
	mu        sync.Mutex
	seen      map[string]time.Time
	retention time.Duration
	now       func() time.Time
}

// New creates a store with the given retention window. A non-positive
// retention falls back to DefaultRetention.
func New(retention time.Duration) *Store {
	if retention <= 0 {
		retention = DefaultRetention
	}
	return &Store{
		seen:      make(map[string]time.Time),
		retention: retention,
		now:       time.Now,
	}
}

// SetClock overrides the store's time source. Test hook.
func (s *Store) SetClock(now func() time.Time) {
	s.mu.Lock()
	s.now = now
	s.mu.Unlock()
}

// Seen reports whether id has an unexpired history entry.
func (s *Store) Seen(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	at, ok := s.seen[id]
	if !ok {
		return false
	}
	return s.now().Sub(at) < s.retention
}

// Record marks ids as dispatched at the current time.
func (s *Store) Record(ids ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	for _, id := range ids {
		s.seen[id] = now
	}
}

// PurgeExpired removes entries older than the retention window as of
// now. Calling it again with the same now is a no-op.
func (s *Store) PurgeExpired(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	purged := 0
	for id, at := range s.seen {
		if now.Sub(at) >= s.retention {
			delete(s.seen, id)
			purged++
		}
	}
	return purged
}

// Len returns the number of retained entries, expired or not.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.seen)
}
