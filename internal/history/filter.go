package history

import "github.com/veridano/threat-sentinel/internal/types"

// FilterNew drops alerts whose identifier already has an unexpired
// history entry, records every survivor, and returns the survivors in
// their original order. A duplicate identifier inside the same batch is
// kept only once.
func (s *Store) FilterNew(alerts []types.Alert) []types.Alert {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	fresh := make([]types.Alert, 0, len(alerts))
	for _, a := range alerts {
		if at, ok := s.seen[a.ID]; ok && now.Sub(at) < s.retention {
			continue
		}
		s.seen[a.ID] = now
		fresh = append(fresh, a)
	}
	return fresh
}
