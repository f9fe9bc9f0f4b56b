package monitor

import (
	"sync"
	"time"
)

// State is the scheduler's lifecycle state.
type State int

const (
	StateIdle State = iota
	StateRunning
	StateStopping
)

// String returns the lower-case state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateStopping:
		return "stopping"
	default:
		return "unknown"
	}
}

// Session holds the per-monitor run state. One Session belongs to one
// Monitor; multiple independent monitors each carry their own.
type Session struct {
	mu         sync.RWMutex
	state      State
	cycles     uint64
	lastCheck  time.Time
	errorCount uint64
	interval   time.Duration
}

// Snapshot is a point-in-time copy of the session for the status API.
type Snapshot struct {
	State      string        `json:"state"`
	Cycles     uint64        `json:"cycles"`
	LastCheck  time.Time     `json:"last_check,omitempty"`
	ErrorCount uint64        `json:"error_count"`
	Interval   time.Duration `json:"interval"`
}

func newSession(interval time.Duration) *Session {
	return &Session{interval: interval}
}

func (s *Session) setState(state State) {
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
}

func (s *Session) cycleDone(ok bool, at time.Time) {
	s.mu.Lock()
	s.cycles++
	if ok {
		s.lastCheck = at
	} else {
		s.errorCount++
	}
	s.mu.Unlock()
}

// Snapshot returns a copy of the current session state.
func (s *Session) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{
		State:      s.state.String(),
		Cycles:     s.cycles,
		LastCheck:  s.lastCheck,
		ErrorCount: s.errorCount,
		Interval:   s.interval,
	}
}
