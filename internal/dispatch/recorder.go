package dispatch

import (
	"context"
	"sync"

	"github.com/veridano/threat-sentinel/internal/types"
)

// Recorder wraps another sink and keeps a bounded in-memory ring of the
// most recently dispatched alerts for the status API.
type Recorder struct {
	inner  AlertSink
	limit  int
	mu     sync.RWMutex
	recent []types.Alert
}

// NewRecorder wraps inner, retaining at most limit alerts.
func NewRecorder(inner AlertSink, limit int) *Recorder {
	if limit <= 0 {
		limit = 1000
	}
	return &Recorder{inner: inner, limit: limit}
}

// Dispatch records the batch, then forwards it. The batch is recorded
// even when the inner sink fails so operators can see what was lost.
func (r *Recorder) Dispatch(ctx context.Context, alerts []types.Alert) error {
	r.mu.Lock()
	r.recent = append(r.recent, alerts...)
	if excess := len(r.recent) - r.limit; excess > 0 {
		r.recent = append([]types.Alert(nil), r.recent[excess:]...)
	}
	r.mu.Unlock()

	return r.inner.Dispatch(ctx, alerts)
}

// Recent returns up to limit of the most recently dispatched alerts,
// newest last.
func (r *Recorder) Recent(limit int) []types.Alert {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n := len(r.recent)
	if limit <= 0 || limit > n {
		limit = n
	}
	out := make([]types.Alert, limit)
	copy(out, r.recent[n-limit:])
	return out
}
