package dispatch

import (
	"context"
	"fmt"
	"strings"

	"github.com/veridano/threat-sentinel/internal/types"
)

// RoutingSink splits a batch by severity across three inner sinks:
// EMERGENCY and CRITICAL go to the urgent channel, HIGH to the standard
// channel, everything else to the passive channel. Any nil channel
// drops its share of the batch. Each channel still receives a
// severity-sorted sub-batch.
type RoutingSink struct {
	Urgent   AlertSink
	Standard AlertSink
	Passive  AlertSink
}

// Dispatch routes the batch and aggregates per-channel failures; one
// channel's failure does not keep the others from being delivered.
func (s *RoutingSink) Dispatch(ctx context.Context, alerts []types.Alert) error {
	var urgent, standard, passive []types.Alert
	for _, a := range alerts {
		switch {
		case a.Severity >= types.SeverityCritical:
			urgent = append(urgent, a)
		case a.Severity == types.SeverityHigh:
			standard = append(standard, a)
		default:
			passive = append(passive, a)
		}
	}

	var errs []string
	deliver := func(name string, sink AlertSink, batch []types.Alert) {
		if sink == nil || len(batch) == 0 {
			return
		}
		if err := sink.Dispatch(ctx, batch); err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", name, err))
		}
	}
	deliver("urgent", s.Urgent, urgent)
	deliver("standard", s.Standard, standard)
	deliver("passive", s.Passive, passive)

	if len(errs) > 0 {
		return fmt.Errorf("routing sink: %s", strings.Join(errs, "; "))
	}
	return nil
}
