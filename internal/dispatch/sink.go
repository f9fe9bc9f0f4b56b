// Package dispatch defines the alert sink contract and the built-in
// sink implementations: structured logging, webhook delivery, and
// severity-based routing across sinks.
package dispatch

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/veridano/threat-sentinel/internal/types"
)

// AlertSink receives one severity-sorted, non-empty alert batch per
// cycle that produced new alerts. Implementations must respect the
// context deadline so a slow channel cannot stall the scheduler;
// a returned error is logged by the caller, the batch is not requeued.
type AlertSink interface {
	Dispatch(ctx context.Context, alerts []types.Alert) error
}

// LogSink is the default sink: it writes each alert to the structured
// log at a level matching its severity.
type LogSink struct {
	log *logrus.Logger
}

// NewLogSink creates the default console/log sink.
func NewLogSink(log *logrus.Logger) *LogSink {
	return &LogSink{log: log}
}

// Dispatch logs every alert in the batch. It never fails.
func (s *LogSink) Dispatch(ctx context.Context, alerts []types.Alert) error {
	for _, a := range alerts {
		logAlert(s.log, a)
	}
	return nil
}

func logAlert(log *logrus.Logger, a types.Alert) {
	entry := log.WithFields(logrus.Fields{
		"alert_id":   a.ID,
		"category":   a.Category,
		"severity":   a.Severity.String(),
		"cvss_score": a.Score,
		"source":     a.Source,
		"published":  a.Published,
		"action":     a.Action,
	})
	switch a.Severity {
	case types.SeverityEmergency, types.SeverityCritical:
		entry.Error(a.Title)
	case types.SeverityHigh, types.SeverityMedium:
		entry.Warn(a.Title)
	default:
		entry.Info(a.Title)
	}
}
