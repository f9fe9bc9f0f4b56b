// Package monitor drives the continuous threat-monitoring loop: every
// interval it fans out the category queries, classifies the findings,
// drops anything already surfaced, and hands the sorted batch to the
// configured alert sink.
package monitor

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/veridano/threat-sentinel/internal/classify"
	"github.com/veridano/threat-sentinel/internal/dispatch"
	"github.com/veridano/threat-sentinel/internal/history"
	"github.com/veridano/threat-sentinel/internal/intel"
	"github.com/veridano/threat-sentinel/internal/types"
)

// Config for the monitoring scheduler.
type Config struct {
	// Interval between cycles. Must be positive; Run fails fast otherwise.
	Interval time.Duration
	// ErrorBackoff replaces Interval after a failed cycle, so a bad
	// cycle shortens the wait instead of halting monitoring. Default 60s.
	ErrorBackoff time.Duration
	// DispatchTimeout bounds one sink delivery. Default 30s.
	DispatchTimeout time.Duration
	// Specs, when set, is consulted at each cycle boundary so config
	// hot-reload can swap category source allow-lists between cycles.
	Specs func() []intel.CategorySpec
}

// Monitor owns one monitoring session and its pipeline stages.
type Monitor struct {
	cfg         Config
	coordinator *intel.Coordinator
	engine      *classify.Engine
	store       *history.Store
	sink        dispatch.AlertSink
	log         *logrus.Logger

	session *Session
	stopCh  chan struct{}
}

// New creates a Monitor. The sink defaults to the structured log sink
// when nil.
func New(cfg Config, coordinator *intel.Coordinator, engine *classify.Engine, store *history.Store, sink dispatch.AlertSink, log *logrus.Logger) *Monitor {
	if cfg.ErrorBackoff == 0 {
		cfg.ErrorBackoff = 60 * time.Second
	}
	if cfg.DispatchTimeout == 0 {
		cfg.DispatchTimeout = 30 * time.Second
	}
	if sink == nil {
		sink = dispatch.NewLogSink(log)
	}
	return &Monitor{
		cfg:         cfg,
		coordinator: coordinator,
		engine:      engine,
		store:       store,
		sink:        sink,
		log:         log,
		session:     newSession(cfg.Interval),
		stopCh:      make(chan struct{}),
	}
}

// Session returns the monitor's session for status queries.
func (m *Monitor) Session() *Session {
	return m.session
}

// Stop requests a stop. It is honored at the next cycle boundary; an
// in-flight cycle completes first. Safe to call more than once.
func (m *Monitor) Stop() {
	select {
	case <-m.stopCh:
	default:
		close(m.stopCh)
	}
}

// Run executes the monitoring loop until Stop is called or the context
// is cancelled. It returns an error only for a misconfigured interval.
func (m *Monitor) Run(ctx context.Context) error {
	if m.cfg.Interval <= 0 {
		return fmt.Errorf("monitoring interval must be positive, got %s", m.cfg.Interval)
	}

	m.session.setState(StateRunning)
	defer m.session.setState(StateIdle)

	m.log.WithField("interval", m.cfg.Interval.String()).Info("Threat monitoring started")

	for {
		delay := m.cfg.Interval
		if ok := m.RunCycle(ctx); !ok {
			delay = m.cfg.ErrorBackoff
			m.log.WithField("backoff", delay.String()).Warn("Cycle failed, retrying on shortened delay")
		}

		select {
		case <-m.stopCh:
			m.session.setState(StateStopping)
			m.log.Info("Threat monitoring stopped")
			return nil
		case <-ctx.Done():
			m.session.setState(StateStopping)
			m.log.Info("Threat monitoring cancelled")
			return nil
		case <-time.After(delay):
		}
	}
}

// RunCycle executes one full monitoring cycle: purge expired history,
// fan-out query, classify, dedup, dispatch. It reports false only when
// every category query failed, which triggers the shortened retry delay.
func (m *Monitor) RunCycle(ctx context.Context) bool {
	cycleID := uuid.NewString()
	log := m.log.WithField("cycle_id", cycleID)
	started := time.Now().UTC()

	if m.cfg.Specs != nil {
		m.coordinator.SetSpecs(m.cfg.Specs())
	}

	purged := m.store.PurgeExpired(started)
	if purged > 0 {
		log.WithField("purged", purged).Debug("Expired history entries purged")
	}

	tagged, failures := m.coordinator.Collect(ctx)
	for _, f := range failures {
		categoryFailures.WithLabelValues(string(f.Category)).Inc()
	}
	for _, tf := range tagged {
		findingsRetrieved.WithLabelValues(string(tf.Category)).Inc()
	}

	var alerts []types.Alert
	for _, tf := range tagged {
		if alert, ok := m.engine.Classify(tf.Finding, tf.Category); ok {
			alerts = append(alerts, alert)
		}
	}

	classified := len(alerts)
	alerts = m.store.FilterNew(alerts)
	if suppressed := classified - len(alerts); suppressed > 0 {
		alertsSuppressed.Add(float64(suppressed))
	}
	historySize.Set(float64(m.store.Len()))

	if len(alerts) > 0 {
		types.SortAlerts(alerts)
		m.dispatch(ctx, log, alerts)
	} else {
		log.Debug("No new threats detected")
	}

	// Partial failures never fail the cycle; only a cycle in which every
	// category query failed counts as unsuccessful and retries sooner.
	ok := len(failures) < len(m.coordinator.Specs()) || len(failures) == 0
	m.session.cycleDone(ok, started)
	if ok {
		cyclesTotal.WithLabelValues("ok").Inc()
	} else {
		cyclesTotal.WithLabelValues("error").Inc()
	}

	log.WithFields(logrus.Fields{
		"findings": len(tagged),
		"alerts":   len(alerts),
		"failures": len(failures),
		"duration": time.Since(started).String(),
	}).Info("Monitoring cycle complete")
	return ok
}

func (m *Monitor) dispatch(ctx context.Context, log *logrus.Entry, alerts []types.Alert) {
	dispatchCtx, cancel := context.WithTimeout(ctx, m.cfg.DispatchTimeout)
	defer cancel()

	if err := m.sink.Dispatch(dispatchCtx, alerts); err != nil {
		// At-most-once delivery: the batch is not requeued.
		dispatchFailures.Inc()
		log.WithError(err).Error("Alert dispatch failed")
		return
	}
	for _, a := range alerts {
		alertsGenerated.WithLabelValues(string(a.Category), a.Severity.String()).Inc()
	}
}
