package monitor

import "github.com/prometheus/client_golang/prometheus"

// Prometheus metrics (registered once).
var (
	cyclesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sentinel_cycles_total",
			Help: "Monitoring cycles run, by outcome",
		},
		[]string{"outcome"},
	)
	findingsRetrieved = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sentinel_findings_retrieved_total",
			Help: "Raw findings retrieved from the intelligence platform",
		},
		[]string{"category"},
	)
	alertsGenerated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sentinel_alerts_generated_total",
			Help: "Alerts dispatched after classification and dedup",
		},
		[]string{"category", "severity"},
	)
	alertsSuppressed = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "sentinel_alerts_suppressed_total",
			Help: "Alerts suppressed by the dedup history",
		},
	)
	categoryFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sentinel_category_failures_total",
			Help: "Per-category query failures",
		},
		[]string{"category"},
	)
	dispatchFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "sentinel_dispatch_failures_total",
			Help: "Alert batches whose sink dispatch failed",
		},
	)
	historySize = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "sentinel_history_entries",
			Help: "Alert identifiers currently retained for dedup",
		},
	)
)

func init() {
	prometheus.MustRegister(cyclesTotal)
	prometheus.MustRegister(findingsRetrieved)
	prometheus.MustRegister(alertsGenerated)
	prometheus.MustRegister(alertsSuppressed)
	prometheus.MustRegister(categoryFailures)
	prometheus.MustRegister(dispatchFailures)
	prometheus.MustRegister(historySize)
}
