// Package types defines the shared data model for the monitoring
// pipeline: raw findings from the intelligence platform, the fixed
// monitoring categories, and the classified alerts that flow to sinks.
package types

import (
	"fmt"
	"sort"
	"time"
)

// Finding is one raw intelligence document returned by a source query.
// Findings are immutable once retrieved.
type Finding struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Body      string    `json:"content"`
	Source    string    `json:"source"`
	Score     float64   `json:"score"` // CVSS-like, 0-10; 0 when the source reports none
	Published time.Time `json:"published_date"`
}

// Category is a fixed monitoring concern with its own query template
// and classification rule.
type Category string

const (
	CategoryCriticalVulnerability Category = "critical_vulnerability"
	CategoryEmergencyDirective    Category = "emergency_directive"
	CategoryAPTActivity           Category = "apt_activity"
	CategoryZeroDay               Category = "zero_day"
	CategoryInfrastructureThreat  Category = "infrastructure_threat"
)

// Categories returns all monitoring categories in their fixed scan order.
func Categories() []Category {
	return []Category{
		CategoryCriticalVulnerability,
		CategoryEmergencyDirective,
		CategoryAPTActivity,
		CategoryZeroDay,
		CategoryInfrastructureThreat,
	}
}

// Alert is a classified, severity-ranked record derived from a Finding.
// The ID is copied from the Finding and doubles as the dedup key.
// Alerts are never mutated after creation.
type Alert struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Source    string    `json:"source"`
	Category  Category  `json:"category"`
	Severity  Severity  `json:"severity"`
	Score     float64   `json:"cvss_score"`
	Published time.Time `json:"published_date"`
	Summary   string    `json:"summary"`
	Action    string    `json:"recommended_action"`
	Timestamp time.Time `json:"timestamp"`
}

// SortAlerts orders a batch for dispatch: severity descending
// (EMERGENCY first), then numeric score descending. The sort is stable
// so equal alerts keep their category scan order.
func SortAlerts(alerts []Alert) {
	sort.SliceStable(alerts, func(i, j int) bool {
		if alerts[i].Severity != alerts[j].Severity {
			return alerts[i].Severity > alerts[j].Severity
		}
		return alerts[i].Score > alerts[j].Score
	})
}

// CategoryFailure records a category whose query failed during a cycle.
// The cycle continues without that category's findings.
type CategoryFailure struct {
	Category Category
	Err      error
}

func (f *CategoryFailure) Error() string {
	return fmt.Sprintf("category %s: %v", f.Category, f.Err)
}

func (f *CategoryFailure) Unwrap() error {
	return f.Err
}
