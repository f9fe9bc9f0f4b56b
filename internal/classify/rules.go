// Package classify converts raw findings into severity-ranked alerts
// using a fixed, data-driven rule table: one rule per category, each
// with a qualification predicate, a severity, a scoring function, and a
// recommended action.
package classify

import (
	"strings"
	"time"

	"github.com/veridano/threat-sentinel/internal/types"
)

// summaryLimit bounds the alert summary taken from the finding body.
const summaryLimit = 200

// Rule defines the classification rule for one category.
type Rule struct {
	Category  types.Category
	Severity  types.Severity
	Action    string
	Qualifies func(f types.Finding) bool
	Score     func(f types.Finding) float64
}

// Engine evaluates findings against the per-category rule table.
type Engine struct {
	rules map[types.Category]*Rule
	now   func() time.Time
}

// Config for the classification engine.
type Config struct {
	// CriticalScore is the minimum CVSS score for a finding in the
	// critical_vulnerability category to qualify.
	CriticalScore float64
}

// NewEngine creates a classification engine with the default rule set.
func NewEngine(cfg Config) *Engine {
	if cfg.CriticalScore == 0 {
		cfg.CriticalScore = 9.0
	}
	e := &Engine{
		rules: make(map[types.Category]*Rule),
		now:   time.Now,
	}
	for _, r := range defaultRules(cfg) {
		e.rules[r.Category] = r
	}
	return e
}

// Classify evaluates one finding under its category's rule. The second
// return is false when the finding does not qualify; non-qualifying
// findings are dropped silently, not errors.
func (e *Engine) Classify(f types.Finding, category types.Category) (types.Alert, bool) {
	rule, ok := e.rules[category]
	if !ok || !rule.Qualifies(f) {
		return types.Alert{}, false
	}
	return types.Alert{
		ID:        f.ID,
		Title:     f.Title,
		Source:    f.Source,
		Category:  category,
		Severity:  rule.Severity,
		Score:     rule.Score(f),
		Published: f.Published,
		Summary:   summarize(f.Body),
		Action:    rule.Action,
		Timestamp: e.now().UTC(),
	}, true
}

// Rules returns the loaded rules (read-only).
func (e *Engine) Rules() map[types.Category]*Rule {
	return e.rules
}

func defaultRules(cfg Config) []*Rule {
	return []*Rule{
		{
			Category: types.CategoryCriticalVulnerability,
			Severity: types.SeverityCritical,
			Action:   "IMMEDIATE patching required",
			// threshold is configurable; default 9.0 per NVD critical band
			Qualifies: func(f types.Finding) bool {
				return f.Score >= cfg.CriticalScore
			},
			Score: func(f types.Finding) float64 { return f.Score },
		},
		{
			Category: types.CategoryEmergencyDirective,
			Severity: types.SeverityEmergency,
			Action:   "COMPLY immediately - Federal mandate",
			Qualifies: func(f types.Finding) bool {
				return strings.Contains(strings.ToLower(f.Title), "emergency")
			},
			// Emergency directives always rank above any numeric CVSS alert.
			Score: fixedScore(10.0),
		},
		{
			Category:  types.CategoryAPTActivity,
			Severity:  types.SeverityHigh,
			Action:    "Review threat indicators and enhance monitoring",
			Qualifies: bodyContainsAny("apt", "nation-state", "attribution"),
			// Attribution intel has no numeric CVSS equivalent.
			Score: fixedScore(8.5),
		},
		{
			Category:  types.CategoryZeroDay,
			Severity:  types.SeverityCritical,
			Action:    "URGENT - Implement defensive measures immediately",
			Qualifies: bodyContainsAny("zero-day"),
			Score:     fixedScore(9.5),
		},
		{
			Category:  types.CategoryInfrastructureThreat,
			Severity:  types.SeverityHigh,
			Action:    "Coordinate with sector security teams",
			Qualifies: bodyContainsAny("energy", "water", "transportation", "manufacturing"),
			Score:     fixedScore(8.0),
		},
	}
}

func bodyContainsAny(keywords ...string) func(types.Finding) bool {
	return func(f types.Finding) bool {
		body := strings.ToLower(f.Body)
		for _, kw := range keywords {
			if strings.Contains(body, kw) {
				return true
			}
		}
		return false
	}
}

func fixedScore(score float64) func(types.Finding) float64 {
	return func(types.Finding) float64 { return score }
}

// summarize returns the first summaryLimit characters of the body with
// a truncation marker, or the body unchanged if it fits.
func summarize(body string) string {
	runes := []rune(body)
	if len(runes) <= summaryLimit {
		return body
	}
	return string(runes[:summaryLimit]) + "..."
}
