// Package intel drives the multi-source query layer: a fixed registry
// of category-specific searches and a coordinator that fans them out
// against the intelligence platform each cycle.
package intel

import "github.com/veridano/threat-sentinel/internal/types"

// CategorySpec is the canned query for one monitoring category: the
// query template, the source allow-list, and the result bounds.
type CategorySpec struct {
	Category types.Category
	Query    string
	Sources  []string
	TopK     int
	MinScore float64
}

// DefaultSpecs returns the category registry in fixed scan order.
// TopK and MinScore apply to every category; source allow-lists may be
// overridden per category via config.
func DefaultSpecs(topK int, minScore float64, overrides map[types.Category][]string) []CategorySpec {
	specs := []CategorySpec{
		{
			Category: types.CategoryCriticalVulnerability,
			Query:    "critical vulnerability CVSS score 9.0",
			Sources:  []string{"NVD", "CISA", "US-CERT"},
		},
		{
			Category: types.CategoryEmergencyDirective,
			Query:    "emergency directive immediate action required",
			Sources:  []string{"CISA", "DHS"},
		},
		{
			Category: types.CategoryAPTActivity,
			Query:    "advanced persistent threat nation-state attribution campaign",
			Sources:  []string{"NSA", "FBI", "USCYBERCOM"},
		},
		{
			Category: types.CategoryZeroDay,
			Query:    "zero-day exploit active exploitation in the wild",
			Sources:  []string{"FBI", "CISA", "US-CERT"},
		},
		{
			Category: types.CategoryInfrastructureThreat,
			Query:    "critical infrastructure attack energy water transportation",
			Sources:  []string{"CISA", "DHS", "ICS-CERT"},
		},
	}
	for i := range specs {
		specs[i].TopK = topK
		specs[i].MinScore = minScore
		if override, ok := overrides[specs[i].Category]; ok && len(override) > 0 {
			specs[i].Sources = override
		}
	}
	return specs
}
