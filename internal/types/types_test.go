package types

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestSeverityOrdering(t *testing.T) {
	if !(SeverityLow < SeverityMedium && SeverityMedium < SeverityHigh &&
		SeverityHigh < SeverityCritical && SeverityCritical < SeverityEmergency) {
		t.Error("severity ordering is not LOW < MEDIUM < HIGH < CRITICAL < EMERGENCY")
	}
}

func TestSeverityString(t *testing.T) {
	cases := map[Severity]string{
		SeverityLow:       "LOW",
		SeverityMedium:    "MEDIUM",
		SeverityHigh:      "HIGH",
		SeverityCritical:  "CRITICAL",
		SeverityEmergency: "EMERGENCY",
	}
	for sev, want := range cases {
		if got := sev.String(); got != want {
			t.Errorf("Severity(%d).String() = %q, want %q", sev, got, want)
		}
	}
}

func TestParseSeverity(t *testing.T) {
	s, err := ParseSeverity("emergency")
	if err != nil {
		t.Fatalf("ParseSeverity(emergency): %v", err)
	}
	if s != SeverityEmergency {
		t.Errorf("ParseSeverity(emergency) = %v", s)
	}
	if _, err := ParseSeverity("bogus"); err == nil {
		t.Error("ParseSeverity(bogus) should fail")
	}
}

func TestSeverityJSONRoundTrip(t *testing.T) {
	data, err := json.Marshal(SeverityCritical)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != `"CRITICAL"` {
		t.Errorf("marshal = %s, want \"CRITICAL\"", data)
	}
	var s Severity
	if err := json.Unmarshal([]byte(`"HIGH"`), &s); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if s != SeverityHigh {
		t.Errorf("unmarshal HIGH = %v", s)
	}
}

func TestSortAlerts_SeverityOrder(t *testing.T) {
	alerts := []Alert{
		{ID: "h", Severity: SeverityHigh},
		{ID: "e", Severity: SeverityEmergency},
		{ID: "l", Severity: SeverityLow},
		{ID: "c", Severity: SeverityCritical},
	}
	SortAlerts(alerts)
	want := []string{"e", "c", "h", "l"}
	for i, id := range want {
		if alerts[i].ID != id {
			t.Fatalf("sort order %v, want [e c h l]", ids(alerts))
		}
	}
}

func TestSortAlerts_ScoreBreaksTies(t *testing.T) {
	alerts := []Alert{
		{ID: "low", Severity: SeverityCritical, Score: 9.1},
		{ID: "high", Severity: SeverityCritical, Score: 9.8},
	}
	SortAlerts(alerts)
	if alerts[0].ID != "high" {
		t.Errorf("equal severity should sort by score descending, got %v", ids(alerts))
	}
}

func TestSortAlerts_StableOnEqual(t *testing.T) {
	alerts := []Alert{
		{ID: "first", Severity: SeverityHigh, Score: 8.0},
		{ID: "second", Severity: SeverityHigh, Score: 8.0},
	}
	SortAlerts(alerts)
	if alerts[0].ID != "first" || alerts[1].ID != "second" {
		t.Errorf("equal alerts should keep input order, got %v", ids(alerts))
	}
}

func TestCategories_FixedOrder(t *testing.T) {
	cats := Categories()
	if len(cats) != 5 {
		t.Fatalf("expected 5 categories, got %d", len(cats))
	}
	if cats[0] != CategoryCriticalVulnerability || cats[4] != CategoryInfrastructureThreat {
		t.Errorf("unexpected category order: %v", cats)
	}
}

func TestCategoryFailure_Unwrap(t *testing.T) {
	inner := errors.New("connection refused")
	f := &CategoryFailure{Category: CategoryZeroDay, Err: inner}
	if !errors.Is(f, inner) {
		t.Error("CategoryFailure should unwrap to the inner error")
	}
	if f.Error() == "" {
		t.Error("CategoryFailure.Error() should be non-empty")
	}
}

func ids(alerts []Alert) []string {
	out := make([]string, len(alerts))
	for i, a := range alerts {
		out[i] = a.ID
	}
	return out
}
