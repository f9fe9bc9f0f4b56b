package classify

import (
	"strings"
	"testing"
	"time"

	"github.com/veridano/threat-sentinel/internal/types"
)

func TestNewEngine(t *testing.T) {
	e := NewEngine(Config{})
	if e == nil {
		t.Fatal("NewEngine returned nil")
	}
	if len(e.Rules()) != 5 {
		t.Errorf("expected 5 rules, got %d", len(e.Rules()))
	}
}

func TestClassify_CriticalVulnerability(t *testing.T) {
	e := NewEngine(Config{CriticalScore: 9.0})
	f := types.Finding{
		ID:        "CVE-2024-38063",
		Title:     "Windows TCP/IP RCE",
		Body:      "Remote code execution in the Windows TCP/IP stack.",
		Source:    "NVD",
		Score:     9.8,
		Published: time.Date(2024, 8, 14, 0, 0, 0, 0, time.UTC),
	}
	alert, ok := e.Classify(f, types.CategoryCriticalVulnerability)
	if !ok {
		t.Fatal("finding with score 9.8 should qualify")
	}
	if alert.Severity != types.SeverityCritical {
		t.Errorf("severity = %v, want CRITICAL", alert.Severity)
	}
	if alert.Score != 9.8 {
		t.Errorf("score = %g, want 9.8", alert.Score)
	}
	if alert.Action != "IMMEDIATE patching required" {
		t.Errorf("action = %q", alert.Action)
	}
	if alert.ID != f.ID || alert.Source != "NVD" {
		t.Errorf("alert identity not copied from finding: %+v", alert)
	}
}

func TestClassify_CriticalVulnerability_ThresholdMonotonic(t *testing.T) {
	e := NewEngine(Config{CriticalScore: 9.0})
	for _, score := range []float64{9.0, 9.1, 9.5, 9.9, 10.0} {
		f := types.Finding{ID: "x", Score: score}
		alert, ok := e.Classify(f, types.CategoryCriticalVulnerability)
		if !ok {
			t.Fatalf("score %g should qualify", score)
		}
		if alert.Severity != types.SeverityCritical {
			t.Errorf("score %g: severity = %v, want CRITICAL", score, alert.Severity)
		}
	}
	if _, ok := e.Classify(types.Finding{ID: "y", Score: 8.9}, types.CategoryCriticalVulnerability); ok {
		t.Error("score 8.9 should not qualify")
	}
}

func TestClassify_EmergencyDirective(t *testing.T) {
	e := NewEngine(Config{})
	f := types.Finding{
		ID:     "X-1",
		Title:  "CISA Emergency Directive 24-02",
		Body:   "Federal agencies must act.",
		Source: "CISA",
	}
	alert, ok := e.Classify(f, types.CategoryEmergencyDirective)
	if !ok {
		t.Fatal("title containing 'Emergency' should qualify")
	}
	if alert.Severity != types.SeverityEmergency {
		t.Errorf("severity = %v, want EMERGENCY", alert.Severity)
	}
	if alert.Score != 10.0 {
		t.Errorf("score = %g, want forced 10.0", alert.Score)
	}
}

func TestClassify_EmergencyDirective_TitleOnly(t *testing.T) {
	e := NewEngine(Config{})
	f := types.Finding{ID: "X-2", Title: "Routine advisory", Body: "emergency mentioned in body only"}
	if _, ok := e.Classify(f, types.CategoryEmergencyDirective); ok {
		t.Error("emergency keyword in body should not qualify; rule matches the title")
	}
}

func TestClassify_APTActivity(t *testing.T) {
	e := NewEngine(Config{})
	cases := []string{
		"Campaign attributed to a known APT group.",
		"Nation-state actors observed targeting telecoms.",
		"Attribution analysis points to eastern Europe.",
	}
	for _, body := range cases {
		f := types.Finding{ID: "apt", Title: "Threat report", Body: body}
		alert, ok := e.Classify(f, types.CategoryAPTActivity)
		if !ok {
			t.Fatalf("body %q should qualify", body)
		}
		if alert.Severity != types.SeverityHigh || alert.Score != 8.5 {
			t.Errorf("body %q: severity=%v score=%g, want HIGH/8.5", body, alert.Severity, alert.Score)
		}
	}
	benign := types.Finding{ID: "b", Body: "General phishing statistics for Q3."}
	if _, ok := e.Classify(benign, types.CategoryAPTActivity); ok {
		t.Error("benign body should not qualify")
	}
}

func TestClassify_ZeroDay(t *testing.T) {
	e := NewEngine(Config{})
	f := types.Finding{ID: "zd", Title: "Exploit report", Body: "A zero-day is being exploited in the wild."}
	alert, ok := e.Classify(f, types.CategoryZeroDay)
	if !ok {
		t.Fatal("zero-day body should qualify")
	}
	if alert.Severity != types.SeverityCritical || alert.Score != 9.5 {
		t.Errorf("severity=%v score=%g, want CRITICAL/9.5", alert.Severity, alert.Score)
	}
	if alert.Action != "URGENT - Implement defensive measures immediately" {
		t.Errorf("action = %q", alert.Action)
	}
}

func TestClassify_InfrastructureThreat(t *testing.T) {
	e := NewEngine(Config{})
	for _, sector := range []string{"energy", "water", "transportation", "manufacturing"} {
		f := types.Finding{ID: sector, Body: "Attack targeting the " + sector + " sector."}
		alert, ok := e.Classify(f, types.CategoryInfrastructureThreat)
		if !ok {
			t.Fatalf("sector %q should qualify", sector)
		}
		if alert.Severity != types.SeverityHigh || alert.Score != 8.0 {
			t.Errorf("sector %q: severity=%v score=%g", sector, alert.Severity, alert.Score)
		}
	}
}

func TestClassify_CaseInsensitive(t *testing.T) {
	e := NewEngine(Config{})
	f := types.Finding{ID: "z", Body: "ZERO-DAY exploitation confirmed."}
	if _, ok := e.Classify(f, types.CategoryZeroDay); !ok {
		t.Error("keyword matching should be case-insensitive")
	}
}

func TestClassify_UnknownCategory(t *testing.T) {
	e := NewEngine(Config{})
	if _, ok := e.Classify(types.Finding{ID: "x", Score: 10}, types.Category("ransomware")); ok {
		t.Error("unknown category should produce no alert")
	}
}

func TestSummarize_Truncation(t *testing.T) {
	e := NewEngine(Config{})
	long := strings.Repeat("a", 500)
	f := types.Finding{ID: "t", Body: long + " zero-day"}
	alert, ok := e.Classify(f, types.CategoryZeroDay)
	if !ok {
		t.Fatal("should qualify")
	}
	if len([]rune(alert.Summary)) != summaryLimit+3 {
		t.Errorf("summary length = %d, want %d + ellipsis", len([]rune(alert.Summary)), summaryLimit)
	}
	if !strings.HasSuffix(alert.Summary, "...") {
		t.Errorf("truncated summary should end in ellipsis: %q", alert.Summary[len(alert.Summary)-10:])
	}
}

func TestSummarize_ShortBodyUnchanged(t *testing.T) {
	e := NewEngine(Config{})
	f := types.Finding{ID: "s", Body: "short zero-day note"}
	alert, ok := e.Classify(f, types.CategoryZeroDay)
	if !ok {
		t.Fatal("should qualify")
	}
	if alert.Summary != f.Body {
		t.Errorf("short body should pass through unchanged, got %q", alert.Summary)
	}
}
