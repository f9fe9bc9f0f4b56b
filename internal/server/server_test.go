package server

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/veridano/threat-sentinel/internal/classify"
	"github.com/veridano/threat-sentinel/internal/dispatch"
	"github.com/veridano/threat-sentinel/internal/history"
	"github.com/veridano/threat-sentinel/internal/intel"
	"github.com/veridano/threat-sentinel/internal/types"
	"github.com/veridano/threat-sentinel/pkg/monitor"
	"github.com/veridano/threat-sentinel/pkg/veridano"
)

type noopSearcher struct{}

func (noopSearcher) Search(ctx context.Context, req veridano.SearchRequest) ([]types.Finding, error) {
	return nil, nil
}

func testServer(t *testing.T) (*Server, *dispatch.Recorder, *history.Store) {
	t.Helper()
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)

	store := history.New(time.Hour)
	recorder := dispatch.NewRecorder(dispatch.NewLogSink(log), 100)
	coordinator := intel.NewCoordinator(noopSearcher{}, intel.DefaultSpecs(5, 0.6, nil), log)
	mon := monitor.New(monitor.Config{Interval: time.Minute}, coordinator,
		classify.NewEngine(classify.Config{}), store, recorder, log)

	return New(":0", mon.Session(), recorder, store, log), recorder, store
}

func TestHandleHealth(t *testing.T) {
	s, _, _ := testServer(t)
	rec := httptest.NewRecorder()
	s.handleHealth(rec, httptest.NewRequest("GET", "/health", nil))

	if rec.Code != 200 {
		t.Fatalf("status = %d", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if body["status"] != "healthy" || body["version"] == "" {
		t.Errorf("body = %v", body)
	}
}

func TestHandleStatus(t *testing.T) {
	s, _, store := testServer(t)
	store.Record("CVE-1", "CVE-2")

	rec := httptest.NewRecorder()
	s.handleStatus(rec, httptest.NewRequest("GET", "/status", nil))

	var body struct {
		Session        monitor.Snapshot `json:"session"`
		HistoryEntries int              `json:"history_entries"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if body.Session.State != "idle" {
		t.Errorf("state = %q, want idle before Run", body.Session.State)
	}
	if body.HistoryEntries != 2 {
		t.Errorf("history_entries = %d, want 2", body.HistoryEntries)
	}
}

func TestHandleAlerts(t *testing.T) {
	s, recorder, _ := testServer(t)
	recorder.Dispatch(context.Background(), []types.Alert{
		{ID: "a", Severity: types.SeverityCritical},
	})

	rec := httptest.NewRecorder()
	s.handleAlerts(rec, httptest.NewRequest("GET", "/alerts", nil))

	var alerts []types.Alert
	if err := json.Unmarshal(rec.Body.Bytes(), &alerts); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if len(alerts) != 1 || alerts[0].ID != "a" {
		t.Errorf("alerts = %v", alerts)
	}
}

func TestHandleAlerts_NoRecorder(t *testing.T) {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	store := history.New(time.Hour)
	coordinator := intel.NewCoordinator(noopSearcher{}, intel.DefaultSpecs(5, 0.6, nil), log)
	mon := monitor.New(monitor.Config{Interval: time.Minute}, coordinator,
		classify.NewEngine(classify.Config{}), store, nil, log)
	s := New(":0", mon.Session(), nil, store, log)

	rec := httptest.NewRecorder()
	s.handleAlerts(rec, httptest.NewRequest("GET", "/alerts", nil))
	if rec.Body.String() == "" {
		t.Error("nil recorder should still return a JSON body")
	}
}
