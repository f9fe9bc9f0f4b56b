// Package server provides the sentinel's status HTTP API: health,
// session status, recently dispatched alerts, and prometheus metrics.
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/veridano/threat-sentinel/internal/dispatch"
	"github.com/veridano/threat-sentinel/internal/history"
	"github.com/veridano/threat-sentinel/internal/version"
	"github.com/veridano/threat-sentinel/pkg/monitor"
)

// Server is the status HTTP server.
type Server struct {
	addr       string
	session    *monitor.Session
	recorder   *dispatch.Recorder
	store      *history.Store
	log        *logrus.Logger
	httpServer *http.Server
}

// New creates the status server. recorder may be nil when the alert
// sink is not wrapped in one; /alerts then returns an empty list.
func New(addr string, session *monitor.Session, recorder *dispatch.Recorder, store *history.Store, log *logrus.Logger) *Server {
	mux := http.NewServeMux()
	s := &Server{addr: addr, session: session, recorder: recorder, store: store, log: log}
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/status", s.handleStatus)
	mux.HandleFunc("/alerts", s.handleAlerts)
	mux.Handle("/metrics", promhttp.Handler())

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

// ListenAndServe starts the HTTP server. It blocks until the server is closed.
func (s *Server) ListenAndServe() error {
	s.log.WithField("addr", s.addr).Info("Status server listening")
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"status":  "healthy",
		"version": version.Version,
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	snapshot := s.session.Snapshot()
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"session":         snapshot,
		"history_entries": s.store.Len(),
	})
}

func (s *Server) handleAlerts(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if s.recorder == nil {
		json.NewEncoder(w).Encode([]interface{}{})
		return
	}
	json.NewEncoder(w).Encode(s.recorder.Recent(100))
}
