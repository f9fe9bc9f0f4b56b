package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/veridano/threat-sentinel/internal/classify"
	"github.com/veridano/threat-sentinel/internal/config"
	"github.com/veridano/threat-sentinel/internal/dispatch"
	"github.com/veridano/threat-sentinel/internal/history"
	"github.com/veridano/threat-sentinel/internal/intel"
	"github.com/veridano/threat-sentinel/internal/server"
	"github.com/veridano/threat-sentinel/internal/version"
	"github.com/veridano/threat-sentinel/pkg/monitor"
	"github.com/veridano/threat-sentinel/pkg/veridano"
)

func main() {
	_ = godotenv.Load()

	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})
	if level, err := logrus.ParseLevel(config.GetEnv("LOG_LEVEL", "info")); err == nil {
		log.SetLevel(level)
	}

	log.WithFields(logrus.Fields{
		"version": version.Version,
	}).Info("Starting Veridano threat sentinel")

	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("Invalid configuration")
	}

	client := veridano.NewClient(veridano.Config{
		Endpoint: cfg.Veridano.Endpoint,
		APIKey:   cfg.Veridano.APIKey,
		Timeout:  cfg.Veridano.Timeout,
	}, log)

	watcher := config.NewWatcher(cfg, log)
	specs := func() []intel.CategorySpec {
		return intel.DefaultSpecs(cfg.TopK, cfg.MinScore, watcher.Overrides())
	}

	coordinator := intel.NewCoordinator(client, specs(), log)
	engine := classify.NewEngine(classify.Config{CriticalScore: cfg.CriticalScore})
	store := history.New(cfg.Retention)

	var sink dispatch.AlertSink = dispatch.NewLogSink(log)
	if cfg.Webhook.URL != "" {
		webhook := dispatch.NewWebhookSink(dispatch.WebhookConfig{
			URL:   cfg.Webhook.URL,
			Token: cfg.Webhook.Token,
		}, log)
		sink = &dispatch.RoutingSink{
			Urgent:   webhook,
			Standard: webhook,
			Passive:  dispatch.NewLogSink(log),
		}
	}
	recorder := dispatch.NewRecorder(sink, 1000)

	mon := monitor.New(monitor.Config{
		Interval:        cfg.Interval,
		ErrorBackoff:    cfg.ErrorBackoff,
		DispatchTimeout: cfg.DispatchTimeout,
		Specs:           specs,
	}, coordinator, engine, store, recorder, log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		if err := watcher.Run(ctx); err != nil {
			log.WithError(err).Warn("Config watcher stopped")
		}
	}()

	statusServer := server.New(cfg.HTTPAddr, mon.Session(), recorder, store, log)
	go func() {
		if err := statusServer.ListenAndServe(); err != nil {
			log.WithError(err).Warn("Status server stopped")
		}
	}()

	errCh := make(chan error, 1)
	go func() {
		errCh <- mon.Run(ctx)
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		log.WithField("signal", sig.String()).Info("Received shutdown signal")
		mon.Stop()
		if err := <-errCh; err != nil {
			log.WithError(err).Error("Monitor error during shutdown")
		}
	case err := <-errCh:
		if err != nil {
			log.WithError(err).Fatal("Monitor failed to start")
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := statusServer.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("Error shutting down status server")
	}

	log.Info("Sentinel shutdown complete")
}
