package config

import (
	"context"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"

	"github.com/veridano/threat-sentinel/internal/types"
)

// Watcher observes the YAML config file and keeps the latest category
// source allow-lists available to the scheduler. Only the allow-lists
// are hot-reloaded; everything else requires a restart.
type Watcher struct {
	path string
	log  *logrus.Logger

	mu        sync.RWMutex
	overrides map[types.Category][]string
}

// NewWatcher creates a watcher seeded with the allow-lists from the
// initial config. path may be empty, in which case Run is a no-op.
func NewWatcher(cfg Config, log *logrus.Logger) *Watcher {
	return &Watcher{
		path:      cfg.ConfigFile,
		log:       log,
		overrides: cfg.Sources,
	}
}

// Overrides returns the current per-category source allow-lists.
func (w *Watcher) Overrides() map[types.Category][]string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.overrides
}

// Run watches the config file until the context is cancelled. Reload
// errors keep the previous allow-lists.
func (w *Watcher) Run(ctx context.Context) error {
	if w.path == "" {
		<-ctx.Done()
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watcher.Add(w.path); err != nil {
		return err
	}
	w.log.WithField("path", w.path).Info("Watching config file for source allow-list changes")

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			w.reload()
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.log.WithError(err).Warn("Config watcher error")
		}
	}
}

func (w *Watcher) reload() {
	cfg := Config{}
	if err := cfg.mergeFile(w.path); err != nil {
		w.log.WithError(err).Warn("Config reload failed, keeping previous allow-lists")
		return
	}
	for category := range cfg.Sources {
		if !knownCategory(category) {
			w.log.WithField("category", category).Warn("Config reload rejected: unknown category")
			return
		}
	}

	w.mu.Lock()
	w.overrides = cfg.Sources
	w.mu.Unlock()
	w.log.WithField("categories", len(cfg.Sources)).Info("Source allow-lists reloaded")
}
