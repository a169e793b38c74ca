package settings

import (
	"context"
	"log/slog"
	"time"
)

// WatcherConfig holds configuration for the settings watcher.
type WatcherConfig struct {
	// Interval is how often the store version is polled.
	Interval time.Duration
}

// Watcher polls the settings store and reloads the registry whenever the
// stored version changes. It catches edits made directly in the database,
// where no "settings changed" task is ever enqueued.
type Watcher struct {
	binder  *Binder
	store   Store
	config  WatcherConfig
	version string
}

// NewWatcher creates a new settings watcher.
func NewWatcher(binder *Binder, store Store, cfg WatcherConfig) *Watcher {
	if cfg.Interval <= 0 {
		cfg.Interval = 30 * time.Second
	}
	return &Watcher{binder: binder, store: store, config: cfg}
}

// Run starts the watcher loop. It blocks until the context is cancelled.
func (w *Watcher) Run(ctx context.Context) {
	slog.Info("settings watcher started", "interval", w.config.Interval)

	// Baseline so the first tick does not reload what boot already applied.
	if v, err := w.store.Version(ctx); err == nil {
		w.version = v
	}

	ticker := time.NewTicker(w.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("settings watcher stopped")
			return
		case <-ticker.C:
			w.poll(ctx)
		}
	}
}

// poll performs one cycle. It reports whether a reload happened.
func (w *Watcher) poll(ctx context.Context) bool {
	v, err := w.store.Version(ctx)
	if err != nil {
		slog.Error("settings watcher: failed to read version", "error", err)
		return false
	}
	if v == w.version {
		return false
	}

	if err := w.binder.Reload(ctx); err != nil {
		// Keep the old version so the next tick retries.
		slog.Error("settings watcher: reload failed", "version", v, "error", err)
		return false
	}

	slog.Info("settings watcher: reloaded", "previous_version", w.version, "version", v)
	w.version = v
	return true
}
