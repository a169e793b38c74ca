package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"smsnotify/internal/config"
	"smsnotify/internal/domain/automation"
	"smsnotify/internal/domain/channel"
	"smsnotify/internal/domain/notification"
	"smsnotify/internal/domain/settings"
	"smsnotify/internal/infra/queue"
	"smsnotify/internal/infra/sms"
	"smsnotify/internal/infra/store"
	"smsnotify/internal/infra/template"

	"github.com/hibiken/asynq"
)

func main() {
	// Initialize structured logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("worker configuration loaded")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ==========================================
	// Dependency Injection (Manual Wiring)
	// ==========================================

	// Channel Registry
	channels := channel.NewRegistry()
	for _, driver := range sms.Drivers(cfg.SMS.Timeout()) {
		if err := channels.Register(driver.Name(), driver); err != nil {
			slog.Error("failed to register channel", "channel", driver.Name(), "error", err)
			os.Exit(1)
		}
	}

	// Template Registry
	templates, err := template.NewCatalogRegistry(cfg.Templates)
	if err != nil {
		slog.Error("failed to load templates", "error", err)
		os.Exit(1)
	}

	// Stores
	var settingsStore settings.Store = settings.NewMemoryStore()
	observers := []notification.Observer{notification.LogObserver{}}
	if cfg.Supabase.Enabled() {
		client, err := store.NewClient(cfg.Supabase.URL, cfg.Supabase.ServiceKey)
		if err != nil {
			slog.Error("failed to initialize supabase client", "error", err)
			os.Exit(1)
		}
		settingsStore = store.NewSupabaseSettingsStore(client)
		observers = append(observers, notification.NewRecorder(store.NewSupabaseDeliveryStore(client)))
		slog.Info("supabase stores initialized")
	}

	// Settings Binder
	binder := settings.NewBinder(channels, settingsStore)
	if err := binder.Boot(ctx, cfg.SMS.Settings); err != nil {
		slog.Error("failed to apply channel settings", "error", err)
		os.Exit(1)
	}

	// Dispatcher and Automation Worker
	dispatcher := notification.NewDispatcher(channels, templates, observers...)
	automationWorker := automation.NewWorker(automation.NewBridge(dispatcher))

	// ==========================================
	// Asynq Server (task processing)
	// ==========================================

	asynqServer := queue.NewServer(
		cfg.Redis.Address,
		cfg.Redis.Password,
		cfg.Redis.DB,
		cfg.Queue.Concurrency,
	)

	// Register task handlers
	mux := asynq.NewServeMux()
	mux.HandleFunc(automation.TaskTypeRun, automationWorker.HandleTask)
	mux.HandleFunc(settings.TaskTypeSettingsChanged, func(ctx context.Context, task *asynq.Task) error {
		payload, err := settings.ParseChangedPayload(task.Payload())
		if err != nil {
			return fmt.Errorf("%w: %w", err, asynq.SkipRetry)
		}
		slog.Info("settings changed, reloading", "changed_at", payload.ChangedAt)
		return binder.Reload(ctx)
	})

	// Start the asynq worker in a goroutine
	go func() {
		slog.Info("worker starting",
			"concurrency", cfg.Queue.Concurrency,
			"redis", cfg.Redis.Address,
		)
		if err := asynqServer.Run(mux); err != nil {
			slog.Error("worker failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// ==========================================
	// Settings Watcher
	// ==========================================

	watcher := settings.NewWatcher(binder, settingsStore, settings.WatcherConfig{
		Interval: time.Duration(cfg.Settings.PollIntervalSec) * time.Second,
	})
	go watcher.Run(ctx)

	// ==========================================
	// Graceful Shutdown
	// ==========================================

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down worker...")
	cancel() // Stop the watcher first
	asynqServer.Shutdown()
	slog.Info("worker exited gracefully")
}
