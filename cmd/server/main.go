package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"smsnotify/internal/config"
	"smsnotify/internal/domain/automation"
	"smsnotify/internal/domain/channel"
	"smsnotify/internal/domain/notification"
	"smsnotify/internal/domain/otp"
	"smsnotify/internal/domain/settings"
	"smsnotify/internal/infra/metrics"
	"smsnotify/internal/infra/otpstore"
	"smsnotify/internal/infra/queue"
	"smsnotify/internal/infra/ratelimit"
	"smsnotify/internal/infra/sms"
	"smsnotify/internal/infra/store"
	"smsnotify/internal/infra/template"
	"smsnotify/internal/middleware"
	"smsnotify/internal/router"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
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

	slog.Info("configuration loaded", "port", cfg.Server.Port, "mode", cfg.Server.Mode)

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
	slog.Info("template registry initialized", "templates", len(templates.Templates()))

	// Stores (Supabase when configured, in-memory otherwise)
	var (
		settingsStore settings.Store = settings.NewMemoryStore()
		deliveryLogs  notification.DeliveryLogStore
	)
	if cfg.Supabase.Enabled() {
		client, err := store.NewClient(cfg.Supabase.URL, cfg.Supabase.ServiceKey)
		if err != nil {
			slog.Error("failed to initialize supabase client", "error", err)
			os.Exit(1)
		}
		settingsStore = store.NewSupabaseSettingsStore(client)
		deliveryLogs = store.NewSupabaseDeliveryStore(client)
		slog.Info("supabase stores initialized")
	} else {
		slog.Warn("supabase not configured, settings are kept in memory and deliveries are not recorded")
	}

	// Settings Binder
	binder := settings.NewBinder(channels, settingsStore)
	if err := binder.Boot(ctx, cfg.SMS.Settings); err != nil {
		slog.Error("failed to apply channel settings", "error", err)
		os.Exit(1)
	}
	slog.Info("channel settings applied", "default_channel", channels.Snapshot().Default())

	// Metrics
	m := metrics.New(prometheus.NewRegistry())

	// Dispatcher
	observers := []notification.Observer{notification.LogObserver{}, m}
	if deliveryLogs != nil {
		observers = append(observers, notification.NewRecorder(deliveryLogs))
	}
	dispatcher := notification.NewDispatcher(channels, templates, observers...)

	// Redis (OTP challenges and issue limits)
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Address,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()

	challengeStore := otpstore.NewRedisStore(redisClient, time.Duration(cfg.OTP.RetentionSec)*time.Second)
	issueLimiter := ratelimit.NewRedisRecipientLimiter(redisClient, cfg.OTP.MaxIssuesPerHour, time.Hour)
	slog.Info("otp store initialized", "redis", cfg.Redis.Address, "max_issues_per_hour", cfg.OTP.MaxIssuesPerHour)

	// OTP Manager and Gate
	otpManager := otp.NewManager(otp.Config{
		CodeLength:  cfg.OTP.CodeLength,
		TTL:         time.Duration(cfg.OTP.TTLSec) * time.Second,
		MaxAttempts: cfg.OTP.MaxAttempts,
		TemplateID:  cfg.OTP.Template,
	}, challengeStore, dispatcher, otp.PhoneDirectory{}, issueLimiter, m)
	gate := otp.NewGate(otpManager, otp.NewPolicy(cfg.OTP.RequireAll, cfg.OTP.RequiredSubjects), nil)

	// Asynq Client (settings broadcasts and deferred automation runs)
	asynqClient := queue.NewClient(cfg.Redis.Address, cfg.Redis.Password, cfg.Redis.DB)
	defer asynqClient.Close()
	publisher := queue.NewPublisher(asynqClient, cfg.Queue.MaxRetry)

	// Handlers
	notificationHandler := notification.NewHandler(dispatcher, templates, deliveryLogs)
	settingsHandler := settings.NewHandler(binder, publisher)
	automationHandler := automation.NewHandler(automation.NewBridge(dispatcher), publisher)
	otpHandler := otp.NewHandler(otpManager, gate)

	// Router
	apiLimiter := middleware.NewRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)
	go apiLimiter.Cleanup(ctx, time.Minute, 10*time.Minute)

	r := router.New(cfg, apiLimiter, m,
		notificationHandler,
		settingsHandler,
		automationHandler,
		otpHandler,
	)

	// ==========================================
	// Settings Watcher
	// ==========================================

	watcher := settings.NewWatcher(binder, settingsStore, settings.WatcherConfig{
		Interval: time.Duration(cfg.Settings.PollIntervalSec) * time.Second,
	})
	go watcher.Run(ctx)

	// ==========================================
	// HTTP Server with Graceful Shutdown
	// ==========================================

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		slog.Info("server starting", "address", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server...")
	cancel() // Stop the watcher and limiter cleanup

	// Give outstanding requests 10 seconds to complete
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server exited gracefully")
}
