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

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/opbridge/opbridge/internal/adapter/chat"
	ophttp "github.com/opbridge/opbridge/internal/adapter/http"
	"github.com/opbridge/opbridge/internal/adapter/openproject"
	obotel "github.com/opbridge/opbridge/internal/adapter/otel"
	"github.com/opbridge/opbridge/internal/adapter/ws"
	"github.com/opbridge/opbridge/internal/config"
	"github.com/opbridge/opbridge/internal/logger"
	"github.com/opbridge/opbridge/internal/resilience"
	"github.com/opbridge/opbridge/internal/scheduler"
	"github.com/opbridge/opbridge/internal/service"
)

func main() {
	if err := run(); err != nil {
		slog.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	log, logCloser := logger.New(cfg.Logging)
	slog.SetDefault(log)
	defer logCloser.Close()

	slog.Info("config loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Logging.Level,
		"openproject", cfg.OpenProject.URL != "",
		"chat", cfg.Chat.WebhookURL != "",
		"verify_signatures", cfg.Webhook.VerifySignatures,
	)

	ctx := context.Background()

	// --- Telemetry ---
	otelShutdown, err := obotel.Init(ctx, cfg.Telemetry, cfg.Logging.Service)
	if err != nil {
		return fmt.Errorf("telemetry: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = otelShutdown(shutdownCtx)
	}()

	metrics, err := obotel.NewMetrics()
	if err != nil {
		return fmt.Errorf("metrics: %w", err)
	}

	// --- Tracker ---
	client := openproject.NewClient(cfg.OpenProject.URL, cfg.OpenProject.APIKey, cfg.OpenProject.Timeout)
	client.SetBreaker(resilience.NewBreaker(cfg.Breaker.MaxFailures, cfg.Breaker.Timeout))

	resolver, err := openproject.NewResolver(client,
		cfg.OpenProject.StatusID, cfg.OpenProject.StatusName,
		cfg.OpenProject.TypeID, cfg.OpenProject.TypeName,
	)
	if err != nil {
		return fmt.Errorf("resolver: %w", err)
	}
	client.SetResolver(resolver)

	// --- Notifiers ---
	general := chat.New("general", cfg.Chat.WebhookURL)
	summaryCh := chat.New("summary", cfg.Chat.SummaryWebhookURL())
	reminderCh := chat.New("reminder", cfg.Chat.ReminderWebhookURL())

	// --- Services ---
	hub := ws.NewHub()
	notifications := service.NewNotificationService(general, summaryCh, reminderCh, hub, metrics)
	vcs := service.NewVCSWebhookService(client, hub, metrics)
	pm := service.NewPMWebhookService(notifications, cfg.OpenProject.StatusThreshold, hub, metrics)
	summarySvc := service.NewSummaryService(client, resolver, notifications,
		cfg.OpenProject.URL, cfg.OpenProject.StatusThreshold, hub, metrics)
	reminders := service.NewReminderService(summarySvc, notifications)

	// --- Scheduler ---
	sched := scheduler.New(log)
	sched.Add("summary", scheduler.ParseTimes(cfg.Schedule.SummaryTimes), func(ctx context.Context) {
		summarySvc.RunDaily(ctx, "scheduled")
	})
	sched.Add("reminder", scheduler.ParseTimes(cfg.Schedule.ReminderTimes), func(ctx context.Context) {
		reminders.Run(ctx, "scheduled")
	})
	sched.Start(ctx)
	defer sched.Stop()

	// --- HTTP ---
	handlers := ophttp.NewHandlers(vcs, pm, summarySvc, reminders, client, *cfg)

	r := chi.NewRouter()
	r.Use(ophttp.Logger)
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(30 * time.Second))
	if cfg.Telemetry.Enabled {
		r.Use(obotel.HTTPMiddleware(cfg.Logging.Service))
	}

	ophttp.MountRoutes(r, handlers, hub.HandleWS, cfg.Webhook)

	addr := ":" + cfg.Server.Port

	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	// Graceful shutdown
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	go func() {
		slog.Info("starting server", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed", "error", err)
		}
	}()

	<-done
	slog.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return srv.Shutdown(shutdownCtx)
}
