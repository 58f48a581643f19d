package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/noahxzhu/med-reminder/internal/config"
	"github.com/noahxzhu/med-reminder/internal/pushover"
	"github.com/noahxzhu/med-reminder/internal/reminder"
	"github.com/noahxzhu/med-reminder/internal/settings"
	"github.com/noahxzhu/med-reminder/internal/storage"
	"github.com/noahxzhu/med-reminder/internal/web"
	"github.com/noahxzhu/med-reminder/internal/worker"
)

const configPath = "configs/config.yaml"

func main() {
	// Setup structured logger (JSON handler)
	level := new(slog.LevelVar)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	// Load Config
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}
	level.Set(cfg.Log.SlogLevel())

	if err := config.Watch(configPath, func(c *config.Config) {
		level.Set(c.Log.SlogLevel())
	}); err != nil {
		slog.Warn("Config hot reload disabled", "error", err)
	}

	// Init Storage
	backend, err := storage.Open(cfg.Storage.Driver, cfg.Storage.FilePath)
	if err != nil {
		slog.Error("Failed to open storage", "driver", cfg.Storage.Driver, "error", err)
		os.Exit(1)
	}
	defer backend.Close()

	// Init Worker
	var notifier worker.Notifier = worker.LogNotifier{}
	if cfg.Pushover.Enabled() {
		client := pushover.NewClient(cfg.Pushover.Token, cfg.Pushover.User)
		if cfg.Pushover.APIURL != "" {
			client.APIURL = cfg.Pushover.APIURL
		}
		notifier = client
	} else {
		slog.Info("Pushover not configured, notifications are logged only")
	}
	w := worker.NewWorker(notifier)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Start Worker
	go w.Start(ctx)

	// Init Reminders
	store := reminder.NewStore(backend, w, reminder.WithLogger(logger))
	store.Load(ctx)
	w.SetOnFire(func(t worker.Trigger) {
		slog.Debug("Trigger delivered", "handle", t.Handle, "title", t.Title, "scheduled", t.NextRun)
	})
	go store.Run(ctx, cfg.Reminders.RefreshInterval)

	// Init Web Server
	srv := web.NewServer(store, settings.NewStore(cfg.Storage.SettingsDir), w)
	httpServer := &http.Server{
		Addr:    cfg.Server.Port,
		Handler: srv,
	}

	// Start HTTP Server
	go func() {
		slog.Info("Starting server", "port", cfg.Server.Port, "url", "http://localhost"+cfg.Server.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server error", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("Shutting down...")
	cancel() // Stop worker and refresher

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}
	slog.Info("Server exited")
}
