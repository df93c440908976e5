package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"loganalyser/internal/config"
	"loganalyser/internal/db"
	"loganalyser/internal/jobs"
	"loganalyser/internal/logging"
	"loganalyser/internal/metrics"
	"loganalyser/internal/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logging.Init(cfg.LogFormat, logging.ParseLevel(cfg.LogLevel))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize store and apply migrations
	store, err := db.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer store.Close()
	slog.Info("migrations completed successfully")

	var recorder *metrics.Recorder
	if cfg.MetricsEnabled {
		recorder = metrics.New(store)
	}

	if cfg.StoreCheckInterval > 0 {
		monitor := jobs.NewStoreMonitor(store, recorder, cfg.StoreCheckInterval)
		go monitor.Start(ctx)
	}

	srv := server.New(cfg)
	srv.RegisterRoutes(store, recorder)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case err := <-errCh:
		if err != nil {
			slog.Error("server error", "error", err)
			stop()
			store.Close()
			os.Exit(1)
		}
	case <-ctx.Done():
	}

	slog.Info("shutting down server")
	if err := srv.Shutdown(); err != nil {
		slog.Error("server forced to shutdown", "error", err)
	}
	slog.Info("server exited")
}
