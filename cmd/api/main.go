package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/JonMunkholm/csv2json/internal/api"
	"github.com/JonMunkholm/csv2json/internal/config"
	"github.com/JonMunkholm/csv2json/internal/logging"
)

func main() {
	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	// Load and validate configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Setup structured logging based on config
	logging.Setup(cfg.LogLevel(), cfg.Logging.Format)

	slog.Info("configuration loaded",
		"addr", cfg.API.Addr(),
		"max_concurrent", cfg.API.MaxConcurrent,
		"max_file_size", cfg.Upload.MaxFileSize,
		"metrics_enabled", cfg.API.MetricsEnabled,
	)
	slog.Debug("effective configuration", "config", cfg.String())

	server := api.NewServer(cfg)

	// Graceful shutdown: stop accepting requests, then wait for in-flight
	// conversions to finish
	done := make(chan struct{})
	go func() {
		defer close(done)

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Warn("shutdown did not complete cleanly", "error", err)
		} else {
			slog.Info("all conversions completed")
		}
	}()

	if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
	<-done
	slog.Info("server stopped")
}
