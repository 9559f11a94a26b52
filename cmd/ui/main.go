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

	"github.com/JonMunkholm/csv2json/internal/client"
	"github.com/JonMunkholm/csv2json/internal/config"
	"github.com/JonMunkholm/csv2json/internal/logging"
	"github.com/JonMunkholm/csv2json/internal/web"
)

func main() {
	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logging.Setup(cfg.LogLevel(), cfg.Logging.Format)

	slog.Info("configuration loaded",
		"addr", cfg.UI.Addr(),
		"api_timeout", cfg.UI.APITimeout,
		"max_file_size", cfg.Upload.MaxFileSize,
		"csrf_enabled", cfg.Security.CSRFEnabled,
	)
	slog.Debug("effective configuration", "config", cfg.String())

	apiClient, err := client.New(client.Config{
		BaseURL: cfg.UI.APIURL,
		Timeout: cfg.UI.APITimeout,
	})
	if err != nil {
		slog.Error("failed to create api client", "error", err)
		os.Exit(1)
	}

	server := web.NewServer(cfg, apiClient)

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
			slog.Error("shutdown error", "error", err)
		}
	}()

	if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
	<-done
	slog.Info("server stopped")
}
