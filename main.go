package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"stylesync/internal/app"
	"stylesync/internal/config"
	"stylesync/internal/logging"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// --- Configuration ---
	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	slog.SetDefault(logging.New(os.Stdout, cfg.LogLevel, cfg.LogFormat))

	// --- Store, broker, services, routes ---
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	server, err := app.New(ctx, cfg)
	if err != nil {
		slog.Error("failed to start", "driver", cfg.DBDriver, "error", err)
		os.Exit(1)
	}

	// --- Start HTTP Server ---
	listenErr := make(chan error, 1)
	go func() {
		slog.Info("starting server", "addr", cfg.ListenAddr(), "driver", cfg.DBDriver, "auth_required", cfg.AuthRequired)
		listenErr <- server.Fiber.Listen(cfg.ListenAddr())
	}()

	select {
	case err := <-listenErr:
		slog.Error("server failed", "error", err)
	case <-ctx.Done():
		slog.Info("shutting down server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Fiber.ShutdownWithContext(shutdownCtx); err != nil {
		slog.Error("error during fiber shutdown", "error", err)
	}
	if err := server.Close(shutdownCtx); err != nil {
		slog.Error("error closing connections", "error", err)
	}
	slog.Info("server gracefully stopped")
}
