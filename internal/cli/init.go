// Package cli provides common binary initialization utilities shared by
// cmd/ledgerbot and cmd/ledgerbot-worker.
package cli

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"ledgerbot/internal/config"
	"ledgerbot/internal/storage"
)

// SetupLogger initializes structured logging and sets the default logger.
func SetupLogger() *slog.Logger {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)
	return logger
}

// LoadEnvFile loads the .env file for local development. Errors are
// ignored as the file is optional in production.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadAndValidateConfig loads configuration or exits on validation failure.
func LoadAndValidateConfig(logger *slog.Logger) *config.Config {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}
	return cfg
}

// InitStore opens the ledger store or exits on failure.
func InitStore(logger *slog.Logger, dbPath string) *storage.Store {
	store, err := storage.Open(dbPath)
	if err != nil {
		logger.Error("Failed to open ledger store", "error", err, "path", dbPath)
		os.Exit(1)
	}
	return store
}

// SignalContext returns a context cancelled on SIGINT or SIGTERM.
func SignalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
}
