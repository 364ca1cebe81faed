package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"ledgerbot/internal/cli"
	"ledgerbot/internal/events"
)

// ledgerbot-worker consumes the transaction event feed and appends one
// JSON line per recorded transaction to the audit journal.
func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger()
	cfg := cli.LoadAndValidateConfig(logger)

	logger.Info("Starting ledgerbot-worker")

	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the worker")
		os.Exit(1)
	}

	eventsClient, err := events.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize events client", "error", err)
		os.Exit(1)
	}
	defer eventsClient.Close()

	if err := os.MkdirAll(filepath.Dir(cfg.AuditLogPath), 0755); err != nil {
		logger.Error("Failed to create audit directory", "error", err, "path", cfg.AuditLogPath)
		os.Exit(1)
	}
	journal, err := os.OpenFile(cfg.AuditLogPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		logger.Error("Failed to open audit journal", "error", err, "path", cfg.AuditLogPath)
		os.Exit(1)
	}
	defer journal.Close()

	ctx, cancel := cli.SignalContext(context.Background())
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return eventsClient.ConsumeTransactionRecorded(ctx, func(msg *events.TransactionRecordedMessage) error {
			line, err := json.Marshal(msg)
			if err != nil {
				return fmt.Errorf("marshal audit record: %w", err)
			}
			if _, err := journal.Write(append(line, '\n')); err != nil {
				return fmt.Errorf("append audit record: %w", err)
			}
			logger.Info("Audit record written",
				"user_id", msg.UserID,
				"category", msg.Category,
				"account", msg.Account,
				"amount", msg.Amount)
			return nil
		})
	})

	logger.Info("Consuming transaction events", "queue", cfg.AMQPQueue, "journal", cfg.AuditLogPath)

	if err := g.Wait(); err != nil && err != context.Canceled {
		logger.Error("Worker stopped", "error", err)
		os.Exit(1)
	}
	logger.Info("Worker stopped gracefully")
}
