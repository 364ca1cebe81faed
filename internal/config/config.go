package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
)

type Config struct {
	// Database
	SQLiteDBPath string

	// Administration. Zero disables the reset command.
	AdminUserID int64

	// AMQP event feed. An empty URL disables publishing.
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Worker
	AuditLogPath string
}

func Load() *Config {
	return &Config{
		SQLiteDBPath: getEnv("LEDGER_DB_PATH", "./data/ledger.db"),
		AdminUserID:  getEnvInt64("LEDGER_ADMIN_ID", 0),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "ledgerbot"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "transaction_events"),

		AuditLogPath: getEnv("AUDIT_LOG_PATH", "./data/audit.jsonl"),
	}
}

// Validate checks the configuration and reports every problem at once.
func (c *Config) Validate() error {
	var errors []string

	if c.SQLiteDBPath == "" {
		errors = append(errors, "SQLite database path cannot be empty")
	}

	if c.AdminUserID < 0 {
		errors = append(errors, fmt.Sprintf("invalid admin user id %d: must not be negative", c.AdminUserID))
	}

	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}

		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errors = append(errors, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.ParseInt(value, 10, 64); err == nil {
			return i
		}
	}
	return defaultValue
}
