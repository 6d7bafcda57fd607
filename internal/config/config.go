package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Load reads ~/.recall/config.yaml and applies environment overrides.
func Load() (*LocalConfig, error) {
	cfg, err := LoadLocalConfig()
	if err != nil {
		return nil, err
	}
	ApplyEnv(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// ApplyEnv loads .env from the working directory, if present, and lets
// RECALL_* variables override the file configuration.
func ApplyEnv(cfg *LocalConfig) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("failed to load .env", "error", err)
	}

	cfg.Storage.Backend = getEnv("RECALL_STORAGE_BACKEND", cfg.Storage.Backend)
	cfg.Storage.Path = getEnv("RECALL_STORAGE_PATH", cfg.Storage.Path)
	cfg.Storage.DSN = getEnv("RECALL_STORAGE_DSN", cfg.Storage.DSN)
	cfg.Catalog.Path = getEnv("RECALL_CATALOG_PATH", cfg.Catalog.Path)
	cfg.Execution.URL = getEnv("RECALL_EXECUTION_URL", cfg.Execution.URL)
	cfg.Daemon.LogLevel = getEnv("RECALL_LOG_LEVEL", cfg.Daemon.LogLevel)
	cfg.Daemon.Port = getEnvInt("RECALL_PORT", cfg.Daemon.Port)
	cfg.Reminder.Enabled = getEnvBool("RECALL_REMINDER_ENABLED", cfg.Reminder.Enabled)

	if url := os.Getenv("RECALL_AMQP_URL"); url != "" {
		cfg.Events.AMQPURL = url
		cfg.Events.Enabled = true
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}
