package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// LocalConfig holds configuration for the local daemon
type LocalConfig struct {
	Daemon    DaemonConfig    `yaml:"daemon"`
	Storage   StorageConfig   `yaml:"storage"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
	Catalog   CatalogConfig   `yaml:"catalog"`
	Execution ExecutionConfig `yaml:"execution"`
	Events    EventsConfig    `yaml:"events"`
	Reminder  ReminderConfig  `yaml:"reminder"`
}

// DaemonConfig holds daemon server settings
type DaemonConfig struct {
	Port     int    `yaml:"port"`
	Bind     string `yaml:"bind"`
	LogLevel string `yaml:"log_level"`
}

// Storage backends
const (
	BackendLocal    = "local"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
	BackendMemory   = "memory"
)

// StorageConfig selects where the progress document lives.
type StorageConfig struct {
	Backend string `yaml:"backend"`
	// Path is the data directory for local and the database file for sqlite.
	Path string `yaml:"path,omitempty"`
	// DSN is the connection URL for postgres and redis. Loaded from
	// secrets.yaml when not set here.
	DSN string `yaml:"dsn,omitempty"`
	Key string `yaml:"key"`
}

// SchedulerConfig tunes the spaced-repetition interval ladder.
type SchedulerConfig struct {
	Ladder          []int `yaml:"ladder"`
	MaxIntervalDays int   `yaml:"max_interval_days"`
}

// CatalogConfig points at the content catalog.
type CatalogConfig struct {
	Path string `yaml:"path"`
}

// ExecutionConfig holds code execution service settings
type ExecutionConfig struct {
	URL            string `yaml:"url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
	Retry          int    `yaml:"retry"`
	MaxConcurrent  int    `yaml:"max_concurrent"`
	RatePerSecond  int    `yaml:"rate_per_second"`
}

// EventsConfig holds RabbitMQ event publishing settings
type EventsConfig struct {
	Enabled bool   `yaml:"enabled"`
	AMQPURL string `yaml:"amqp_url,omitempty"`
	Queue   string `yaml:"queue"`
}

// ReminderConfig holds the due-review reminder schedule
type ReminderConfig struct {
	Enabled      bool `yaml:"enabled"`
	EveryMinutes int  `yaml:"every_minutes"`
	StartHour    int  `yaml:"start_hour"`
	EndHour      int  `yaml:"end_hour"`
}

// SecretsConfig holds connection strings loaded from secrets.yaml
type SecretsConfig struct {
	StorageDSN string `yaml:"storage_dsn,omitempty"`
	AMQPURL    string `yaml:"amqp_url,omitempty"`
}

// RecallDir returns the path to ~/.recall
func RecallDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home dir: %w", err)
	}
	return filepath.Join(home, ".recall"), nil
}

// EnsureRecallDir creates ~/.recall and subdirectories if they don't exist
func EnsureRecallDir() (string, error) {
	dir, err := RecallDir()
	if err != nil {
		return "", err
	}

	subdirs := []string{
		"",
		"logs",
		"data",
		"catalog",
	}

	for _, subdir := range subdirs {
		path := filepath.Join(dir, subdir)
		if err := os.MkdirAll(path, 0755); err != nil {
			return "", fmt.Errorf("create dir %s: %w", path, err)
		}
	}

	return dir, nil
}

// DefaultLocalConfig returns sensible defaults for local mode
func DefaultLocalConfig() *LocalConfig {
	return &LocalConfig{
		Daemon: DaemonConfig{
			Port:     7532,
			Bind:     "127.0.0.1",
			LogLevel: "info",
		},
		Storage: StorageConfig{
			Backend: BackendLocal,
			Key:     "user_progress",
		},
		Scheduler: SchedulerConfig{
			Ladder: []int{1, 3, 7, 14, 30, 60},
		},
		Execution: ExecutionConfig{
			TimeoutSeconds: 30,
			Retry:          3,
			MaxConcurrent:  4,
			RatePerSecond:  5,
		},
		Events: EventsConfig{
			Queue: "recall.events",
		},
		Reminder: ReminderConfig{
			Enabled:      true,
			EveryMinutes: 60,
			StartHour:    8,
			EndHour:      22,
		},
	}
}

// Validate checks values that cannot be corrected by defaults.
func (c *LocalConfig) Validate() error {
	var errs []error
	if c.Daemon.Port <= 0 || c.Daemon.Port > 65535 {
		errs = append(errs, fmt.Errorf("daemon.port %d out of range", c.Daemon.Port))
	}
	switch c.Storage.Backend {
	case BackendLocal, BackendSQLite, BackendMemory:
	case BackendPostgres, BackendRedis:
		if c.Storage.DSN == "" {
			errs = append(errs, fmt.Errorf("storage.dsn is required for backend %s", c.Storage.Backend))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown storage.backend %q", c.Storage.Backend))
	}
	if c.Storage.Key == "" {
		errs = append(errs, errors.New("storage.key must not be empty"))
	}
	if c.Events.Enabled && c.Events.AMQPURL == "" {
		errs = append(errs, errors.New("events.amqp_url is required when events are enabled"))
	}
	if c.Reminder.Enabled && c.Reminder.EveryMinutes <= 0 {
		errs = append(errs, errors.New("reminder.every_minutes must be positive"))
	}
	return errors.Join(errs...)
}

// LoadLocalConfig loads configuration from ~/.recall/config.yaml
func LoadLocalConfig() (*LocalConfig, error) {
	dir, err := RecallDir()
	if err != nil {
		return nil, err
	}
	return loadFrom(dir)
}

func loadFrom(dir string) (*LocalConfig, error) {
	cfg := DefaultLocalConfig()
	configPath := filepath.Join(dir, "config.yaml")

	data, err := os.ReadFile(configPath)
	switch {
	case errors.Is(err, os.ErrNotExist):
		// defaults
	case err != nil:
		return nil, fmt.Errorf("read config: %w", err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := loadSecrets(dir, cfg); err != nil {
		return nil, fmt.Errorf("load secrets: %w", err)
	}

	return cfg, nil
}

// loadSecrets fills connection strings from secrets.yaml where the
// config leaves them empty.
func loadSecrets(dir string, cfg *LocalConfig) error {
	secretsPath := filepath.Join(dir, "secrets.yaml")

	data, err := os.ReadFile(secretsPath)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read secrets: %w", err)
	}

	var secrets SecretsConfig
	if err := yaml.Unmarshal(data, &secrets); err != nil {
		return fmt.Errorf("parse secrets: %w", err)
	}

	if cfg.Storage.DSN == "" {
		cfg.Storage.DSN = secrets.StorageDSN
	}
	if cfg.Events.AMQPURL == "" {
		cfg.Events.AMQPURL = secrets.AMQPURL
	}

	return nil
}

// SaveLocalConfig saves configuration to ~/.recall/config.yaml
func SaveLocalConfig(cfg *LocalConfig) error {
	dir, err := EnsureRecallDir()
	if err != nil {
		return err
	}
	return saveTo(dir, cfg)
}

func saveTo(dir string, cfg *LocalConfig) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), data, 0644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}

	return nil
}

// SaveSecrets saves connection strings to ~/.recall/secrets.yaml
func SaveSecrets(secrets SecretsConfig) error {
	dir, err := EnsureRecallDir()
	if err != nil {
		return err
	}

	data, err := yaml.Marshal(secrets)
	if err != nil {
		return fmt.Errorf("marshal secrets: %w", err)
	}

	// owner read/write only
	if err := os.WriteFile(filepath.Join(dir, "secrets.yaml"), data, 0600); err != nil {
		return fmt.Errorf("write secrets: %w", err)
	}

	return nil
}
