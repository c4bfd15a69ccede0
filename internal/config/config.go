// Package config loads server configuration from FINDR_-prefixed environment
// variables, with an optional .env file for local development.
package config

import (
	"fmt"
	"strings"

	"github.com/kelseyhightower/envconfig"
)

const envPrefix = "findr"

// Config is the full server configuration.
type Config struct {
	Port     string `envconfig:"FINDR_PORT" default:"8080"`
	LogLevel string `envconfig:"FINDR_LOG_LEVEL" default:"info"`

	// DataDir holds the JSON files (or the SQLite database) and photos.
	DataDir string `envconfig:"FINDR_DATA_DIR" default:"data"`
	// Storage selects the persistence backend: "json" or "sqlite".
	Storage string `envconfig:"FINDR_STORAGE" default:"json"`

	// DeletePolicy is applied uniformly to location deletes:
	// "cascade" clears dependent references, "reject" refuses the delete.
	DeletePolicy string `envconfig:"FINDR_DELETE_POLICY" default:"cascade"`

	HistoryLimit int `envconfig:"FINDR_HISTORY_LIMIT" default:"10"`

	RateLimitPerMin int `envconfig:"FINDR_RATE_LIMIT_PER_MIN" default:"240"`
	RateLimitBurst  int `envconfig:"FINDR_RATE_LIMIT_BURST" default:"60"`

	Backup BackupConfig
}

// BackupConfig configures encrypted offsite backups. Backups stay disabled
// until bucket, credentials, and passphrase are all set.
type BackupConfig struct {
	Enabled       bool   `envconfig:"FINDR_BACKUP_ENABLED" default:"false"`
	ScheduleHour  int    `envconfig:"FINDR_BACKUP_HOUR" default:"3"`
	RetentionDays int    `envconfig:"FINDR_BACKUP_RETENTION_DAYS" default:"30"`
	Passphrase    string `envconfig:"FINDR_BACKUP_PASSPHRASE"`

	S3Endpoint  string `envconfig:"FINDR_S3_ENDPOINT"`
	S3Bucket    string `envconfig:"FINDR_S3_BUCKET"`
	S3Region    string `envconfig:"FINDR_S3_REGION" default:"auto"`
	S3AccessKey string `envconfig:"FINDR_S3_ACCESS_KEY"`
	S3SecretKey string `envconfig:"FINDR_S3_SECRET_KEY"`
}

// Load parses the environment into a Config and validates enum fields.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(envPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	switch strings.ToLower(cfg.Storage) {
	case "json", "sqlite":
		cfg.Storage = strings.ToLower(cfg.Storage)
	default:
		return nil, fmt.Errorf("FINDR_STORAGE must be json or sqlite, got %q", cfg.Storage)
	}

	switch strings.ToLower(cfg.DeletePolicy) {
	case "cascade", "reject":
		cfg.DeletePolicy = strings.ToLower(cfg.DeletePolicy)
	default:
		return nil, fmt.Errorf("FINDR_DELETE_POLICY must be cascade or reject, got %q", cfg.DeletePolicy)
	}

	if cfg.HistoryLimit < 1 {
		return nil, fmt.Errorf("FINDR_HISTORY_LIMIT must be at least 1, got %d", cfg.HistoryLimit)
	}
	if cfg.Backup.Enabled && cfg.Backup.Passphrase == "" {
		return nil, fmt.Errorf("FINDR_BACKUP_PASSPHRASE is required when backups are enabled")
	}
	return &cfg, nil
}
