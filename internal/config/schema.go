// Package config handles YAML configuration loading, environment variable
// expansion, and structural validation for backscroll.
package config

import (
	"time"

	"github.com/flemzord/backscroll/internal/engine"
	"github.com/flemzord/backscroll/internal/gateway"
	sqlitestore "github.com/flemzord/backscroll/internal/store/sqlite"
	"github.com/flemzord/backscroll/internal/telemetry"
)

// Config is the top-level configuration structure.
type Config struct {
	// Version is the config format version. Currently only "1" is supported.
	Version string `yaml:"version"`

	// Log configures structured logging.
	Log LogConfig `yaml:"log"`

	// Store selects and configures the conversation log backend.
	Store StoreConfig `yaml:"store"`

	// Engine holds the default retrieval parameters. Callers may still
	// override them per request.
	Engine engine.Params `yaml:"engine"`

	// Gateway configures the HTTP surface.
	Gateway gateway.Config `yaml:"gateway"`

	// Maintenance configures scheduled background jobs.
	Maintenance MaintenanceConfig `yaml:"maintenance"`

	// Tracing configures the optional OTLP trace exporter.
	Tracing telemetry.TracingConfig `yaml:"tracing"`
}

// LogConfig configures the slog handler.
type LogConfig struct {
	// Level is one of debug, info, warn, error. Defaults to info.
	Level string `yaml:"level"`
}

// StoreConfig selects the log backend.
type StoreConfig struct {
	// Backend is "sqlite" (default) or "memory". The memory backend
	// exists for tests and throwaway deployments; it loses data on exit.
	Backend string `yaml:"backend"`

	SQLite sqlitestore.Config `yaml:"sqlite"`
}

// MaintenanceConfig configures the cron scheduler and its jobs.
type MaintenanceConfig struct {
	// CheckpointSchedule is the cron expression for the WAL checkpoint
	// job. Empty disables it.
	CheckpointSchedule string `yaml:"checkpoint_schedule"`

	// Retention configures the optional age-based sweep. Disabled by
	// default: the engine treats the log as append-only and retention is
	// strictly an operational choice.
	Retention RetentionConfig `yaml:"retention"`
}

// RetentionConfig controls the age-based message sweep.
type RetentionConfig struct {
	Enabled  bool          `yaml:"enabled"`
	MaxAge   time.Duration `yaml:"max_age"`
	Schedule string        `yaml:"schedule"`
}

// defaults fills zero values with sensible defaults.
func (c *Config) defaults() {
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Store.Backend == "" {
		c.Store.Backend = "sqlite"
	}
	if c.Maintenance.CheckpointSchedule == "" {
		c.Maintenance.CheckpointSchedule = "0 * * * *"
	}
	if c.Maintenance.Retention.Schedule == "" {
		c.Maintenance.Retention.Schedule = "30 3 * * *"
	}
}
