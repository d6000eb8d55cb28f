package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
)

// Validate checks the structural validity of a Config. It verifies the
// version field, the store backend selection, and the settings of every
// enabled subsystem. Engine parameter validation happens in engine.New.
func Validate(cfg *Config) error {
	var errs []error

	if cfg.Version == "" {
		errs = append(errs, errors.New("config: version field is required"))
	} else if cfg.Version != "1" {
		errs = append(errs, fmt.Errorf("config: unsupported version %q (supported: \"1\")", cfg.Version))
	}

	if _, err := ParseLevel(cfg.Log.Level); err != nil {
		errs = append(errs, err)
	}

	switch cfg.Store.Backend {
	case "sqlite":
		if cfg.Store.SQLite.Path == "" {
			errs = append(errs, errors.New("config: store.sqlite.path is required for the sqlite backend"))
		}
	case "memory":
		// Nothing to configure.
	default:
		errs = append(errs, fmt.Errorf("config: unknown store backend %q (supported: sqlite, memory)", cfg.Store.Backend))
	}

	if cfg.Gateway.Bind != "" {
		if _, err := net.ResolveTCPAddr("tcp", cfg.Gateway.Bind); err != nil {
			errs = append(errs, fmt.Errorf("config: invalid gateway bind address %q", cfg.Gateway.Bind))
		}
	}

	if cfg.Maintenance.Retention.Enabled {
		if cfg.Maintenance.Retention.MaxAge <= 0 {
			errs = append(errs, errors.New("config: maintenance.retention.max_age must be positive when retention is enabled"))
		}
		if cfg.Store.Backend != "sqlite" {
			errs = append(errs, errors.New("config: maintenance.retention requires the sqlite backend"))
		}
	}

	if cfg.Tracing.Enabled && cfg.Tracing.Endpoint == "" {
		errs = append(errs, errors.New("config: tracing.endpoint is required when tracing is enabled"))
	}

	return errors.Join(errs...)
}

// ParseLevel maps a config level string to a slog.Level.
func ParseLevel(level string) (slog.Level, error) {
	switch level {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("config: unknown log level %q", level)
	}
}
