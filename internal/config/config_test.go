package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "backscroll.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

const minimalConfig = `
version: "1"
store:
  backend: sqlite
  sqlite:
    path: /tmp/test.db
engine:
  lookback_limit: 30
  gap_threshold: 90m
`

func TestLoadMinimal(t *testing.T) {
	cfg, err := Load(writeConfig(t, minimalConfig))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if err := Validate(cfg); err != nil {
		t.Fatalf("validate: %v", err)
	}

	if cfg.Engine.LookbackLimit != 30 {
		t.Errorf("lookback_limit = %d, want 30", cfg.Engine.LookbackLimit)
	}
	if cfg.Engine.GapThreshold != 90*time.Minute {
		t.Errorf("gap_threshold = %s, want 90m", cfg.Engine.GapThreshold)
	}
	// Defaults applied.
	if cfg.Log.Level != "info" {
		t.Errorf("log level = %q, want info", cfg.Log.Level)
	}
	if cfg.Maintenance.CheckpointSchedule == "" {
		t.Error("checkpoint schedule default missing")
	}
}

func TestLoadExpandsEnv(t *testing.T) {
	t.Setenv("BACKSCROLL_DB", "/data/conv.db")

	cfg, err := Load(writeConfig(t, `
version: "1"
store:
  backend: sqlite
  sqlite:
    path: ${BACKSCROLL_DB}
gateway:
  bind: "${BACKSCROLL_BIND:-127.0.0.1:9999}"
`))
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Store.SQLite.Path != "/data/conv.db" {
		t.Errorf("path = %q, want expanded env value", cfg.Store.SQLite.Path)
	}
	if cfg.Gateway.Bind != "127.0.0.1:9999" {
		t.Errorf("bind = %q, want fallback default", cfg.Gateway.Bind)
	}
}

func TestLoadUnresolvedVariable(t *testing.T) {
	_, err := Load(writeConfig(t, `
version: "1"
store:
  sqlite:
    path: ${DEFINITELY_NOT_SET_ANYWHERE}
`))
	if err == nil || !strings.Contains(err.Error(), "unresolved variable") {
		t.Errorf("err = %v, want unresolved variable error", err)
	}
}

func TestValidateErrors(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "missing version",
			mutate:  func(c *Config) { c.Version = "" },
			wantErr: "version field is required",
		},
		{
			name:    "unsupported version",
			mutate:  func(c *Config) { c.Version = "2" },
			wantErr: "unsupported version",
		},
		{
			name:    "unknown backend",
			mutate:  func(c *Config) { c.Store.Backend = "postgres" },
			wantErr: "unknown store backend",
		},
		{
			name:    "sqlite without path",
			mutate:  func(c *Config) { c.Store.SQLite.Path = "" },
			wantErr: "store.sqlite.path is required",
		},
		{
			name:    "bad bind address",
			mutate:  func(c *Config) { c.Gateway.Bind = "not-an-address:port:extra" },
			wantErr: "invalid gateway bind address",
		},
		{
			name: "retention without max_age",
			mutate: func(c *Config) {
				c.Maintenance.Retention.Enabled = true
				c.Maintenance.Retention.MaxAge = 0
			},
			wantErr: "max_age must be positive",
		},
		{
			name: "retention on memory backend",
			mutate: func(c *Config) {
				c.Store.Backend = "memory"
				c.Maintenance.Retention.Enabled = true
				c.Maintenance.Retention.MaxAge = time.Hour
			},
			wantErr: "requires the sqlite backend",
		},
		{
			name: "tracing without endpoint",
			mutate: func(c *Config) {
				c.Tracing.Enabled = true
				c.Tracing.Endpoint = ""
			},
			wantErr: "tracing.endpoint is required",
		},
		{
			name:    "unknown log level",
			mutate:  func(c *Config) { c.Log.Level = "verbose" },
			wantErr: "unknown log level",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg, err := Load(writeConfig(t, minimalConfig))
			if err != nil {
				t.Fatalf("load: %v", err)
			}
			tc.mutate(cfg)

			err = Validate(cfg)
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tc.wantErr) {
				t.Errorf("err = %v, want substring %q", err, tc.wantErr)
			}
		})
	}
}

func TestValidateMemoryBackend(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
version: "1"
store:
  backend: memory
`))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if err := Validate(cfg); err != nil {
		t.Errorf("memory backend rejected: %v", err)
	}
}
