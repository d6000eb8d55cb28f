package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
)

// initCmd interactively writes a starter configuration file.
func initCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a configuration file interactively",
		RunE: func(cmd *cobra.Command, _ []string) error {
			out, _ := cmd.Flags().GetString("output")

			var (
				bind     = "127.0.0.1:8787"
				dbPath   = defaultDBPath()
				lookback = "25"
				gap      = "1h"
			)

			form := huh.NewForm(
				huh.NewGroup(
					huh.NewInput().
						Title("Gateway bind address").
						Value(&bind),
					huh.NewInput().
						Title("SQLite database path").
						Value(&dbPath),
					huh.NewInput().
						Title("Lookback limit (messages inspected per retrieval)").
						Value(&lookback).
						Validate(func(s string) error {
							n, err := strconv.Atoi(s)
							if err != nil || n <= 0 {
								return fmt.Errorf("must be a positive integer")
							}
							return nil
						}),
					huh.NewInput().
						Title("Gap threshold (session boundary, e.g. 1h, 30m)").
						Value(&gap).
						Validate(func(s string) error {
							d, err := time.ParseDuration(s)
							if err != nil || d <= 0 {
								return fmt.Errorf("must be a positive duration")
							}
							return nil
						}),
				),
			)
			if err := form.Run(); err != nil {
				return err
			}

			cfg := fmt.Sprintf(`version: "1"

log:
  level: info

store:
  backend: sqlite
  sqlite:
    path: %s

engine:
  lookback_limit: %s
  gap_threshold: %s

gateway:
  bind: %s

maintenance:
  checkpoint_schedule: "0 * * * *"
  retention:
    enabled: false
`, dbPath, lookback, gap, bind)

			if err := os.MkdirAll(filepath.Dir(out), 0o700); err != nil {
				return fmt.Errorf("create config directory: %w", err)
			}
			if err := os.WriteFile(out, []byte(cfg), 0o600); err != nil {
				return fmt.Errorf("write config: %w", err)
			}

			fmt.Printf("Configuration written to %s\n", out)
			return nil
		},
	}
	cmd.Flags().StringP("output", "o", defaultConfigPath(), "Where to write the configuration")
	return cmd
}

func defaultConfigPath() string {
	if xdg, ok := os.LookupEnv("XDG_CONFIG_HOME"); ok {
		return filepath.Join(xdg, "backscroll", "backscroll.yaml")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "backscroll", "backscroll.yaml")
}

func defaultDBPath() string {
	if xdg, ok := os.LookupEnv("XDG_DATA_HOME"); ok {
		return filepath.Join(xdg, "backscroll", "conversations.db")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", "backscroll", "conversations.db")
}
