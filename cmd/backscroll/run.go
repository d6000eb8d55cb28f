package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/flemzord/backscroll/internal/config"
	"github.com/flemzord/backscroll/internal/engine"
	"github.com/flemzord/backscroll/internal/gateway"
	"github.com/flemzord/backscroll/internal/maintenance"
	"github.com/flemzord/backscroll/internal/store"
	sqlitestore "github.com/flemzord/backscroll/internal/store/sqlite"
	"github.com/flemzord/backscroll/internal/telemetry"
)

// run assembles the service from a validated config and blocks until a
// shutdown signal arrives.
func run(cfg *config.Config) error {
	level, err := config.ParseLevel(cfg.Log.Level)
	if err != nil {
		return err
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))

	shutdownTracing, err := telemetry.SetupTracing(context.Background(), cfg.Tracing, version)
	if err != nil {
		return err
	}

	var (
		st  store.Store
		sq  *sqlitestore.Store
		mem *store.MemStore
	)
	switch cfg.Store.Backend {
	case "sqlite":
		sq, err = sqlitestore.Open(cfg.Store.SQLite, logger)
		if err != nil {
			return err
		}
		defer func() { _ = sq.Close() }()
		st = sq
	case "memory":
		mem = store.NewMemStore()
		st = mem
		logger.Warn("using in-memory store; the conversation log will not survive restarts")
	default:
		return fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}

	eng, err := engine.New(st, cfg.Engine, logger)
	if err != nil {
		return err
	}

	gw := gateway.New(cfg.Gateway, eng, st, telemetry.NewMetrics(), logger)
	if err := gw.Start(); err != nil {
		return err
	}

	var sched *maintenance.Scheduler
	if sq != nil {
		sched = maintenance.NewScheduler(logger)
		if cfg.Maintenance.CheckpointSchedule != "" {
			job := &maintenance.CheckpointJob{Store: sq, CronSchedule: cfg.Maintenance.CheckpointSchedule}
			if err := sched.RegisterJob(job); err != nil {
				return err
			}
		}
		if cfg.Maintenance.Retention.Enabled {
			job := &maintenance.RetentionJob{
				Store:        sq,
				MaxAge:       cfg.Maintenance.Retention.MaxAge,
				CronSchedule: cfg.Maintenance.Retention.Schedule,
				Logger:       logger,
			}
			if err := sched.RegisterJob(job); err != nil {
				return err
			}
		}
		if err := sched.Start(); err != nil {
			return err
		}
	}

	logger.Info("backscroll started",
		"version", version,
		"store", cfg.Store.Backend,
		"lookback_limit", eng.Params().LookbackLimit,
		"gap_threshold", eng.Params().GapThreshold.String(),
	)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if sched != nil {
		_ = sched.Stop(ctx)
	}
	if err := gw.Stop(ctx); err != nil {
		logger.Error("gateway shutdown failed", "error", err)
	}
	if err := shutdownTracing(ctx); err != nil {
		logger.Error("trace exporter shutdown failed", "error", err)
	}

	return nil
}
