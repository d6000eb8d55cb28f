// Package gateway exposes the context engine to collaborating processes
// over HTTP: message ingestion, context retrieval, health, and metrics.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/flemzord/backscroll/internal/engine"
	"github.com/flemzord/backscroll/internal/store"
	"github.com/flemzord/backscroll/internal/telemetry"
)

// Gateway is the HTTP surface over the engine. It owns the listener and
// the request counters; the engine and store are passed in explicitly.
type Gateway struct {
	config    Config
	logger    *slog.Logger
	engine    *engine.Engine
	store     store.Store
	prom      *telemetry.Metrics
	metrics   *Metrics
	server    *http.Server
	startedAt time.Time
}

// New creates a Gateway. prom may be nil when the caller does not expose
// prometheus metrics (tests).
func New(cfg Config, eng *engine.Engine, st store.Store, prom *telemetry.Metrics, logger *slog.Logger) *Gateway {
	cfg.Defaults()
	if logger == nil {
		logger = slog.Default()
	}
	if prom == nil {
		prom = telemetry.NewMetrics()
	}
	return &Gateway{
		config:  cfg,
		logger:  logger,
		engine:  eng,
		store:   st,
		prom:    prom,
		metrics: &Metrics{},
	}
}

// Start begins serving on the configured bind address. It returns once
// the listener is bound; serving continues in the background.
func (g *Gateway) Start() error {
	g.startedAt = time.Now()

	g.server = &http.Server{
		Addr:         g.config.Bind,
		Handler:      g.Router(),
		ReadTimeout:  g.config.ReadTimeout,
		WriteTimeout: g.config.WriteTimeout,
	}

	var lc net.ListenConfig
	ln, err := lc.Listen(context.Background(), "tcp", g.config.Bind)
	if err != nil {
		return fmt.Errorf("gateway: listen on %s: %w", g.config.Bind, err)
	}

	go func() {
		g.logger.Info("gateway listening", "addr", g.config.Bind)
		if err := g.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			g.logger.Error("gateway serve error", "error", err)
		}
	}()

	return nil
}

// Stop shuts the server down gracefully within the configured timeout.
func (g *Gateway) Stop(ctx context.Context) error {
	if g.server == nil {
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, g.config.ShutdownTimeout)
	defer cancel()

	g.logger.Info("gateway shutting down")
	return g.server.Shutdown(shutdownCtx)
}
