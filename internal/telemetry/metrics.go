// Package telemetry wires the observability stack: prometheus collectors
// for the gateway and an optional OTLP trace exporter.
package telemetry

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the prometheus collectors for the engine's service
// surface. Each instance carries its own registry so concurrent test
// servers never trip duplicate-registration panics.
type Metrics struct {
	Appends      prometheus.Counter
	Retrievals   prometheus.Counter
	Errors       prometheus.Counter
	AnchorHits   prometheus.Counter
	AnchorMisses prometheus.Counter

	RetrievalSeconds prometheus.Histogram
	SessionSize      prometheus.Histogram

	registry *prometheus.Registry
}

// NewMetrics creates and registers the collectors on a fresh registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())

	m := &Metrics{
		Appends: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "backscroll_appends_total",
			Help: "Messages appended to the conversation log.",
		}),
		Retrievals: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "backscroll_retrievals_total",
			Help: "Context window retrievals served.",
		}),
		Errors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "backscroll_errors_total",
			Help: "Requests that failed with a server-side error.",
		}),
		AnchorHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "backscroll_anchor_hits_total",
			Help: "Retrievals whose reply anchor resolved.",
		}),
		AnchorMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "backscroll_anchor_misses_total",
			Help: "Retrievals whose reply anchor predated recorded history.",
		}),
		RetrievalSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "backscroll_retrieval_seconds",
			Help:    "Latency of context window retrievals.",
			Buckets: prometheus.DefBuckets,
		}),
		SessionSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "backscroll_session_size",
			Help:    "Messages per computed session window.",
			Buckets: []float64{0, 1, 2, 5, 10, 25, 50, 100},
		}),
		registry: reg,
	}

	reg.MustRegister(m.Appends, m.Retrievals, m.Errors,
		m.AnchorHits, m.AnchorMisses, m.RetrievalSeconds, m.SessionSize)

	return m
}

// Handler serves the registry in prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
