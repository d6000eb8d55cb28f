package gateway

import (
	"sync/atomic"
	"time"
)

// Metrics tracks gateway-level counters using atomic operations for
// lock-free concurrency. These back the /status endpoint; prometheus
// collectors live in internal/telemetry.
type Metrics struct {
	appends      atomic.Int64
	retrievals   atomic.Int64
	errors       atomic.Int64
	sessionMsgs  atomic.Int64
	totalLatency atomic.Int64 // nanoseconds
}

// RecordAppend records a stored message.
func (m *Metrics) RecordAppend() {
	m.appends.Add(1)
}

// RecordRetrieval records a served context window.
func (m *Metrics) RecordRetrieval(sessionSize int, latency time.Duration) {
	m.retrievals.Add(1)
	m.sessionMsgs.Add(int64(sessionSize))
	m.totalLatency.Add(int64(latency))
}

// RecordError records a failed request.
func (m *Metrics) RecordError() {
	m.errors.Add(1)
}

// Snapshot returns a consistent point-in-time view of the counters.
func (m *Metrics) Snapshot() MetricsSnapshot {
	retrievals := m.retrievals.Load()
	snap := MetricsSnapshot{
		Appends:     m.appends.Load(),
		Retrievals:  retrievals,
		Errors:      m.errors.Load(),
		SessionMsgs: m.sessionMsgs.Load(),
	}
	if retrievals > 0 {
		snap.AvgLatency = time.Duration(m.totalLatency.Load() / retrievals)
	}
	return snap
}

// MetricsSnapshot is a serializable point-in-time metrics view.
type MetricsSnapshot struct {
	Appends     int64         `json:"appends"`
	Retrievals  int64         `json:"retrievals"`
	Errors      int64         `json:"errors"`
	SessionMsgs int64         `json:"session_messages"`
	AvgLatency  time.Duration `json:"avg_latency_ns"`
}
