package gateway

import (
	"net/http"
	"time"
)

// StatusResponse is the JSON response for GET /status.
type StatusResponse struct {
	Uptime   string          `json:"uptime"`
	Lookback int             `json:"lookback_limit"`
	Gap      string          `json:"gap_threshold"`
	Metrics  MetricsSnapshot `json:"metrics"`
}

// handleStatus reports uptime, the engine's default retrieval parameters,
// and the request counters.
func (g *Gateway) handleStatus() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		params := g.engine.Params()
		writeJSON(w, http.StatusOK, StatusResponse{
			Uptime:   time.Since(g.startedAt).Round(time.Second).String(),
			Lookback: params.LookbackLimit,
			Gap:      params.GapThreshold.String(),
			Metrics:  g.metrics.Snapshot(),
		})
	}
}
