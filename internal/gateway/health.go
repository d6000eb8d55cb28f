package gateway

import (
	"context"
	"net/http"
	"time"
)

// pinger is implemented by store backends that can verify connectivity.
type pinger interface {
	Ping(ctx context.Context) error
}

// HealthResponse is the JSON response for GET /health.
type HealthResponse struct {
	Status string `json:"status"` // "ok" or "degraded"
}

// handleHealth returns 200 when the store answers a ping (or does not
// support one), 503 otherwise.
func (g *Gateway) handleHealth() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := HealthResponse{Status: "ok"}

		if p, ok := g.store.(pinger); ok {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := p.Ping(ctx); err != nil {
				g.logger.Warn("health check: store ping failed", "error", err)
				resp.Status = "degraded"
			}
		}

		status := http.StatusOK
		if resp.Status != "ok" {
			status = http.StatusServiceUnavailable
		}
		writeJSON(w, status, resp)
	}
}
