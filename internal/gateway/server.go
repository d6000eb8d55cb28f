package gateway

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Router constructs the chi mux with all routes wired. Exported so tests
// can drive the gateway through httptest without binding a port.
func (g *Gateway) Router() http.Handler {
	r := chi.NewRouter()

	// Public — no auth required.
	r.Get("/health", g.handleHealth())
	r.Handle("/metrics", g.prom.Handler())

	r.Group(func(r chi.Router) {
		if g.config.Auth.IsConfigured() {
			r.Use(authMiddleware(g.config.Auth))
		}
		r.Get("/status", g.handleStatus())
		r.Route("/v1/conversations/{id}", func(r chi.Router) {
			r.Post("/messages", g.handleAppend())
			r.Get("/messages", g.handleRecent())
			r.Post("/context", g.handleContext())
		})
	})

	return r
}
