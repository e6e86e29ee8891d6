package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

// NewRouter wires the public routes. metricsHandler is mounted on /metrics when non-nil.
// No request timeout middleware: it would turn slow webhook processing into a 504.
func NewRouter(h *WebhookHandler, metricsHandler http.Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(PrometheusMetricsMiddleware)

	h.RegisterRoutes(r)
	if metricsHandler != nil {
		r.Handle("/metrics", metricsHandler)
	}
	return r
}
