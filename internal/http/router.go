// Package http exposes the archive ingestion, search and evaluation API.
package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"voice-archive-search/internal/app"
	"voice-archive-search/internal/observability"
	"voice-archive-search/internal/observability/metrics"
)

// NewRouter constructs the HTTP router for the service.
func NewRouter(application *app.Application) http.Handler {
	r := chi.NewRouter()

	// Basic middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(observability.RequestInstrumentation(metrics.DefaultMetrics))

	// Health endpoints
	r.Get("/v1/liveness", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/v1/readiness", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	// API routes
	h := NewHandler(application)
	r.Route("/v1", func(r chi.Router) {
		r.Post("/archives", h.UploadArchive)
		r.Get("/search", h.Search)
		r.Post("/evaluate", h.Evaluate)
		r.Get("/sessions/{id}", h.GetSession)
	})

	return r
}
