package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"refinery/internal/config"
	"refinery/internal/middleware"
)

// NewRouter assembles the HTTP surface: a public health endpoint and status
// pages, and the versioned API behind rate limiting and key auth. mountUI
// registers the status page routes and may be nil.
func NewRouter(cfg *config.Config, h *Handler, mountUI func(chi.Router)) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORSAllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", cfg.APIKeyHeader},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))

	r.Get("/healthz", h.Health)

	r.Route("/v1", func(r chi.Router) {
		r.Use(middleware.RateLimiter(middleware.RateLimitConfig{
			RequestsPerSecond: cfg.RateLimitRPS,
			Burst:             cfg.RateLimitBurst,
		}))
		r.Use(middleware.APIKey(cfg.APIKeyHeader, cfg.APIKey))

		r.Post("/runs", h.TriggerRun)
		r.Get("/runs", h.ListRuns)
		r.Get("/runs/{runID}", h.GetRun)
		r.Get("/quarantine", h.ListQuarantine)
		r.Get("/quarantine/summary", h.QuarantineSummary)
	})

	if mountUI != nil {
		mountUI(r)
	}

	return r
}
