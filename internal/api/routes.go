package api

import (
	"net/http"
	"time"

	"promptforge/config"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter creates and configures a Chi router with all routes
func NewRouter(h *Handler, cfg *config.Config) http.Handler {
	r := chi.NewRouter()

	// Middleware stack
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(time.Duration(cfg.HTTP.RequestTimeoutSeconds) * time.Second))
	r.Use(CORSMiddleware(cfg.HTTP.CORSAllowedOrigins))
	r.Use(MetricsMiddleware)

	// Metrics endpoint for Prometheus
	r.Handle("/metrics", promhttp.Handler())

	// API routes
	r.Route("/api", func(r chi.Router) {
		// Health check
		r.Get("/health", h.HandleHealth)

		// Auth
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", h.HandleRegister)
			r.Post("/login", h.HandleLogin)
			r.Post("/logout", h.HandleLogout)
		})

		// Process-wide default-model overrides; deliberately unauthenticated
		r.Post("/settings/{provider}/model", h.HandleSetDefaultModel)
		r.Get("/settings/{provider}/model", h.HandleGetDefaultModel)

		// Session-guarded routes
		r.Group(func(r chi.Router) {
			r.Use(h.RequireAuth)

			r.Post("/enhance", h.HandleEnhance)
			r.Get("/prompts", h.HandleGetPrompts)
			r.Post("/prompts/{id}/favorite", h.HandleToggleFavorite)

			r.Get("/settings", h.HandleGetAllSettings)
			r.Post("/settings/{provider}", h.HandleSetAPIKey)
			r.Get("/settings/{provider}", h.HandleGetAPIKey)
		})
	})

	return r
}
