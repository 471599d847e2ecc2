// Package api provides the HTTP API layer: router, middleware stack
// and endpoint wiring.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"mcp-server/internal/actions"
	"mcp-server/internal/api/handlers"
	"mcp-server/internal/api/middleware"
	"mcp-server/internal/config"
	"mcp-server/internal/ratelimit"
	"mcp-server/internal/storage"
)

// Version is the service version reported by the health endpoints
const Version = "1.0.0"

// maxRequestBytes caps request bodies at 10 MB
const maxRequestBytes = 10 << 20

// Router is the assembled HTTP surface
type Router struct {
	mux     *chi.Mux
	config  *config.Config
	limiter ratelimit.Limiter
}

// NewRouter creates the router with the full middleware stack and all
// routes registered.
func NewRouter(cfg *config.Config, store *storage.Store, registry *actions.Registry, limiter ratelimit.Limiter) *Router {
	r := &Router{
		mux:     chi.NewRouter(),
		config:  cfg,
		limiter: limiter,
	}

	h := handlers.New(store, registry, Version)
	r.setupMiddleware()
	r.setupRoutes(h)
	return r
}

// Handler returns the HTTP handler
func (r *Router) Handler() http.Handler {
	return r.mux
}

func (r *Router) setupMiddleware() {
	// Recovery first so panics anywhere below become 500s
	r.mux.Use(chimiddleware.Recoverer)
	r.mux.Use(middleware.RequestLogging)

	cors := middleware.NewCORSMiddleware(r.config.CORS.AllowedOrigins)
	r.mux.Use(cors.Handler())

	r.mux.Use(middleware.APIKeyAuth(r.config.Auth.APIKey))
	r.mux.Use(middleware.RateLimit(r.limiter))

	r.mux.Use(chimiddleware.RequestSize(maxRequestBytes))
	r.mux.Use(chimiddleware.Heartbeat("/ping"))
}

func (r *Router) setupRoutes(h *handlers.Handler) {
	r.mux.Get("/", h.Health)
	r.mux.Get("/health", h.Health)

	r.mux.Route("/api/v1", func(v1 chi.Router) {
		v1.Get("/state", h.State)
		v1.Post("/query", h.Query)
		v1.Get("/logs", h.Logs)
		v1.Post("/reset", h.Reset)
	})
}
