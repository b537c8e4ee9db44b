package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"honeypot-lab/internal/api/handlers"
	apimiddleware "honeypot-lab/internal/api/middleware"
	"honeypot-lab/internal/config"
	"honeypot-lab/internal/infrastructure/cache"
	"honeypot-lab/pkg/logger"
)

// defaultRequestTimeout applies when the server config leaves it unset
const defaultRequestTimeout = 30 * time.Second

// Router holds dependencies for the API router
type Router struct {
	config   config.Config
	handlers *handlers.Handlers
	cache    *cache.RedisCache
	logger   *logger.Logger
}

// NewRouter creates a new Router instance. c may be nil when Redis is disabled.
func NewRouter(cfg config.Config, h *handlers.Handlers, c *cache.RedisCache, log *logger.Logger) *Router {
	return &Router{
		config:   cfg,
		handlers: h,
		cache:    c,
		logger:   log.WithComponent("router"),
	}
}

// Setup sets up the Chi router with all routes and middleware
func (r *Router) Setup() http.Handler {
	router := chi.NewRouter()

	timeout := r.config.Server.RequestTimeout
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}

	// Core middleware
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(apimiddleware.Logger(r.logger))
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(timeout))

	// CORS
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   r.config.CORS.AllowedOrigins,
		AllowedMethods:   r.config.CORS.AllowedMethods,
		AllowedHeaders:   r.config.CORS.AllowedHeaders,
		AllowCredentials: r.config.CORS.AllowCredentials,
		MaxAge:           r.config.CORS.MaxAge,
	}))

	// Public routes
	router.Get("/health", r.handlers.Health.Check)
	router.Get("/ready", r.handlers.Health.Ready)

	// API v1 routes
	router.Route("/api/v1", func(api chi.Router) {
		if r.config.Auth.APIKey != "" {
			api.Use(apimiddleware.APIKeyAuth(r.config.Auth.APIKey))
		}

		// Per-key limits need the key in context, so this runs after auth
		if r.config.RateLimit.Enabled && r.cache != nil {
			api.Use(apimiddleware.RateLimiter(r.cache, r.config.RateLimit, r.logger))
		} else if r.config.RateLimit.Enabled {
			r.logger.Warn().Msg("rate limiting enabled without Redis, requests will not be limited")
		}

		api.Post("/sessions", r.handlers.Honeypot.Start)
		api.Post("/ingest", r.handlers.Honeypot.Ingest)

		api.Get("/sessions/{id}/conversation", r.handlers.Honeypot.Conversation)
		api.Get("/sessions/{id}/intel", r.handlers.Honeypot.Intel)

		if r.handlers.Hub != nil {
			api.Get("/verdicts/ws", r.handlers.Hub.ServeWebSocket)
		}
	})

	return router
}
