package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"honeypot-lab/internal/domain/services"
	"honeypot-lab/internal/streaming"
	"honeypot-lab/pkg/logger"
)

// HealthCheck pings one optional dependency
type HealthCheck func(ctx context.Context) error

// Handlers holds all API handlers
type Handlers struct {
	Health   *HealthHandler
	Honeypot *HoneypotHandler

	// Hub streams verdicts to operators; nil disables the feed
	Hub *streaming.WebSocketHub
}

// Dependencies holds dependencies for handlers
type Dependencies struct {
	Service *services.HoneypotService
	Hub     *streaming.WebSocketHub
	Checks  map[string]HealthCheck
	Version string
	Logger  *logger.Logger
}

// NewHandlers creates all handlers
func NewHandlers(deps Dependencies) *Handlers {
	return &Handlers{
		Health:   NewHealthHandler(deps.Service, deps.Checks, deps.Version, deps.Logger),
		Honeypot: NewHoneypotHandler(deps.Service, deps.Logger),
		Hub:      deps.Hub,
	}
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
