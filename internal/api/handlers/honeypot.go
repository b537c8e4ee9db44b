package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"honeypot-lab/internal/domain/models"
	"honeypot-lab/internal/domain/services"
	"honeypot-lab/pkg/logger"
)

// maxIngestBody caps the size of an inbound message payload
const maxIngestBody = 1 << 20

// HoneypotHandler exposes the decoy conversation endpoints
type HoneypotHandler struct {
	service *services.HoneypotService
	logger  *logger.Logger
}

// NewHoneypotHandler creates a new honeypot handler
func NewHoneypotHandler(svc *services.HoneypotService, log *logger.Logger) *HoneypotHandler {
	return &HoneypotHandler{
		service: svc,
		logger:  log.WithComponent("honeypot-handler"),
	}
}

// IngestRequest is the request body for POST /api/v1/ingest
type IngestRequest struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
}

// ConversationResponse is the export of one session's messages
type ConversationResponse struct {
	SessionID string           `json:"session_id"`
	Messages  []models.Message `json:"messages"`
	Count     int              `json:"count"`
}

// IntelResponse is the artifacts accumulated across a session
type IntelResponse struct {
	SessionID string                `json:"session_id"`
	Intel     models.ExtractedIntel `json:"intel"`
	Count     int                   `json:"count"`
}

// requestLogger tags the handler logger with the chi request ID
func (h *HoneypotHandler) requestLogger(r *http.Request) *logger.Logger {
	return h.logger.WithRequestID(middleware.GetReqID(r.Context()))
}

// Start handles POST /api/v1/sessions
func (h *HoneypotHandler) Start(w http.ResponseWriter, r *http.Request) {
	res, err := h.service.Start(r.Context())
	if err != nil {
		h.requestLogger(r).Error().Err(err).Msg("failed to start session")
		respondError(w, http.StatusInternalServerError, "failed to start session")
		return
	}
	respondJSON(w, http.StatusCreated, res)
}

// Ingest handles POST /api/v1/ingest
func (h *HoneypotHandler) Ingest(w http.ResponseWriter, r *http.Request) {
	var req IngestRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxIngestBody)).Decode(&req); err != nil {
		h.requestLogger(r).Debug().Err(err).Msg("invalid request body")
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	res, err := h.service.Ingest(r.Context(), req.SessionID, req.Message)
	if err != nil {
		if errors.Is(err, services.ErrSessionIDRequired) {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.requestLogger(r).Error().Err(err).Str("session_id", req.SessionID).Msg("failed to ingest message")
		respondError(w, http.StatusInternalServerError, "failed to ingest message")
		return
	}

	respondJSON(w, http.StatusOK, res)
}

// Conversation handles GET /api/v1/sessions/{id}/conversation
func (h *HoneypotHandler) Conversation(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	messages := h.service.History(id)

	respondJSON(w, http.StatusOK, ConversationResponse{
		SessionID: id,
		Messages:  messages,
		Count:     len(messages),
	})
}

// Intel handles GET /api/v1/sessions/{id}/intel
func (h *HoneypotHandler) Intel(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	intel, err := h.service.SessionIntel(r.Context(), id)
	if err != nil {
		h.requestLogger(r).Error().Err(err).Str("session_id", id).Msg("failed to read session intel")
		respondError(w, http.StatusInternalServerError, "failed to read session intel")
		return
	}

	respondJSON(w, http.StatusOK, IntelResponse{
		SessionID: id,
		Intel:     intel,
		Count:     intel.Count(),
	})
}
