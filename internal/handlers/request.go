package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"dogwalk-backend/internal/middleware"
	"dogwalk-backend/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// RequestHandler handles walk request lifecycle endpoints
type RequestHandler struct {
	walkService *services.WalkService
	authService *services.AuthService
}

// NewRequestHandler creates a new walk request handler
func NewRequestHandler(walkService *services.WalkService, authService *services.AuthService) *RequestHandler {
	return &RequestHandler{walkService: walkService, authService: authService}
}

// CreateRequestBody represents the request body for posting a walk request
type CreateRequestBody struct {
	DogID       string    `json:"dog_id"`
	ScheduledAt time.Time `json:"scheduled_at"`
	Duration    int       `json:"duration"`
	Reward      int       `json:"reward"`
	Region      string    `json:"region"`
}

// CreateRequest handles POST /api/v1/requests
func (h *RequestHandler) CreateRequest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	var req CreateRequestBody
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	walkReq, err := h.walkService.CreateRequest(ctx, userID, req.DogID, req.ScheduledAt, req.Duration, req.Reward, req.Region)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to create walk request")
		respondServiceError(w, err)
		return
	}

	log.Info().
		Str("user_id", userID).
		Str("request_id", walkReq.ID).
		Int("reward", walkReq.Reward).
		Msg("Walk request created")

	respondJSON(w, http.StatusCreated, walkReq)
}

// ListRequests handles GET /api/v1/requests. The route is public: without a
// valid session only OPEN requests are returned.
func (h *RequestHandler) ListRequests(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	authenticated := false
	if token, ok := middleware.BearerToken(r); ok {
		if _, err := h.authService.ValidateSession(token); err == nil {
			authenticated = true
		}
	}

	requests, err := h.walkService.ListRequests(ctx, authenticated)
	if err != nil {
		log.Error().Err(err).Msg("Failed to list walk requests")
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, requests)
}

// GetRequest handles GET /api/v1/requests/{request_id}. Like the list route
// it is public, and without a valid session only OPEN requests resolve.
func (h *RequestHandler) GetRequest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := chi.URLParam(r, "request_id")

	authenticated := false
	if token, ok := middleware.BearerToken(r); ok {
		if _, err := h.authService.ValidateSession(token); err == nil {
			authenticated = true
		}
	}

	req, err := h.walkService.GetRequest(ctx, requestID, authenticated)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, req)
}

// CompleteRequest handles POST /api/v1/requests/{request_id}/complete
func (h *RequestHandler) CompleteRequest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)
	requestID := chi.URLParam(r, "request_id")

	if err := h.walkService.Complete(ctx, userID, requestID); err != nil {
		log.Error().Err(err).
			Str("user_id", userID).
			Str("request_id", requestID).
			Msg("Failed to complete walk request")
		respondServiceError(w, err)
		return
	}

	log.Info().Str("user_id", userID).Str("request_id", requestID).Msg("Walk completed")

	w.WriteHeader(http.StatusNoContent)
}

// History handles GET /api/v1/history
func (h *RequestHandler) History(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	requests, err := h.walkService.History(ctx, userID)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to list walk history")
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, requests)
}
