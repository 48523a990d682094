package handlers

import (
	"net/http"

	"dogwalk-backend/internal/middleware"
	"dogwalk-backend/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// ApplicationHandler handles walker applications
type ApplicationHandler struct {
	walkService *services.WalkService
}

// NewApplicationHandler creates a new application handler
func NewApplicationHandler(walkService *services.WalkService) *ApplicationHandler {
	return &ApplicationHandler{walkService: walkService}
}

// Apply handles POST /api/v1/requests/{request_id}/applications
func (h *ApplicationHandler) Apply(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)
	requestID := chi.URLParam(r, "request_id")

	app, err := h.walkService.Apply(ctx, userID, requestID)
	if err != nil {
		log.Error().Err(err).
			Str("user_id", userID).
			Str("request_id", requestID).
			Msg("Failed to apply")
		respondServiceError(w, err)
		return
	}

	log.Info().
		Str("user_id", userID).
		Str("request_id", requestID).
		Str("application_id", app.ID).
		Msg("Application submitted")

	respondJSON(w, http.StatusCreated, app)
}

// ListApplications handles GET /api/v1/requests/{request_id}/applications
func (h *ApplicationHandler) ListApplications(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)
	requestID := chi.URLParam(r, "request_id")

	apps, err := h.walkService.ListApplications(ctx, userID, requestID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, apps)
}

// Accept handles POST /api/v1/applications/{application_id}/accept
func (h *ApplicationHandler) Accept(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)
	applicationID := chi.URLParam(r, "application_id")

	if err := h.walkService.Accept(ctx, userID, applicationID); err != nil {
		log.Error().Err(err).
			Str("user_id", userID).
			Str("application_id", applicationID).
			Msg("Failed to accept application")
		respondServiceError(w, err)
		return
	}

	log.Info().
		Str("user_id", userID).
		Str("application_id", applicationID).
		Msg("Application accepted")

	w.WriteHeader(http.StatusNoContent)
}
