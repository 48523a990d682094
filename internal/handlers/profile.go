package handlers

import (
	"encoding/json"
	"net/http"

	"dogwalk-backend/internal/middleware"
	"dogwalk-backend/internal/services"

	"github.com/rs/zerolog/log"
)

// ProfileHandler handles the current user's profile
type ProfileHandler struct {
	authService *services.AuthService
}

// NewProfileHandler creates a new profile handler
func NewProfileHandler(authService *services.AuthService) *ProfileHandler {
	return &ProfileHandler{authService: authService}
}

// GetMe handles GET /api/v1/me. A missing profile row behind a valid
// session is recovered with a synthesized default profile.
func (h *ProfileHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	profile, err := h.authService.ResolveProfile(ctx, userID)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to resolve profile")
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, profile)
}

// UpdateMeRequest represents a profile self-edit
type UpdateMeRequest struct {
	Nickname   string `json:"nickname"`
	RegionCode string `json:"region_code"`
}

// UpdateMe handles PUT /api/v1/me
func (h *ProfileHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	var req UpdateMeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	profile, err := h.authService.UpdateProfile(ctx, userID, req.Nickname, req.RegionCode)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to update profile")
		respondServiceError(w, err)
		return
	}

	log.Info().Str("user_id", userID).Msg("Profile updated")

	respondJSON(w, http.StatusOK, profile)
}
