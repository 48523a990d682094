package handlers

import (
	"encoding/json"
	"net/http"

	"dogwalk-backend/internal/middleware"
	"dogwalk-backend/internal/services"

	"github.com/rs/zerolog/log"
)

// UploadHandler hands out presigned upload URLs for dog photos
type UploadHandler struct {
	uploadService *services.UploadService
}

// NewUploadHandler creates a new upload handler
func NewUploadHandler(uploadService *services.UploadService) *UploadHandler {
	return &UploadHandler{uploadService: uploadService}
}

// PresignRequest represents the request body for a dog photo upload
type PresignRequest struct {
	Filename      string `json:"filename"`
	ContentType   string `json:"content_type"`
	ContentLength int64  `json:"content_length"`
}

// PresignDogPhoto handles POST /api/v1/uploads/dog-photo
func (h *UploadHandler) PresignDogPhoto(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	var req PresignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	result, err := h.uploadService.PresignDogPhoto(ctx, userID, req.Filename, req.ContentType, req.ContentLength)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to presign dog photo upload")
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}
