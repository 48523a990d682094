package handlers

import (
	"encoding/json"
	"net/http"

	"dogwalk-backend/internal/middleware"
	"dogwalk-backend/internal/models"
	"dogwalk-backend/internal/services"

	"github.com/rs/zerolog/log"
)

// DogHandler handles dog registration and listing
type DogHandler struct {
	dogService *services.DogService
}

// NewDogHandler creates a new dog handler
func NewDogHandler(dogService *services.DogService) *DogHandler {
	return &DogHandler{dogService: dogService}
}

// CreateDogRequest represents the request body for registering a dog
type CreateDogRequest struct {
	Name     string         `json:"name"`
	Breed    string         `json:"breed"`
	Size     models.DogSize `json:"size"`
	Notes    *string        `json:"notes,omitempty"`
	ImageURL *string        `json:"image_url,omitempty"`
}

// CreateDog handles POST /api/v1/dogs
func (h *DogHandler) CreateDog(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	var req CreateDogRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	dog, err := h.dogService.Create(ctx, userID, req.Name, req.Breed, req.Size, req.Notes, req.ImageURL)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to create dog")
		respondServiceError(w, err)
		return
	}

	log.Info().Str("user_id", userID).Str("dog_id", dog.ID).Msg("Dog registered")

	respondJSON(w, http.StatusCreated, dog)
}

// ListDogs handles GET /api/v1/dogs
func (h *DogHandler) ListDogs(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	dogs, err := h.dogService.ListByOwner(ctx, userID)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to list dogs")
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dogs)
}
