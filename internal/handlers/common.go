package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"dogwalk-backend/internal/services"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error string `json:"error"`
}

// respondError sends an error response
func respondError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(ErrorResponse{Error: message})
}

// respondJSON sends a JSON response
func respondJSON(w http.ResponseWriter, statusCode int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(body)
}

// respondServiceError maps a service error to an HTTP status. Validation,
// auth, access and state errors keep their specific messages; anything else
// degrades to a generic failure.
func respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrValidation):
		respondError(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, services.ErrInvalidCredentials),
		errors.Is(err, services.ErrEmailNotConfirmed):
		respondError(w, err.Error(), http.StatusUnauthorized)
	case errors.Is(err, services.ErrForbidden):
		respondError(w, err.Error(), http.StatusForbidden)
	case errors.Is(err, services.ErrNotFound):
		respondError(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, services.ErrEmailTaken),
		errors.Is(err, services.ErrAlreadyApplied),
		errors.Is(err, services.ErrRequestNotOpen),
		errors.Is(err, services.ErrRequestNotMatched):
		respondError(w, err.Error(), http.StatusConflict)
	default:
		respondError(w, "internal server error", http.StatusInternalServerError)
	}
}
