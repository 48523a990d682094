package handlers

import (
	"encoding/json"
	"net/http"

	"dogwalk-backend/internal/models"
	"dogwalk-backend/internal/services"

	"github.com/rs/zerolog/log"
)

// AuthHandler handles signup, login and email confirmation
type AuthHandler struct {
	authService *services.AuthService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// SignupRequest represents the request body for registration
type SignupRequest struct {
	Email    string      `json:"email"`
	Password string      `json:"password"`
	Nickname string      `json:"nickname"`
	Role     models.Role `json:"role"`
}

// SignupResponse represents the registration result. ConfirmToken is only
// present when email confirmation is required; it stands in for the
// confirmation link a mail delivery would carry.
type SignupResponse struct {
	Profile      *models.Profile `json:"profile"`
	Token        string          `json:"token,omitempty"`
	ConfirmToken string          `json:"confirm_token,omitempty"`
}

// Signup handles POST /api/v1/auth/signup
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	result, err := h.authService.SignUp(r.Context(), req.Email, req.Password, req.Nickname, req.Role)
	if err != nil {
		log.Error().Err(err).Str("email", req.Email).Msg("Failed to sign up")
		respondServiceError(w, err)
		return
	}

	log.Info().
		Str("user_id", result.Account.ID).
		Str("role", string(result.Profile.Role)).
		Msg("User signed up")

	respondJSON(w, http.StatusCreated, SignupResponse{
		Profile:      result.Profile,
		Token:        result.SessionToken,
		ConfirmToken: result.ConfirmToken,
	})
}

// LoginRequest represents the request body for login
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse represents a successful login
type LoginResponse struct {
	Profile *models.Profile `json:"profile"`
	Token   string          `json:"token"`
}

// Login handles POST /api/v1/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	token, profile, err := h.authService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		log.Warn().Err(err).Str("email", req.Email).Msg("Failed login attempt")
		respondServiceError(w, err)
		return
	}

	log.Info().Str("user_id", profile.ID).Msg("User logged in")

	respondJSON(w, http.StatusOK, LoginResponse{Profile: profile, Token: token})
}

// ConfirmRequest represents the request body for email confirmation
type ConfirmRequest struct {
	Token string `json:"token"`
}

// Confirm handles POST /api/v1/auth/confirm
func (h *AuthHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	var req ConfirmRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.authService.ConfirmEmail(r.Context(), req.Token); err != nil {
		log.Error().Err(err).Msg("Failed to confirm email")
		respondServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
