package handlers

import (
	"encoding/json"
	"net/http"

	"dogwalk-backend/internal/middleware"
	"dogwalk-backend/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// ChatHandler handles the HTTP side of the per-request chat channel
type ChatHandler struct {
	chatService *services.ChatService
}

// NewChatHandler creates a new chat handler
func NewChatHandler(chatService *services.ChatService) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

// ListMessages handles GET /api/v1/requests/{request_id}/messages
func (h *ChatHandler) ListMessages(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)
	requestID := chi.URLParam(r, "request_id")

	messages, err := h.chatService.History(ctx, userID, requestID)
	if err != nil {
		log.Error().Err(err).
			Str("user_id", userID).
			Str("request_id", requestID).
			Msg("Failed to load chat history")
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, messages)
}

// SendMessageRequest represents the request body for sending a message
type SendMessageRequest struct {
	Content string `json:"content"`
}

// SendMessage handles POST /api/v1/requests/{request_id}/messages
func (h *ChatHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)
	requestID := chi.URLParam(r, "request_id")

	var req SendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	msg, err := h.chatService.Send(ctx, userID, requestID, req.Content)
	if err != nil {
		log.Error().Err(err).
			Str("user_id", userID).
			Str("request_id", requestID).
			Msg("Failed to send chat message")
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, msg)
}
