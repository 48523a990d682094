package handlers

import (
	"encoding/json"
	"net/http"

	"dogwalk-backend/internal/services"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// WebSocketHandler handles the live chat subscription for a walk request
type WebSocketHandler struct {
	hub         *services.ChatHub
	authService *services.AuthService
	chatService *services.ChatService
}

// NewWebSocketHandler creates a new websocket handler
func NewWebSocketHandler(hub *services.ChatHub, authService *services.AuthService, chatService *services.ChatService) *WebSocketHandler {
	return &WebSocketHandler{
		hub:         hub,
		authService: authService,
		chatService: chatService,
	}
}

// inboundFrame is what a connected client may send: a chat message for the
// subscribed request.
type inboundFrame struct {
	Type    string `json:"type"`
	Content string `json:"content"`
}

// HandleChat handles GET /ws/chat?token=...&request_id=...
// The subscription is scoped to one walk request and torn down when the
// connection closes.
func (h *WebSocketHandler) HandleChat(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		respondError(w, "token required", http.StatusUnauthorized)
		return
	}

	userID, err := h.authService.ValidateSession(token)
	if err != nil {
		respondError(w, "invalid token", http.StatusUnauthorized)
		return
	}

	requestID := r.URL.Query().Get("request_id")
	if requestID == "" {
		respondError(w, "request_id required", http.StatusBadRequest)
		return
	}

	if err := h.chatService.Authorize(r.Context(), userID, requestID); err != nil {
		respondServiceError(w, err)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("Failed to upgrade WebSocket connection")
		return
	}
	defer conn.Close()

	h.hub.Join(requestID, userID, conn)
	defer h.hub.Leave(requestID, userID, conn)

	log.Info().
		Str("user_id", userID).
		Str("request_id", requestID).
		Msg("Chat WebSocket established")

	ctx := r.Context()
	for {
		_, messageBytes, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Error().Err(err).Str("user_id", userID).Msg("WebSocket error")
			}
			break
		}

		var frame inboundFrame
		if err := json.Unmarshal(messageBytes, &frame); err != nil {
			h.hub.SendToUser(requestID, userID, services.ChatEvent{Type: "error", Error: "Invalid message format"})
			continue
		}

		switch frame.Type {
		case "message":
			// Send broadcasts to the room, including back to the sender,
			// which doubles as the delivery confirmation.
			if _, err := h.chatService.Send(ctx, userID, requestID, frame.Content); err != nil {
				log.Error().Err(err).
					Str("user_id", userID).
					Str("request_id", requestID).
					Msg("Failed to send chat message over WebSocket")
				h.hub.SendToUser(requestID, userID, services.ChatEvent{Type: "error", Error: err.Error()})
			}
		default:
			h.hub.SendToUser(requestID, userID, services.ChatEvent{Type: "error", Error: "Unknown message type"})
		}
	}
}
