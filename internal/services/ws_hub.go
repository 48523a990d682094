package services

import (
	"encoding/json"
	"sync"

	"dogwalk-backend/internal/models"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// ChatEvent is the frame pushed to subscribers of a request's chat room.
type ChatEvent struct {
	Type    string              `json:"type"`
	Message *models.ChatMessage `json:"message,omitempty"`
	Error   string              `json:"error,omitempty"`
}

// Conn is the subset of *websocket.Conn the hub needs.
type Conn interface {
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// ChatHub manages chat subscriptions, one room per walk request. A user has
// at most one live connection per room; a new one replaces the old.
type ChatHub struct {
	mu    sync.RWMutex
	rooms map[string]map[string]Conn // request id -> user id -> conn
}

// NewChatHub creates a new chat hub
func NewChatHub() *ChatHub {
	return &ChatHub{rooms: make(map[string]map[string]Conn)}
}

// Join subscribes a user's connection to a request's room.
func (h *ChatHub) Join(requestID, userID string, conn Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	room, ok := h.rooms[requestID]
	if !ok {
		room = make(map[string]Conn)
		h.rooms[requestID] = room
	}
	if existing, ok := room[userID]; ok {
		existing.Close()
	}
	room[userID] = conn

	log.Info().Str("request_id", requestID).Str("user_id", userID).Msg("Chat subscription opened")
}

// Leave tears down a user's subscription. The entry is only removed when it
// still holds the caller's connection, so a handler winding down after its
// connection was replaced does not unsubscribe the replacement. Safe to call
// after the connection is already gone.
func (h *ChatHub) Leave(requestID, userID string, conn Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	room, ok := h.rooms[requestID]
	if !ok {
		return
	}
	if current, ok := room[userID]; ok && current == conn {
		current.Close()
		delete(room, userID)
		log.Info().Str("request_id", requestID).Str("user_id", userID).Msg("Chat subscription closed")
	}
	if len(room) == 0 {
		delete(h.rooms, requestID)
	}
}

// Broadcast pushes an event to every subscriber of a request's room.
// Connections that fail to write are dropped.
func (h *ChatHub) Broadcast(requestID string, event ChatEvent) {
	data, err := json.Marshal(event)
	if err != nil {
		log.Error().Err(err).Str("request_id", requestID).Msg("Failed to marshal chat event")
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	room, ok := h.rooms[requestID]
	if !ok {
		return
	}
	for userID, conn := range room {
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			log.Error().Err(err).
				Str("request_id", requestID).
				Str("user_id", userID).
				Msg("Failed to push chat event, dropping connection")
			conn.Close()
			delete(room, userID)
		}
	}
	if len(room) == 0 {
		delete(h.rooms, requestID)
	}
}

// SendToUser pushes an event to one subscriber of a room, if connected.
func (h *ChatHub) SendToUser(requestID, userID string, event ChatEvent) {
	data, err := json.Marshal(event)
	if err != nil {
		log.Error().Err(err).Str("request_id", requestID).Msg("Failed to marshal chat event")
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	room, ok := h.rooms[requestID]
	if !ok {
		return
	}
	conn, ok := room[userID]
	if !ok {
		return
	}
	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		conn.Close()
		delete(room, userID)
	}
}

// IsSubscribed reports whether a user has a live subscription to a room.
func (h *ChatHub) IsSubscribed(requestID, userID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	room, ok := h.rooms[requestID]
	if !ok {
		return false
	}
	_, ok = room[userID]
	return ok
}
