package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"dogwalk-backend/internal/models"
	"dogwalk-backend/internal/repository"

	"github.com/google/uuid"
)

// maxMessageLen caps a single chat message.
const maxMessageLen = 2000

// ChatService handles the per-request message channel between a matched
// pair. Every operation verifies the caller is a party to the request.
type ChatService struct {
	profiles     ProfileStore
	requests     RequestStore
	applications ApplicationStore
	messages     ChatStore
	hub          *ChatHub
}

// NewChatService creates a new chat service
func NewChatService(profiles ProfileStore, requests RequestStore, applications ApplicationStore, messages ChatStore, hub *ChatHub) *ChatService {
	return &ChatService{
		profiles:     profiles,
		requests:     requests,
		applications: applications,
		messages:     messages,
		hub:          hub,
	}
}

// Authorize verifies the caller may enter the chat for a request: the
// request must have left the OPEN state and the caller must be its owner or
// its accepted walker.
func (s *ChatService) Authorize(ctx context.Context, userID, requestID string) error {
	req, err := s.requests.GetByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("walk request %s: %w", requestID, ErrNotFound)
		}
		return fmt.Errorf("failed to load walk request: %w", err)
	}
	if req.Status == models.WalkOpen {
		return ErrRequestNotMatched
	}
	if req.OwnerID == userID {
		return nil
	}

	walkerID, err := s.applications.GetAcceptedWalkerID(ctx, requestID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrRequestNotMatched
		}
		return fmt.Errorf("failed to load accepted walker: %w", err)
	}
	if walkerID != userID {
		return fmt.Errorf("caller is not a party to this walk: %w", ErrForbidden)
	}
	return nil
}

// History returns the full message history for a request, oldest first.
func (s *ChatService) History(ctx context.Context, userID, requestID string) ([]*models.ChatMessage, error) {
	if err := s.Authorize(ctx, userID, requestID); err != nil {
		return nil, err
	}
	messages, err := s.messages.ListByRequest(ctx, requestID)
	if err != nil {
		return nil, fmt.Errorf("failed to list chat messages: %w", err)
	}
	return messages, nil
}

// Send appends one message and pushes it to the room's subscribers. Sending
// requires the request to be MATCHED; a completed walk keeps its history
// readable but closed to new messages.
func (s *ChatService) Send(ctx context.Context, senderID, requestID, content string) (*models.ChatMessage, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, fmt.Errorf("%w: message content is required", ErrValidation)
	}
	if len(content) > maxMessageLen {
		return nil, fmt.Errorf("%w: message exceeds %d characters", ErrValidation, maxMessageLen)
	}

	req, err := s.requests.GetByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("walk request %s: %w", requestID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to load walk request: %w", err)
	}
	if req.Status != models.WalkMatched {
		return nil, ErrRequestNotMatched
	}
	if err := s.Authorize(ctx, senderID, requestID); err != nil {
		return nil, err
	}

	sender, err := s.profiles.GetByID(ctx, senderID)
	if err != nil {
		return nil, fmt.Errorf("failed to load sender profile: %w", err)
	}

	msg := &models.ChatMessage{
		ID:             uuid.New().String(),
		RequestID:      requestID,
		SenderID:       senderID,
		Content:        content,
		CreatedAt:      time.Now(),
		SenderNickname: sender.Nickname,
	}
	if err := s.messages.Create(ctx, msg); err != nil {
		return nil, fmt.Errorf("failed to store chat message: %w", err)
	}

	s.hub.Broadcast(requestID, ChatEvent{Type: "message", Message: msg})
	return msg, nil
}
