package repository

import (
	"context"
	"fmt"

	"dogwalk-backend/internal/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ChatRepository handles database operations for chat messages
type ChatRepository struct {
	db *pgxpool.Pool
}

// NewChatRepository creates a new chat repository
func NewChatRepository(db *pgxpool.Pool) *ChatRepository {
	return &ChatRepository{db: db}
}

// Create creates a new chat message
func (r *ChatRepository) Create(ctx context.Context, msg *models.ChatMessage) error {
	query := `
		INSERT INTO chat_messages (id, request_id, sender_id, content, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.db.Exec(ctx, query, msg.ID, msg.RequestID, msg.SenderID, msg.Content, msg.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create chat message: %w", err)
	}
	return nil
}

// ListByRequest retrieves the message history for a request, oldest first,
// with the sender's nickname joined for display.
func (r *ChatRepository) ListByRequest(ctx context.Context, requestID string) ([]*models.ChatMessage, error) {
	query := `
		SELECT m.id, m.request_id, m.sender_id, m.content, m.created_at, p.nickname
		FROM chat_messages m
		JOIN profiles p ON p.id = m.sender_id
		WHERE m.request_id = $1
		ORDER BY m.created_at, m.id
	`
	rows, err := r.db.Query(ctx, query, requestID)
	if err != nil {
		return nil, fmt.Errorf("failed to list chat messages: %w", err)
	}
	defer rows.Close()

	messages := make([]*models.ChatMessage, 0)
	for rows.Next() {
		var msg models.ChatMessage
		err := rows.Scan(
			&msg.ID, &msg.RequestID, &msg.SenderID, &msg.Content, &msg.CreatedAt, &msg.SenderNickname,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan chat message: %w", err)
		}
		messages = append(messages, &msg)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating chat messages: %w", err)
	}

	return messages, nil
}
