package repository

import (
	"context"
	"fmt"

	"tradetide-backend/internal/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

// MessageRepository handles database operations for messages
type MessageRepository struct {
	db *pgxpool.Pool
}

// NewMessageRepository creates a new message repository
func NewMessageRepository(db *pgxpool.Pool) *MessageRepository {
	return &MessageRepository{db: db}
}

// Create creates a new message
func (r *MessageRepository) Create(ctx context.Context, msg *models.Message) error {
	query := `
		INSERT INTO messages (id, chat_id, sender_id, content, read, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.db.Exec(ctx, query,
		msg.ID, msg.ChatID, msg.SenderID, msg.Content, msg.Read, msg.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create message: %w", err)
	}
	return nil
}

// ListByChat retrieves all messages for a chat, oldest first, with sender
// summaries attached.
func (r *MessageRepository) ListByChat(ctx context.Context, chatID string) ([]*models.Message, error) {
	query := `
		SELECT m.id, m.chat_id, m.sender_id, m.content, m.read, m.created_at,
			u.username, u.email
		FROM messages m
		JOIN users u ON u.id = m.sender_id
		WHERE m.chat_id = $1
		ORDER BY m.created_at ASC
	`
	rows, err := r.db.Query(ctx, query, chatID)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	defer rows.Close()

	var messages []*models.Message
	for rows.Next() {
		var msg models.Message
		var sender models.UserSummary
		err := rows.Scan(&msg.ID, &msg.ChatID, &msg.SenderID, &msg.Content,
			&msg.Read, &msg.CreatedAt, &sender.Username, &sender.Email)
		if err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		sender.ID = msg.SenderID
		msg.Sender = &sender
		messages = append(messages, &msg)
	}
	return messages, rows.Err()
}

// MarkRead sets read=true on every message in the chat not authored by
// userID and returns the number of messages flipped.
func (r *MessageRepository) MarkRead(ctx context.Context, chatID, userID string) (int64, error) {
	query := `
		UPDATE messages
		SET read = TRUE
		WHERE chat_id = $1 AND sender_id <> $2 AND NOT read
	`
	result, err := r.db.Exec(ctx, query, chatID, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to mark messages read: %w", err)
	}
	return result.RowsAffected(), nil
}

// CountUnreadForUser counts messages addressed to the user that remain
// unread across all of their chats.
func (r *MessageRepository) CountUnreadForUser(ctx context.Context, userID string) (int, error) {
	query := `
		SELECT count(*)
		FROM messages m
		JOIN chats c ON c.id = m.chat_id
		WHERE (c.participant_a = $1 OR c.participant_b = $1)
			AND m.sender_id <> $1
			AND NOT m.read
	`
	var count int
	if err := r.db.QueryRow(ctx, query, userID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count unread messages: %w", err)
	}
	return count, nil
}
