package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"tradetide-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ChatRepository handles database operations for chats
type ChatRepository struct {
	db *pgxpool.Pool
}

// NewChatRepository creates a new chat repository
func NewChatRepository(db *pgxpool.Pool) *ChatRepository {
	return &ChatRepository{db: db}
}

func scanChat(row pgx.Row) (*models.Chat, error) {
	var chat models.Chat
	var a, b string
	err := row.Scan(&chat.ID, &a, &b, &chat.CreatedAt, &chat.UpdatedAt)
	if err != nil {
		return nil, err
	}
	chat.Participants = []string{a, b}
	return &chat, nil
}

// Create creates a new chat. Participants must be stored sorted so the pair
// is unique regardless of who initiated contact.
func (r *ChatRepository) Create(ctx context.Context, chat *models.Chat) error {
	query := `
		INSERT INTO chats (id, participant_a, participant_b, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.db.Exec(ctx, query, chat.ID,
		chat.Participants[0], chat.Participants[1], chat.CreatedAt, chat.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create chat: %w", err)
	}
	return nil
}

// GetByID retrieves a chat by ID
func (r *ChatRepository) GetByID(ctx context.Context, id string) (*models.Chat, error) {
	query := `
		SELECT id, participant_a, participant_b, created_at, updated_at
		FROM chats
		WHERE id = $1
	`
	chat, err := scanChat(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("chat %s: %w", id, models.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get chat: %w", err)
	}
	return chat, nil
}

// GetByParticipants retrieves the chat between two users, if any. The input
// pair must be sorted the way Create stores it.
func (r *ChatRepository) GetByParticipants(ctx context.Context, a, b string) (*models.Chat, error) {
	query := `
		SELECT id, participant_a, participant_b, created_at, updated_at
		FROM chats
		WHERE participant_a = $1 AND participant_b = $2
	`
	chat, err := scanChat(r.db.QueryRow(ctx, query, a, b))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("chat: %w", models.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get chat by participants: %w", err)
	}
	return chat, nil
}

// ListByUser retrieves all chats the user participates in, most recently
// active first.
func (r *ChatRepository) ListByUser(ctx context.Context, userID string) ([]*models.Chat, error) {
	query := `
		SELECT id, participant_a, participant_b, created_at, updated_at
		FROM chats
		WHERE participant_a = $1 OR participant_b = $1
		ORDER BY updated_at DESC
	`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list chats: %w", err)
	}
	defer rows.Close()

	var chats []*models.Chat
	for rows.Next() {
		chat, err := scanChat(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan chat: %w", err)
		}
		chats = append(chats, chat)
	}
	return chats, rows.Err()
}

// Touch updates the chat's last-activity timestamp
func (r *ChatRepository) Touch(ctx context.Context, chatID string, at time.Time) error {
	query := `UPDATE chats SET updated_at = $1 WHERE id = $2`
	_, err := r.db.Exec(ctx, query, at, chatID)
	if err != nil {
		return fmt.Errorf("failed to touch chat: %w", err)
	}
	return nil
}
