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

// BarterRepository handles database operations for barter requests
type BarterRepository struct {
	db *pgxpool.Pool
}

// NewBarterRepository creates a new barter request repository
func NewBarterRepository(db *pgxpool.Pool) *BarterRepository {
	return &BarterRepository{db: db}
}

func scanBarterRequest(row pgx.Row) (*models.BarterRequest, error) {
	var req models.BarterRequest
	err := row.Scan(&req.ID, &req.SenderID, &req.ReceiverID, &req.Skill,
		&req.Status, &req.CreatedAt, &req.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &req, nil
}

// Create creates a new barter request
func (r *BarterRepository) Create(ctx context.Context, req *models.BarterRequest) error {
	query := `
		INSERT INTO barter_requests (id, sender_id, receiver_id, skill, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.db.Exec(ctx, query, req.ID, req.SenderID, req.ReceiverID,
		req.Skill, req.Status, req.CreatedAt, req.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create barter request: %w", err)
	}
	return nil
}

// GetByID retrieves a barter request by ID
func (r *BarterRepository) GetByID(ctx context.Context, id string) (*models.BarterRequest, error) {
	query := `
		SELECT id, sender_id, receiver_id, skill, status, created_at, updated_at
		FROM barter_requests
		WHERE id = $1
	`
	req, err := scanBarterRequest(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("barter request %s: %w", id, models.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get barter request: %w", err)
	}
	return req, nil
}

// ListByUser retrieves incoming and outgoing requests for a user,
// newest first.
func (r *BarterRepository) ListByUser(ctx context.Context, userID string) ([]*models.BarterRequest, error) {
	query := `
		SELECT id, sender_id, receiver_id, skill, status, created_at, updated_at
		FROM barter_requests
		WHERE sender_id = $1 OR receiver_id = $1
		ORDER BY created_at DESC
	`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list barter requests: %w", err)
	}
	defer rows.Close()

	var requests []*models.BarterRequest
	for rows.Next() {
		req, err := scanBarterRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan barter request: %w", err)
		}
		requests = append(requests, req)
	}
	return requests, rows.Err()
}

// UpdateStatus transitions a barter request to a new status
func (r *BarterRepository) UpdateStatus(ctx context.Context, id, status string, at time.Time) error {
	query := `UPDATE barter_requests SET status = $1, updated_at = $2 WHERE id = $3`
	result, err := r.db.Exec(ctx, query, status, at, id)
	if err != nil {
		return fmt.Errorf("failed to update barter request status: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("barter request %s: %w", id, models.ErrNotFound)
	}
	return nil
}

// Delete deletes a barter request by ID
func (r *BarterRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM barter_requests WHERE id = $1`
	result, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete barter request: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("barter request %s: %w", id, models.ErrNotFound)
	}
	return nil
}
