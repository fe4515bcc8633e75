package repository

import (
	"context"
	"fmt"
	"strings"

	"tradetide-backend/internal/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

// AuditLogRepository handles database operations for audit log entries
type AuditLogRepository struct {
	db *pgxpool.Pool
}

// NewAuditLogRepository creates a new audit log repository
func NewAuditLogRepository(db *pgxpool.Pool) *AuditLogRepository {
	return &AuditLogRepository{db: db}
}

// Create appends an audit log entry
func (r *AuditLogRepository) Create(ctx context.Context, entry *models.AuditLog) error {
	query := `
		INSERT INTO audit_logs (id, actor_id, action, target, details, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.db.Exec(ctx, query, entry.ID, entry.ActorID, entry.Action,
		entry.Target, []byte(entry.Details), entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create audit log entry: %w", err)
	}
	return nil
}

// AuditFilter narrows the audit log listing.
type AuditFilter struct {
	ActorID string
	Action  string
	Target  string
	From    string
	To      string
}

// List retrieves audit log entries matching the filter, newest first.
func (r *AuditLogRepository) List(ctx context.Context, filter AuditFilter) ([]*models.AuditLog, error) {
	where := []string{"TRUE"}
	var args []any

	if filter.ActorID != "" {
		args = append(args, filter.ActorID)
		where = append(where, fmt.Sprintf("actor_id = $%d", len(args)))
	}
	if filter.Action != "" {
		args = append(args, filter.Action)
		where = append(where, fmt.Sprintf("action = $%d", len(args)))
	}
	if filter.Target != "" {
		args = append(args, filter.Target)
		where = append(where, fmt.Sprintf("target = $%d", len(args)))
	}
	if filter.From != "" {
		args = append(args, filter.From)
		where = append(where, fmt.Sprintf("created_at >= $%d", len(args)))
	}
	if filter.To != "" {
		args = append(args, filter.To)
		where = append(where, fmt.Sprintf("created_at <= $%d", len(args)))
	}

	query := fmt.Sprintf(`
		SELECT id, actor_id, action, target, details, created_at
		FROM audit_logs
		WHERE %s
		ORDER BY created_at DESC
	`, strings.Join(where, " AND "))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list audit logs: %w", err)
	}
	defer rows.Close()

	var entries []*models.AuditLog
	for rows.Next() {
		var entry models.AuditLog
		var details []byte
		err := rows.Scan(&entry.ID, &entry.ActorID, &entry.Action,
			&entry.Target, &details, &entry.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan audit log entry: %w", err)
		}
		entry.Details = details
		entries = append(entries, &entry)
	}
	return entries, rows.Err()
}
