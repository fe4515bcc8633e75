package services

import (
	"context"
	"encoding/json"
	"time"

	"tradetide-backend/internal/models"
	"tradetide-backend/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// AuditService appends and serves audit log entries.
type AuditService struct {
	auditRepo AuditStore
}

// NewAuditService creates a new audit service
func NewAuditService(auditRepo AuditStore) *AuditService {
	return &AuditService{auditRepo: auditRepo}
}

// Record appends an audit entry for a successful mutating operation. Like
// notifications, audit writes are best-effort: a failure is logged and never
// fails the primary operation.
func (s *AuditService) Record(ctx context.Context, actorID, action, target string, details any) {
	var raw json.RawMessage
	if details != nil {
		data, err := json.Marshal(details)
		if err != nil {
			log.Error().Err(err).Str("action", action).Msg("Failed to encode audit details")
		} else {
			raw = data
		}
	}

	entry := &models.AuditLog{
		ID:        uuid.New().String(),
		ActorID:   actorID,
		Action:    action,
		Target:    target,
		Details:   raw,
		CreatedAt: time.Now(),
	}
	if err := s.auditRepo.Create(ctx, entry); err != nil {
		log.Error().Err(err).
			Str("actor_id", actorID).
			Str("action", action).
			Msg("Failed to write audit log entry")
	}
}

// List retrieves audit log entries matching the filter, newest first.
func (s *AuditService) List(ctx context.Context, filter repository.AuditFilter) ([]*models.AuditLog, error) {
	return s.auditRepo.List(ctx, filter)
}
