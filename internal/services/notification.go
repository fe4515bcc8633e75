package services

import (
	"context"
	"time"

	"tradetide-backend/internal/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// NotificationService creates and serves user notifications.
type NotificationService struct {
	notifRepo NotificationStore
}

// NewNotificationService creates a new notification service
func NewNotificationService(notifRepo NotificationStore) *NotificationService {
	return &NotificationService{notifRepo: notifRepo}
}

// Notify writes a notification for a user. Notifications are advisory side
// effects of a primary write that already succeeded, so a failure here is
// logged and never propagated to the caller.
func (s *NotificationService) Notify(ctx context.Context, userID, notifType, message string) {
	notif := &models.Notification{
		ID:        uuid.New().String(),
		UserID:    userID,
		Type:      notifType,
		Message:   message,
		CreatedAt: time.Now(),
	}
	if err := s.notifRepo.Create(ctx, notif); err != nil {
		log.Error().Err(err).
			Str("user_id", userID).
			Str("type", notifType).
			Msg("Failed to write notification")
	}
}

// ListForUser retrieves a user's notifications, newest first.
func (s *NotificationService) ListForUser(ctx context.Context, userID string) ([]*models.Notification, error) {
	return s.notifRepo.ListByUser(ctx, userID)
}

// MarkRead sets read=true on a notification
func (s *NotificationService) MarkRead(ctx context.Context, id string) error {
	return s.notifRepo.MarkRead(ctx, id)
}
