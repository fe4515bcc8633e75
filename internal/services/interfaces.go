package services

import (
	"context"
	"time"

	"tradetide-backend/internal/models"
	"tradetide-backend/internal/repository"
)

// Store interfaces consumed by the services. The repository package provides
// the pgx-backed implementations; tests substitute function-field mocks.

// UserStore persists users.
type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	Update(ctx context.Context, user *models.User) error
	GetSummaries(ctx context.Context, ids []string) ([]models.UserSummary, error)
	ListMarketplace(ctx context.Context, filter repository.MarketplaceFilter) ([]*models.User, error)
	List(ctx context.Context, filter repository.UserFilter) ([]*models.User, int, error)
}

// ChatStore persists chats.
type ChatStore interface {
	Create(ctx context.Context, chat *models.Chat) error
	GetByID(ctx context.Context, id string) (*models.Chat, error)
	GetByParticipants(ctx context.Context, a, b string) (*models.Chat, error)
	ListByUser(ctx context.Context, userID string) ([]*models.Chat, error)
	Touch(ctx context.Context, chatID string, at time.Time) error
}

// MessageStore persists messages.
type MessageStore interface {
	Create(ctx context.Context, msg *models.Message) error
	ListByChat(ctx context.Context, chatID string) ([]*models.Message, error)
	MarkRead(ctx context.Context, chatID, userID string) (int64, error)
	CountUnreadForUser(ctx context.Context, userID string) (int, error)
}

// BarterStore persists barter requests.
type BarterStore interface {
	Create(ctx context.Context, req *models.BarterRequest) error
	GetByID(ctx context.Context, id string) (*models.BarterRequest, error)
	ListByUser(ctx context.Context, userID string) ([]*models.BarterRequest, error)
	UpdateStatus(ctx context.Context, id, status string, at time.Time) error
	Delete(ctx context.Context, id string) error
}

// SessionStore persists scheduled sessions.
type SessionStore interface {
	Create(ctx context.Context, session *models.Session) error
	GetByID(ctx context.Context, id string) (*models.Session, error)
	ListByUser(ctx context.Context, userID string) ([]*models.Session, error)
	UpdateStatus(ctx context.Context, id, status string, at time.Time) error
}

// ReviewStore persists reviews.
type ReviewStore interface {
	Create(ctx context.Context, review *models.Review) error
	GetByID(ctx context.Context, id string) (*models.Review, error)
	ExistsForSession(ctx context.Context, reviewerID, sessionID string) (bool, error)
	List(ctx context.Context, filter repository.ReviewFilter) ([]*models.Review, int, error)
	ListAll(ctx context.Context) ([]*models.Review, error)
	ListByReviewee(ctx context.Context, revieweeID string) ([]*models.Review, error)
	Update(ctx context.Context, review *models.Review) error
	Delete(ctx context.Context, id string) error
}

// NotificationStore persists notifications.
type NotificationStore interface {
	Create(ctx context.Context, notif *models.Notification) error
	ListByUser(ctx context.Context, userID string) ([]*models.Notification, error)
	MarkRead(ctx context.Context, id string) error
}

// AuditStore persists audit log entries.
type AuditStore interface {
	Create(ctx context.Context, entry *models.AuditLog) error
	List(ctx context.Context, filter repository.AuditFilter) ([]*models.AuditLog, error)
}

// Broadcaster delivers real-time events to connected clients. The Hub is the
// production implementation; REST handlers and the websocket relay share it
// through the services so persistence and live delivery cannot diverge.
type Broadcaster interface {
	EmitToChat(chatID, event string, data any)
	EmitToChatExcept(chatID, excludeUserID, event string, data any)
	EmitToUser(userID, event string, data any)
}
