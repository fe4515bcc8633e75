package services

import (
	"context"
	"sync"
	"time"

	"tradetide-backend/internal/models"
	"tradetide-backend/internal/repository"
)

// Function-field mocks for the store interfaces. Unset fields panic, which
// makes a test calling an unexpected method fail loudly.

type mockUserStore struct {
	createFn          func(ctx context.Context, user *models.User) error
	getByIDFn         func(ctx context.Context, id string) (*models.User, error)
	getByEmailFn      func(ctx context.Context, email string) (*models.User, error)
	emailExistsFn     func(ctx context.Context, email string) (bool, error)
	updateFn          func(ctx context.Context, user *models.User) error
	getSummariesFn    func(ctx context.Context, ids []string) ([]models.UserSummary, error)
	listMarketplaceFn func(ctx context.Context, filter repository.MarketplaceFilter) ([]*models.User, error)
	listFn            func(ctx context.Context, filter repository.UserFilter) ([]*models.User, int, error)
}

func (m *mockUserStore) Create(ctx context.Context, user *models.User) error {
	return m.createFn(ctx, user)
}

func (m *mockUserStore) GetByID(ctx context.Context, id string) (*models.User, error) {
	return m.getByIDFn(ctx, id)
}

func (m *mockUserStore) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return m.getByEmailFn(ctx, email)
}

func (m *mockUserStore) EmailExists(ctx context.Context, email string) (bool, error) {
	return m.emailExistsFn(ctx, email)
}

func (m *mockUserStore) Update(ctx context.Context, user *models.User) error {
	return m.updateFn(ctx, user)
}

func (m *mockUserStore) GetSummaries(ctx context.Context, ids []string) ([]models.UserSummary, error) {
	if m.getSummariesFn == nil {
		return nil, nil
	}
	return m.getSummariesFn(ctx, ids)
}

func (m *mockUserStore) ListMarketplace(ctx context.Context, filter repository.MarketplaceFilter) ([]*models.User, error) {
	return m.listMarketplaceFn(ctx, filter)
}

func (m *mockUserStore) List(ctx context.Context, filter repository.UserFilter) ([]*models.User, int, error) {
	return m.listFn(ctx, filter)
}

type mockChatStore struct {
	createFn            func(ctx context.Context, chat *models.Chat) error
	getByIDFn           func(ctx context.Context, id string) (*models.Chat, error)
	getByParticipantsFn func(ctx context.Context, a, b string) (*models.Chat, error)
	listByUserFn        func(ctx context.Context, userID string) ([]*models.Chat, error)
	touchFn             func(ctx context.Context, chatID string, at time.Time) error
}

func (m *mockChatStore) Create(ctx context.Context, chat *models.Chat) error {
	return m.createFn(ctx, chat)
}

func (m *mockChatStore) GetByID(ctx context.Context, id string) (*models.Chat, error) {
	return m.getByIDFn(ctx, id)
}

func (m *mockChatStore) GetByParticipants(ctx context.Context, a, b string) (*models.Chat, error) {
	return m.getByParticipantsFn(ctx, a, b)
}

func (m *mockChatStore) ListByUser(ctx context.Context, userID string) ([]*models.Chat, error) {
	return m.listByUserFn(ctx, userID)
}

func (m *mockChatStore) Touch(ctx context.Context, chatID string, at time.Time) error {
	if m.touchFn == nil {
		return nil
	}
	return m.touchFn(ctx, chatID, at)
}

type mockMessageStore struct {
	createFn             func(ctx context.Context, msg *models.Message) error
	listByChatFn         func(ctx context.Context, chatID string) ([]*models.Message, error)
	markReadFn           func(ctx context.Context, chatID, userID string) (int64, error)
	countUnreadForUserFn func(ctx context.Context, userID string) (int, error)
}

func (m *mockMessageStore) Create(ctx context.Context, msg *models.Message) error {
	return m.createFn(ctx, msg)
}

func (m *mockMessageStore) ListByChat(ctx context.Context, chatID string) ([]*models.Message, error) {
	return m.listByChatFn(ctx, chatID)
}

func (m *mockMessageStore) MarkRead(ctx context.Context, chatID, userID string) (int64, error) {
	return m.markReadFn(ctx, chatID, userID)
}

func (m *mockMessageStore) CountUnreadForUser(ctx context.Context, userID string) (int, error) {
	return m.countUnreadForUserFn(ctx, userID)
}

type mockBarterStore struct {
	createFn       func(ctx context.Context, req *models.BarterRequest) error
	getByIDFn      func(ctx context.Context, id string) (*models.BarterRequest, error)
	listByUserFn   func(ctx context.Context, userID string) ([]*models.BarterRequest, error)
	updateStatusFn func(ctx context.Context, id, status string, at time.Time) error
	deleteFn       func(ctx context.Context, id string) error
}

func (m *mockBarterStore) Create(ctx context.Context, req *models.BarterRequest) error {
	return m.createFn(ctx, req)
}

func (m *mockBarterStore) GetByID(ctx context.Context, id string) (*models.BarterRequest, error) {
	return m.getByIDFn(ctx, id)
}

func (m *mockBarterStore) ListByUser(ctx context.Context, userID string) ([]*models.BarterRequest, error) {
	return m.listByUserFn(ctx, userID)
}

func (m *mockBarterStore) UpdateStatus(ctx context.Context, id, status string, at time.Time) error {
	return m.updateStatusFn(ctx, id, status, at)
}

func (m *mockBarterStore) Delete(ctx context.Context, id string) error {
	return m.deleteFn(ctx, id)
}

// mockNotificationStore records created notifications.
type mockNotificationStore struct {
	mu      sync.Mutex
	created []*models.Notification
	err     error
}

func (m *mockNotificationStore) Create(ctx context.Context, notif *models.Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.created = append(m.created, notif)
	return nil
}

func (m *mockNotificationStore) ListByUser(ctx context.Context, userID string) ([]*models.Notification, error) {
	return nil, nil
}

func (m *mockNotificationStore) MarkRead(ctx context.Context, id string) error {
	return nil
}

// mockAuditStore records created audit entries.
type mockAuditStore struct {
	mu      sync.Mutex
	created []*models.AuditLog
	err     error
}

func (m *mockAuditStore) Create(ctx context.Context, entry *models.AuditLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.created = append(m.created, entry)
	return nil
}

func (m *mockAuditStore) List(ctx context.Context, filter repository.AuditFilter) ([]*models.AuditLog, error) {
	return nil, nil
}

// emittedEvent is one captured broadcast.
type emittedEvent struct {
	room    string
	exclude string
	event   string
	data    any
}

// mockBroadcaster records every emitted event.
type mockBroadcaster struct {
	mu     sync.Mutex
	events []emittedEvent
}

func (m *mockBroadcaster) EmitToChat(chatID, event string, data any) {
	m.record(emittedEvent{room: "chat:" + chatID, event: event, data: data})
}

func (m *mockBroadcaster) EmitToChatExcept(chatID, excludeUserID, event string, data any) {
	m.record(emittedEvent{room: "chat:" + chatID, exclude: excludeUserID, event: event, data: data})
}

func (m *mockBroadcaster) EmitToUser(userID, event string, data any) {
	m.record(emittedEvent{room: "user:" + userID, event: event, data: data})
}

func (m *mockBroadcaster) record(ev emittedEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, ev)
}

func (m *mockBroadcaster) byEvent(event string) []emittedEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []emittedEvent
	for _, ev := range m.events {
		if ev.event == event {
			out = append(out, ev)
		}
	}
	return out
}
