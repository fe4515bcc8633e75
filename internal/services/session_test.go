package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"tradetide-backend/internal/models"
)

type mockSessionStore struct {
	createFn       func(ctx context.Context, session *models.Session) error
	getByIDFn      func(ctx context.Context, id string) (*models.Session, error)
	listByUserFn   func(ctx context.Context, userID string) ([]*models.Session, error)
	updateStatusFn func(ctx context.Context, id, status string, at time.Time) error
}

func (m *mockSessionStore) Create(ctx context.Context, session *models.Session) error {
	return m.createFn(ctx, session)
}

func (m *mockSessionStore) GetByID(ctx context.Context, id string) (*models.Session, error) {
	return m.getByIDFn(ctx, id)
}

func (m *mockSessionStore) ListByUser(ctx context.Context, userID string) ([]*models.Session, error) {
	return m.listByUserFn(ctx, userID)
}

func (m *mockSessionStore) UpdateStatus(ctx context.Context, id, status string, at time.Time) error {
	return m.updateStatusFn(ctx, id, status, at)
}

func sessionUsers() *mockUserStore {
	return &mockUserStore{
		getByIDFn: func(_ context.Context, id string) (*models.User, error) {
			switch id {
			case "alice", "bob":
				return &models.User{ID: id, Username: id}, nil
			}
			return nil, fmt.Errorf("user %s: %w", id, models.ErrNotFound)
		},
	}
}

func TestSessionCreate(t *testing.T) {
	var created *models.Session
	sessions := &mockSessionStore{
		createFn: func(_ context.Context, session *models.Session) error {
			created = session
			return nil
		},
	}
	notifs := &mockNotificationStore{}
	svc := NewSessionService(sessions, sessionUsers(), NewNotificationService(notifs))

	date := time.Date(2026, 9, 12, 15, 0, 0, 0, time.UTC)
	session, err := svc.Create(context.Background(), "alice", "bob", date, "guitar")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if session.Status != models.StatusPending {
		t.Errorf("status = %s, want pending", session.Status)
	}
	if session.ScheduledBy != "alice" || !session.HasParticipant("bob") {
		t.Errorf("session = %+v, want alice proposing to bob", session)
	}
	if created == nil {
		t.Fatal("session was not persisted")
	}
	if len(notifs.created) != 1 || notifs.created[0].UserID != "bob" {
		t.Errorf("notifications = %+v, want one for bob", notifs.created)
	}
}

func TestSessionCreateValidation(t *testing.T) {
	svc := NewSessionService(&mockSessionStore{}, sessionUsers(), NewNotificationService(&mockNotificationStore{}))
	date := time.Date(2026, 9, 12, 15, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		partnerID string
		date      time.Time
		skill     string
		wantErr   error
	}{
		{"missing partner", "", date, "guitar", models.ErrValidation},
		{"missing skill", "bob", date, "", models.ErrValidation},
		{"zero date", "bob", time.Time{}, "guitar", models.ErrValidation},
		{"self session", "alice", date, "guitar", models.ErrValidation},
		{"unknown partner", "mallory", date, "guitar", models.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), "alice", tt.partnerID, tt.date, tt.skill)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Create() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestSessionUpdateStatus(t *testing.T) {
	tests := []struct {
		name    string
		from    string
		to      string
		actor   string
		wantErr error
	}{
		{"partner accepts", models.StatusPending, models.StatusAccepted, "bob", nil},
		{"proposer declines own proposal", models.StatusPending, models.StatusDeclined, "alice", nil},
		{"accepted completes", models.StatusAccepted, models.StatusCompleted, "alice", nil},
		{"pending cannot complete", models.StatusPending, models.StatusCompleted, "bob", models.ErrConflict},
		{"declined is terminal", models.StatusDeclined, models.StatusAccepted, "bob", models.ErrConflict},
		{"cannot reset to pending", models.StatusAccepted, models.StatusPending, "bob", models.ErrValidation},
		{"unknown status", models.StatusPending, "postponed", "bob", models.ErrValidation},
		{"outsider forbidden", models.StatusPending, models.StatusAccepted, "mallory", models.ErrForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stored := &models.Session{
				ID:           "sess-1",
				Participants: []string{"alice", "bob"},
				ScheduledBy:  "alice",
				Skill:        "guitar",
				Status:       tt.from,
			}
			sessions := &mockSessionStore{
				getByIDFn: func(_ context.Context, id string) (*models.Session, error) {
					return stored, nil
				},
				updateStatusFn: func(_ context.Context, id, status string, at time.Time) error {
					return nil
				},
			}
			notifs := &mockNotificationStore{}
			svc := NewSessionService(sessions, sessionUsers(), NewNotificationService(notifs))

			session, err := svc.UpdateStatus(context.Background(), tt.actor, "sess-1", tt.to)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("UpdateStatus() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("UpdateStatus() error = %v", err)
			}
			if session.Status != tt.to {
				t.Errorf("status = %s, want %s", session.Status, tt.to)
			}
			if len(notifs.created) != 1 || notifs.created[0].UserID == tt.actor {
				t.Errorf("notifications = %+v, want one for the other participant", notifs.created)
			}
		})
	}
}
