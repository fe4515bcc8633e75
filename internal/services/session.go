package services

import (
	"context"
	"fmt"
	"time"

	"tradetide-backend/internal/models"

	"github.com/google/uuid"
)

// SessionService handles scheduling of skill-trade sessions.
type SessionService struct {
	sessionRepo SessionStore
	userRepo    UserStore
	notifier    *NotificationService
}

// NewSessionService creates a new session service
func NewSessionService(sessionRepo SessionStore, userRepo UserStore, notifier *NotificationService) *SessionService {
	return &SessionService{
		sessionRepo: sessionRepo,
		userRepo:    userRepo,
		notifier:    notifier,
	}
}

// Create proposes a session between the caller and partnerID. The proposal
// starts pending; the partner is notified.
func (s *SessionService) Create(ctx context.Context, proposerID, partnerID string, date time.Time, skill string) (*models.Session, error) {
	if partnerID == "" || skill == "" || date.IsZero() {
		return nil, fmt.Errorf("partnerId, date and skill are required: %w", models.ErrValidation)
	}
	if partnerID == proposerID {
		return nil, fmt.Errorf("cannot schedule a session with yourself: %w", models.ErrValidation)
	}

	proposer, err := s.userRepo.GetByID(ctx, proposerID)
	if err != nil {
		return nil, err
	}
	if _, err := s.userRepo.GetByID(ctx, partnerID); err != nil {
		return nil, err
	}

	now := time.Now()
	session := &models.Session{
		ID:           uuid.New().String(),
		Participants: []string{proposerID, partnerID},
		ScheduledBy:  proposerID,
		Date:         date,
		Skill:        skill,
		Status:       models.StatusPending,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, err
	}

	s.notifier.Notify(ctx, partnerID, models.NotificationSession,
		fmt.Sprintf("%s proposed a %s session on %s", proposer.Username, skill, date.Format("Jan 2, 2006")))

	return session, nil
}

// ListForUser retrieves sessions the user participates in.
func (s *SessionService) ListForUser(ctx context.Context, userID string) ([]*models.Session, error) {
	return s.sessionRepo.ListByUser(ctx, userID)
}

// UpdateStatus advances a session's lifecycle. Either participant may act.
// Valid transitions: pending to accepted or declined, accepted to completed.
func (s *SessionService) UpdateStatus(ctx context.Context, actorID, id, status string) (*models.Session, error) {
	if !models.ValidStatus(status) || status == models.StatusPending {
		return nil, fmt.Errorf("invalid session status %q: %w", status, models.ErrValidation)
	}

	session, err := s.sessionRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !session.HasParticipant(actorID) {
		return nil, fmt.Errorf("only a participant may update a session: %w", models.ErrForbidden)
	}

	valid := (session.Status == models.StatusPending && (status == models.StatusAccepted || status == models.StatusDeclined)) ||
		(session.Status == models.StatusAccepted && status == models.StatusCompleted)
	if !valid {
		return nil, fmt.Errorf("cannot move session from %s to %s: %w", session.Status, status, models.ErrConflict)
	}

	now := time.Now()
	if err := s.sessionRepo.UpdateStatus(ctx, id, status, now); err != nil {
		return nil, err
	}
	session.Status = status
	session.UpdatedAt = now

	for _, participantID := range session.Participants {
		if participantID != actorID {
			s.notifier.Notify(ctx, participantID, models.NotificationSession,
				fmt.Sprintf("Your %s session was %s", session.Skill, status))
		}
	}

	return session, nil
}
