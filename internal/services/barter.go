package services

import (
	"context"
	"fmt"
	"time"

	"tradetide-backend/internal/models"

	"github.com/google/uuid"
)

// BarterService handles the barter request lifecycle and its notification
// and audit side effects.
type BarterService struct {
	barterRepo BarterStore
	userRepo   UserStore
	notifier   *NotificationService
	audit      *AuditService
}

// NewBarterService creates a new barter service
func NewBarterService(barterRepo BarterStore, userRepo UserStore, notifier *NotificationService, audit *AuditService) *BarterService {
	return &BarterService{
		barterRepo: barterRepo,
		userRepo:   userRepo,
		notifier:   notifier,
		audit:      audit,
	}
}

// Create creates a pending barter request from the caller to receiverID and
// notifies the receiver.
func (s *BarterService) Create(ctx context.Context, senderID, receiverID, skill string) (*models.BarterRequest, error) {
	if receiverID == "" || skill == "" {
		return nil, fmt.Errorf("receiverId and skill are required: %w", models.ErrValidation)
	}
	if receiverID == senderID {
		return nil, fmt.Errorf("cannot send a barter request to yourself: %w", models.ErrValidation)
	}

	sender, err := s.userRepo.GetByID(ctx, senderID)
	if err != nil {
		return nil, err
	}
	if _, err := s.userRepo.GetByID(ctx, receiverID); err != nil {
		return nil, err
	}

	now := time.Now()
	req := &models.BarterRequest{
		ID:         uuid.New().String(),
		SenderID:   senderID,
		ReceiverID: receiverID,
		Skill:      skill,
		Status:     models.StatusPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.barterRepo.Create(ctx, req); err != nil {
		return nil, err
	}

	s.notifier.Notify(ctx, receiverID, models.NotificationBarter,
		fmt.Sprintf("You received a new barter request from %s", sender.Username))
	s.audit.Record(ctx, senderID, "barter_created", req.ID, req)

	return req, nil
}

// ListForUser retrieves incoming and outgoing requests for a user.
func (s *BarterService) ListForUser(ctx context.Context, userID string) ([]*models.BarterRequest, error) {
	return s.barterRepo.ListByUser(ctx, userID)
}

// Accept transitions a pending request to accepted. Only the receiver may
// accept.
func (s *BarterService) Accept(ctx context.Context, actorID, id string) (*models.BarterRequest, error) {
	return s.transition(ctx, actorID, id, models.StatusAccepted, "barter_accepted", "accepted")
}

// Decline transitions a pending request to declined. Only the receiver may
// decline.
func (s *BarterService) Decline(ctx context.Context, actorID, id string) (*models.BarterRequest, error) {
	return s.transition(ctx, actorID, id, models.StatusDeclined, "barter_declined", "declined")
}

// Complete transitions an accepted request to completed. Either participant
// may complete.
func (s *BarterService) Complete(ctx context.Context, actorID, id string) (*models.BarterRequest, error) {
	return s.transition(ctx, actorID, id, models.StatusCompleted, "barter_completed", "marked as completed")
}

// Delete deletes a barter request. Only the sender may delete.
func (s *BarterService) Delete(ctx context.Context, actorID, id string) (*models.BarterRequest, error) {
	req, err := s.barterRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.SenderID != actorID {
		return nil, fmt.Errorf("only the sender may delete a barter request: %w", models.ErrForbidden)
	}
	if err := s.barterRepo.Delete(ctx, id); err != nil {
		return nil, err
	}

	s.audit.Record(ctx, actorID, "barter_deleted", req.ID, req)
	return req, nil
}

func (s *BarterService) transition(ctx context.Context, actorID, id, status, auditAction, verb string) (*models.BarterRequest, error) {
	req, err := s.barterRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	switch status {
	case models.StatusAccepted, models.StatusDeclined:
		if req.ReceiverID != actorID {
			return nil, fmt.Errorf("only the receiver may %s a barter request: %w", verb, models.ErrForbidden)
		}
		if req.Status != models.StatusPending {
			return nil, fmt.Errorf("barter request is already %s: %w", req.Status, models.ErrConflict)
		}
	case models.StatusCompleted:
		if req.SenderID != actorID && req.ReceiverID != actorID {
			return nil, fmt.Errorf("only a participant may complete a barter request: %w", models.ErrForbidden)
		}
		if req.Status != models.StatusAccepted {
			return nil, fmt.Errorf("only an accepted barter request can be completed: %w", models.ErrConflict)
		}
	}

	now := time.Now()
	if err := s.barterRepo.UpdateStatus(ctx, id, status, now); err != nil {
		return nil, err
	}
	req.Status = status
	req.UpdatedAt = now

	// The sender initiated the trade, so they are the one to tell. When the
	// sender completes, tell the receiver instead.
	counterparty := req.SenderID
	if counterparty == actorID {
		counterparty = req.ReceiverID
	}
	s.notifier.Notify(ctx, counterparty, models.NotificationBarter,
		fmt.Sprintf("Your barter request for %s was %s", req.Skill, verb))
	s.audit.Record(ctx, actorID, auditAction, req.ID, req)

	return req, nil
}
