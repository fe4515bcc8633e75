package services

import (
	"context"
	"fmt"
	"time"

	"tradetide-backend/internal/models"
	"tradetide-backend/internal/repository"

	"github.com/google/uuid"
)

// ReviewService handles reviews and their audit side effects.
type ReviewService struct {
	reviewRepo ReviewStore
	userRepo   UserStore
	notifier   *NotificationService
	audit      *AuditService
}

// NewReviewService creates a new review service
func NewReviewService(reviewRepo ReviewStore, userRepo UserStore, notifier *NotificationService, audit *AuditService) *ReviewService {
	return &ReviewService{
		reviewRepo: reviewRepo,
		userRepo:   userRepo,
		notifier:   notifier,
		audit:      audit,
	}
}

// CreateReviewInput carries the fields of a new review.
type CreateReviewInput struct {
	RevieweeID string `json:"revieweeId"`
	SessionID  string `json:"sessionId"`
	Skill      string `json:"skill"`
	Rating     int    `json:"rating"`
	Comment    string `json:"comment"`
}

// Create creates a review authored by reviewerID. One review per
// (reviewer, session) pair.
func (s *ReviewService) Create(ctx context.Context, reviewerID string, input CreateReviewInput) (*models.Review, error) {
	if input.RevieweeID == "" || input.SessionID == "" || input.Skill == "" || input.Comment == "" {
		return nil, fmt.Errorf("revieweeId, sessionId, skill and comment are required: %w", models.ErrValidation)
	}
	if input.Rating < 1 || input.Rating > 5 {
		return nil, fmt.Errorf("rating must be between 1 and 5: %w", models.ErrValidation)
	}
	if input.RevieweeID == reviewerID {
		return nil, fmt.Errorf("cannot review yourself: %w", models.ErrValidation)
	}

	reviewer, err := s.userRepo.GetByID(ctx, reviewerID)
	if err != nil {
		return nil, err
	}

	exists, err := s.reviewRepo.ExistsForSession(ctx, reviewerID, input.SessionID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("session already reviewed: %w", models.ErrConflict)
	}

	review := &models.Review{
		ID:         uuid.New().String(),
		ReviewerID: reviewerID,
		RevieweeID: input.RevieweeID,
		SessionID:  input.SessionID,
		Skill:      input.Skill,
		Rating:     input.Rating,
		Comment:    input.Comment,
		CreatedAt:  time.Now(),
	}
	if err := s.reviewRepo.Create(ctx, review); err != nil {
		return nil, err
	}

	s.notifier.Notify(ctx, input.RevieweeID, models.NotificationReview,
		fmt.Sprintf("%s left you a %d-star review for %s", reviewer.Username, input.Rating, input.Skill))
	s.audit.Record(ctx, reviewerID, "review_created", review.ID, review)

	return review, nil
}

// List retrieves reviews matching the filter with pagination.
func (s *ReviewService) List(ctx context.Context, filter repository.ReviewFilter) ([]*models.Review, int, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 10
	}
	if filter.Limit > 100 {
		filter.Limit = 100
	}
	return s.reviewRepo.List(ctx, filter)
}

// All retrieves every review. The marketplace uses it for rating sorts.
func (s *ReviewService) All(ctx context.Context) ([]*models.Review, error) {
	return s.reviewRepo.ListAll(ctx)
}

// ListForUser retrieves the reviews about a user.
func (s *ReviewService) ListForUser(ctx context.Context, revieweeID string) ([]*models.Review, error) {
	return s.reviewRepo.ListByReviewee(ctx, revieweeID)
}

// Update changes the rating and comment of a review. Author only.
func (s *ReviewService) Update(ctx context.Context, actorID, id string, rating int, comment string) (*models.Review, error) {
	if rating < 1 || rating > 5 {
		return nil, fmt.Errorf("rating must be between 1 and 5: %w", models.ErrValidation)
	}

	review, err := s.reviewRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if review.ReviewerID != actorID {
		return nil, fmt.Errorf("only the author may update a review: %w", models.ErrForbidden)
	}

	review.Rating = rating
	if comment != "" {
		review.Comment = comment
	}
	if err := s.reviewRepo.Update(ctx, review); err != nil {
		return nil, err
	}

	s.audit.Record(ctx, actorID, "review_updated", review.ID, review)
	return review, nil
}

// Delete deletes a review. Author only.
func (s *ReviewService) Delete(ctx context.Context, actorID, id string) (*models.Review, error) {
	review, err := s.reviewRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if review.ReviewerID != actorID {
		return nil, fmt.Errorf("only the author may delete a review: %w", models.ErrForbidden)
	}
	if err := s.reviewRepo.Delete(ctx, id); err != nil {
		return nil, err
	}

	s.audit.Record(ctx, actorID, "review_deleted", review.ID, review)
	return review, nil
}
