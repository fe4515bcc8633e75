package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"tradetide-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ReviewRepository handles database operations for reviews
type ReviewRepository struct {
	db *pgxpool.Pool
}

// NewReviewRepository creates a new review repository
func NewReviewRepository(db *pgxpool.Pool) *ReviewRepository {
	return &ReviewRepository{db: db}
}

func scanReview(row pgx.Row) (*models.Review, error) {
	var review models.Review
	err := row.Scan(&review.ID, &review.ReviewerID, &review.RevieweeID,
		&review.SessionID, &review.Skill, &review.Rating, &review.Comment,
		&review.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &review, nil
}

// Create creates a new review
func (r *ReviewRepository) Create(ctx context.Context, review *models.Review) error {
	query := `
		INSERT INTO reviews (id, reviewer_id, reviewee_id, session_id, skill, rating, comment, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.db.Exec(ctx, query, review.ID, review.ReviewerID,
		review.RevieweeID, review.SessionID, review.Skill, review.Rating,
		review.Comment, review.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create review: %w", err)
	}
	return nil
}

// GetByID retrieves a review by ID
func (r *ReviewRepository) GetByID(ctx context.Context, id string) (*models.Review, error) {
	query := `
		SELECT id, reviewer_id, reviewee_id, session_id, skill, rating, comment, created_at
		FROM reviews
		WHERE id = $1
	`
	review, err := scanReview(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("review %s: %w", id, models.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get review: %w", err)
	}
	return review, nil
}

// ListAll retrieves every review. Used for marketplace rating aggregation.
func (r *ReviewRepository) ListAll(ctx context.Context) ([]*models.Review, error) {
	query := `
		SELECT id, reviewer_id, reviewee_id, session_id, skill, rating, comment, created_at
		FROM reviews
	`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list reviews: %w", err)
	}
	defer rows.Close()

	var reviews []*models.Review
	for rows.Next() {
		review, err := scanReview(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan review: %w", err)
		}
		reviews = append(reviews, review)
	}
	return reviews, rows.Err()
}

// ExistsForSession checks whether the reviewer already reviewed the session.
func (r *ReviewRepository) ExistsForSession(ctx context.Context, reviewerID, sessionID string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM reviews WHERE reviewer_id = $1 AND session_id = $2)`
	var exists bool
	if err := r.db.QueryRow(ctx, query, reviewerID, sessionID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check review existence: %w", err)
	}
	return exists, nil
}

// ReviewFilter narrows the review listing.
type ReviewFilter struct {
	ReviewerID    string
	RevieweeID    string
	Skill         string
	MinRating     int
	MaxRating     int
	CreatedBefore string
	CreatedAfter  string
	Page          int
	Limit         int
}

// List retrieves reviews matching the filter with pagination and the total
// match count.
func (r *ReviewRepository) List(ctx context.Context, filter ReviewFilter) ([]*models.Review, int, error) {
	where := []string{"TRUE"}
	var args []any

	if filter.ReviewerID != "" {
		args = append(args, filter.ReviewerID)
		where = append(where, fmt.Sprintf("reviewer_id = $%d", len(args)))
	}
	if filter.RevieweeID != "" {
		args = append(args, filter.RevieweeID)
		where = append(where, fmt.Sprintf("reviewee_id = $%d", len(args)))
	}
	if filter.Skill != "" {
		args = append(args, filter.Skill)
		where = append(where, fmt.Sprintf("skill = $%d", len(args)))
	}
	if filter.MinRating > 0 {
		args = append(args, filter.MinRating)
		where = append(where, fmt.Sprintf("rating >= $%d", len(args)))
	}
	if filter.MaxRating > 0 {
		args = append(args, filter.MaxRating)
		where = append(where, fmt.Sprintf("rating <= $%d", len(args)))
	}
	if filter.CreatedBefore != "" {
		args = append(args, filter.CreatedBefore)
		where = append(where, fmt.Sprintf("created_at < $%d", len(args)))
	}
	if filter.CreatedAfter != "" {
		args = append(args, filter.CreatedAfter)
		where = append(where, fmt.Sprintf("created_at > $%d", len(args)))
	}

	clause := strings.Join(where, " AND ")

	var total int
	countQuery := fmt.Sprintf(`SELECT count(*) FROM reviews WHERE %s`, clause)
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count reviews: %w", err)
	}

	args = append(args, filter.Limit, (filter.Page-1)*filter.Limit)
	query := fmt.Sprintf(`
		SELECT id, reviewer_id, reviewee_id, session_id, skill, rating, comment, created_at
		FROM reviews
		WHERE %s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d
	`, clause, len(args)-1, len(args))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list reviews: %w", err)
	}
	defer rows.Close()

	reviews, err := collectReviews(rows)
	if err != nil {
		return nil, 0, err
	}
	return reviews, total, nil
}

// ListByReviewee retrieves reviews about a user, newest first.
func (r *ReviewRepository) ListByReviewee(ctx context.Context, revieweeID string) ([]*models.Review, error) {
	query := `
		SELECT id, reviewer_id, reviewee_id, session_id, skill, rating, comment, created_at
		FROM reviews
		WHERE reviewee_id = $1
		ORDER BY created_at DESC
	`
	rows, err := r.db.Query(ctx, query, revieweeID)
	if err != nil {
		return nil, fmt.Errorf("failed to list reviews for user: %w", err)
	}
	defer rows.Close()

	return collectReviews(rows)
}

// Update persists the mutable fields of a review
func (r *ReviewRepository) Update(ctx context.Context, review *models.Review) error {
	query := `UPDATE reviews SET rating = $1, comment = $2 WHERE id = $3`
	result, err := r.db.Exec(ctx, query, review.Rating, review.Comment, review.ID)
	if err != nil {
		return fmt.Errorf("failed to update review: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("review %s: %w", review.ID, models.ErrNotFound)
	}
	return nil
}

// Delete deletes a review by ID
func (r *ReviewRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM reviews WHERE id = $1`
	result, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete review: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("review %s: %w", id, models.ErrNotFound)
	}
	return nil
}

func collectReviews(rows pgx.Rows) ([]*models.Review, error) {
	var reviews []*models.Review
	for rows.Next() {
		review, err := scanReview(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan review: %w", err)
		}
		reviews = append(reviews, review)
	}
	return reviews, rows.Err()
}
