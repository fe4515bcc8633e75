package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"tradetide-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const userColumns = `id, username, email, password_hash, bio, avatar_url,
	cover_photo_url, social_links, skills_offered, skills_wanted, badges,
	created_at, updated_at`

// UserRepository handles database operations for users
type UserRepository struct {
	db *pgxpool.Pool
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{db: db}
}

func scanUser(row pgx.Row) (*models.User, error) {
	var user models.User
	var socialLinks []byte
	err := row.Scan(
		&user.ID, &user.Username, &user.Email, &user.PasswordHash, &user.Bio,
		&user.AvatarURL, &user.CoverPhotoURL, &socialLinks,
		&user.SkillsOffered, &user.SkillsWanted, &user.Badges,
		&user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(socialLinks) > 0 {
		if err := json.Unmarshal(socialLinks, &user.SocialLinks); err != nil {
			return nil, fmt.Errorf("failed to decode social links: %w", err)
		}
	}
	return &user, nil
}

// Create creates a new user
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	socialLinks, err := json.Marshal(user.SocialLinks)
	if err != nil {
		return fmt.Errorf("failed to encode social links: %w", err)
	}

	query := `
		INSERT INTO users (id, username, email, password_hash, bio, avatar_url,
			cover_photo_url, social_links, skills_offered, skills_wanted, badges,
			created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	_, err = r.db.Exec(ctx, query,
		user.ID, user.Username, user.Email, user.PasswordHash, user.Bio,
		user.AvatarURL, user.CoverPhotoURL, socialLinks,
		user.SkillsOffered, user.SkillsWanted, user.Badges,
		user.CreatedAt, user.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE id = $1`, userColumns)
	user, err := scanUser(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("user %s: %w", id, models.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// GetByEmail retrieves a user by email
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE email = $1`, userColumns)
	user, err := scanUser(r.db.QueryRow(ctx, query, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("user %s: %w", email, models.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return user, nil
}

// EmailExists checks if an email is already registered
func (r *UserRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)`
	var exists bool
	if err := r.db.QueryRow(ctx, query, email).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check email existence: %w", err)
	}
	return exists, nil
}

// Update persists mutable profile fields for a user
func (r *UserRepository) Update(ctx context.Context, user *models.User) error {
	socialLinks, err := json.Marshal(user.SocialLinks)
	if err != nil {
		return fmt.Errorf("failed to encode social links: %w", err)
	}

	query := `
		UPDATE users
		SET username = $1, bio = $2, avatar_url = $3, cover_photo_url = $4,
			social_links = $5, skills_offered = $6, skills_wanted = $7,
			badges = $8, updated_at = $9
		WHERE id = $10
	`
	result, err := r.db.Exec(ctx, query,
		user.Username, user.Bio, user.AvatarURL, user.CoverPhotoURL,
		socialLinks, user.SkillsOffered, user.SkillsWanted, user.Badges,
		user.UpdatedAt, user.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("user %s: %w", user.ID, models.ErrNotFound)
	}
	return nil
}

// GetSummaries retrieves the participant summaries for a set of user IDs.
func (r *UserRepository) GetSummaries(ctx context.Context, ids []string) ([]models.UserSummary, error) {
	query := `SELECT id, username, email FROM users WHERE id = ANY($1)`
	rows, err := r.db.Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to get user summaries: %w", err)
	}
	defer rows.Close()

	var summaries []models.UserSummary
	for rows.Next() {
		var s models.UserSummary
		if err := rows.Scan(&s.ID, &s.Username, &s.Email); err != nil {
			return nil, fmt.Errorf("failed to scan user summary: %w", err)
		}
		summaries = append(summaries, s)
	}
	return summaries, rows.Err()
}

// MarketplaceFilter narrows the marketplace listing by skill sets.
type MarketplaceFilter struct {
	ExcludeUserID string
	SkillsOffered []string
	SkillsWanted  []string
}

// ListMarketplace retrieves users other than the caller, optionally filtered
// by set membership on offered/wanted skill names.
func (r *UserRepository) ListMarketplace(ctx context.Context, filter MarketplaceFilter) ([]*models.User, error) {
	where := []string{"id <> $1"}
	args := []any{filter.ExcludeUserID}

	if len(filter.SkillsOffered) > 0 {
		args = append(args, filter.SkillsOffered)
		where = append(where, fmt.Sprintf("skills_offered && $%d", len(args)))
	}
	if len(filter.SkillsWanted) > 0 {
		args = append(args, filter.SkillsWanted)
		where = append(where, fmt.Sprintf("skills_wanted && $%d", len(args)))
	}

	query := fmt.Sprintf(`SELECT %s FROM users WHERE %s ORDER BY created_at DESC`,
		userColumns, strings.Join(where, " AND "))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list marketplace users: %w", err)
	}
	defer rows.Close()

	return collectUsers(rows)
}

// UserFilter narrows the advanced user listing.
type UserFilter struct {
	Skill         string
	SkillType     string // "offered", "wanted" or "" for both
	Badges        []string
	Name          string
	Email         string
	CreatedBefore string
	CreatedAfter  string
	Page          int
	Limit         int
}

// List retrieves users matching the filter with pagination and returns the
// total match count for page arithmetic.
func (r *UserRepository) List(ctx context.Context, filter UserFilter) ([]*models.User, int, error) {
	where := []string{"TRUE"}
	var args []any

	if filter.Skill != "" {
		args = append(args, filter.Skill)
		n := len(args)
		switch filter.SkillType {
		case "offered":
			where = append(where, fmt.Sprintf("$%d = ANY(skills_offered)", n))
		case "wanted":
			where = append(where, fmt.Sprintf("$%d = ANY(skills_wanted)", n))
		default:
			where = append(where, fmt.Sprintf("($%d = ANY(skills_offered) OR $%d = ANY(skills_wanted))", n, n))
		}
	}
	if len(filter.Badges) > 0 {
		args = append(args, filter.Badges)
		where = append(where, fmt.Sprintf("badges && $%d", len(args)))
	}
	if filter.Name != "" {
		args = append(args, "%"+filter.Name+"%")
		where = append(where, fmt.Sprintf("username ILIKE $%d", len(args)))
	}
	if filter.Email != "" {
		args = append(args, filter.Email)
		where = append(where, fmt.Sprintf("email = $%d", len(args)))
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
	countQuery := fmt.Sprintf(`SELECT count(*) FROM users WHERE %s`, clause)
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count users: %w", err)
	}

	args = append(args, filter.Limit, (filter.Page-1)*filter.Limit)
	query := fmt.Sprintf(`SELECT %s FROM users WHERE %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		userColumns, clause, len(args)-1, len(args))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	users, err := collectUsers(rows)
	if err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

func collectUsers(rows pgx.Rows) ([]*models.User, error) {
	var users []*models.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}
	return users, rows.Err()
}
