package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"tradetide-backend/internal/models"
	"tradetide-backend/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// UserService handles registration, login, token issuance and profiles.
type UserService struct {
	userRepo   UserStore
	jwtSecret  string
	tokenTTL   time.Duration
	demoToken  string
	demoUserID string
}

// NewUserService creates a new user service
func NewUserService(userRepo UserStore, jwtSecret string, expiryDays int, demoToken, demoUserID string) *UserService {
	return &UserService{
		userRepo:   userRepo,
		jwtSecret:  jwtSecret,
		tokenTTL:   time.Duration(expiryDays) * 24 * time.Hour,
		demoToken:  demoToken,
		demoUserID: demoUserID,
	}
}

// Register creates a new user with a hashed password and returns the user
// together with a signed token.
func (s *UserService) Register(ctx context.Context, username, email, password string) (*models.User, string, error) {
	username = strings.TrimSpace(username)
	email = strings.ToLower(strings.TrimSpace(email))
	if username == "" || email == "" || password == "" {
		return nil, "", fmt.Errorf("username, email and password are required: %w", models.ErrValidation)
	}

	exists, err := s.userRepo.EmailExists(ctx, email)
	if err != nil {
		return nil, "", fmt.Errorf("failed to check email: %w", err)
	}
	if exists {
		return nil, "", fmt.Errorf("email already in use: %w", models.ErrConflict)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now()
	user := &models.User{
		ID:            uuid.New().String(),
		Username:      username,
		Email:         email,
		PasswordHash:  string(hash),
		SkillsOffered: []string{},
		SkillsWanted:  []string{},
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, "", fmt.Errorf("failed to create user: %w", err)
	}

	token, err := s.GenerateJWT(user.ID)
	if err != nil {
		return nil, "", err
	}

	return user, token, nil
}

// Login verifies credentials and returns the user and a signed token.
func (s *UserService) Login(ctx context.Context, email, password string) (*models.User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, "", fmt.Errorf("email and password are required: %w", models.ErrValidation)
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		// Do not reveal whether the email exists.
		return nil, "", fmt.Errorf("invalid credentials: %w", models.ErrForbidden)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, "", fmt.Errorf("invalid credentials: %w", models.ErrForbidden)
	}

	token, err := s.GenerateJWT(user.ID)
	if err != nil {
		return nil, "", err
	}

	return user, token, nil
}

// GenerateJWT generates a signed, time-limited token embedding the user ID
func (s *UserService) GenerateJWT(userID string) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"user_id": userID,
		"exp":     now.Add(s.tokenTTL).Unix(),
		"iat":     now.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return tokenString, nil
}

// ValidateJWT validates a bearer token and returns the user ID. The
// configured demo token resolves to the demo user without verification.
func (s *UserService) ValidateJWT(tokenString string) (string, error) {
	if s.demoToken != "" && tokenString == s.demoToken {
		return s.demoUserID, nil
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.jwtSecret), nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to parse token: %w", err)
	}
	if !token.Valid {
		return "", fmt.Errorf("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", fmt.Errorf("invalid token claims")
	}
	userID, ok := claims["user_id"].(string)
	if !ok {
		return "", fmt.Errorf("user_id not found in token")
	}

	return userID, nil
}

// GetByID retrieves a user by ID
func (s *UserService) GetByID(ctx context.Context, id string) (*models.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

// ProfileUpdate carries the mutable profile fields.
type ProfileUpdate struct {
	Username      *string             `json:"username"`
	Bio           *string             `json:"bio"`
	AvatarURL     *string             `json:"avatarUrl"`
	CoverPhotoURL *string             `json:"coverPhotoUrl"`
	SocialLinks   []models.SocialLink `json:"socialLinks"`
	SkillsOffered []string            `json:"skillsOffered"`
	SkillsWanted  []string            `json:"skillsWanted"`
	Badges        []string            `json:"badges"`
}

// UpdateProfile applies the provided fields to the user's profile. Nil
// pointers and nil slices leave the current value unchanged.
func (s *UserService) UpdateProfile(ctx context.Context, userID string, update ProfileUpdate) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if update.Username != nil {
		if strings.TrimSpace(*update.Username) == "" {
			return nil, fmt.Errorf("username cannot be empty: %w", models.ErrValidation)
		}
		user.Username = strings.TrimSpace(*update.Username)
	}
	if update.Bio != nil {
		user.Bio = *update.Bio
	}
	if update.AvatarURL != nil {
		user.AvatarURL = *update.AvatarURL
	}
	if update.CoverPhotoURL != nil {
		user.CoverPhotoURL = *update.CoverPhotoURL
	}
	if update.SocialLinks != nil {
		user.SocialLinks = update.SocialLinks
	}
	if update.SkillsOffered != nil {
		user.SkillsOffered = dedupe(update.SkillsOffered)
	}
	if update.SkillsWanted != nil {
		user.SkillsWanted = dedupe(update.SkillsWanted)
	}
	if update.Badges != nil {
		user.Badges = update.Badges
	}
	user.UpdatedAt = time.Now()

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// ListMarketplace retrieves every user except the caller, optionally
// filtered by offered/wanted skill names.
func (s *UserService) ListMarketplace(ctx context.Context, userID string, skillsOffered, skillsWanted []string) ([]*models.User, error) {
	return s.userRepo.ListMarketplace(ctx, repository.MarketplaceFilter{
		ExcludeUserID: userID,
		SkillsOffered: skillsOffered,
		SkillsWanted:  skillsWanted,
	})
}

// ListUsers retrieves users matching the advanced filter with pagination.
func (s *UserService) ListUsers(ctx context.Context, filter repository.UserFilter) ([]*models.User, int, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 10
	}
	if filter.Limit > 100 {
		filter.Limit = 100
	}
	return s.userRepo.List(ctx, filter)
}

// dedupe removes duplicate skill names, trimming whitespace, preserving
// first-seen order.
func dedupe(skills []string) []string {
	seen := make(map[string]struct{}, len(skills))
	out := make([]string, 0, len(skills))
	for _, s := range skills {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
