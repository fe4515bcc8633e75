package handlers

import (
	"net/http"

	"tradetide-backend/internal/match"
	"tradetide-backend/internal/middleware"
	"tradetide-backend/internal/models"
	"tradetide-backend/internal/repository"
	"tradetide-backend/internal/services"

	"github.com/go-chi/chi/v5"
)

// MarketplaceHandler serves user discovery endpoints.
type MarketplaceHandler struct {
	userService   *services.UserService
	reviewService *services.ReviewService
}

// NewMarketplaceHandler creates a new marketplace handler
func NewMarketplaceHandler(userService *services.UserService, reviewService *services.ReviewService) *MarketplaceHandler {
	return &MarketplaceHandler{userService: userService, reviewService: reviewService}
}

// Browse handles GET /api/marketplace/users. Mutual matches come first, both
// partitions ordered by the requested sort.
func (h *MarketplaceHandler) Browse(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	q := r.URL.Query()

	users, err := h.userService.ListMarketplace(r.Context(), userID,
		splitCSV(q.Get("skillsOffered")),
		splitCSV(q.Get("skillsWanted")))
	if err != nil {
		respondServiceError(w, err)
		return
	}

	me, err := h.userService.GetByID(r.Context(), userID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	order := match.SortOrder(q.Get("sortBy"))
	var ratings map[string]float64
	if order == match.SortByRating {
		reviews, err := h.reviewService.All(r.Context())
		if err != nil {
			respondServiceError(w, err)
			return
		}
		ratings = make(map[string]float64)
		for id, agg := range match.AggregateRatings(reviews) {
			ratings[id] = agg.Average
		}
	}

	matches, others := match.MutualMatches(me, users)
	match.Sort(matches, order, me, ratings)
	match.Sort(others, order, me, ratings)

	result := append(matches, others...)
	if result == nil {
		result = []*models.User{}
	}
	respondJSON(w, http.StatusOK, result)
}

// UserListResponse is the paginated body for GET /api/users
type UserListResponse struct {
	Users      []*models.User `json:"users"`
	Total      int            `json:"total"`
	Page       int            `json:"page"`
	TotalPages int            `json:"totalPages"`
}

// List handles GET /api/users
func (h *MarketplaceHandler) List(w http.ResponseWriter, r *http.Request) {
	page, limit := parsePagination(r)
	q := r.URL.Query()

	filter := repository.UserFilter{
		Skill:         q.Get("skill"),
		SkillType:     q.Get("skillType"),
		Badges:        splitCSV(q.Get("badges")),
		Name:          q.Get("name"),
		Email:         q.Get("email"),
		CreatedBefore: q.Get("createdBefore"),
		CreatedAfter:  q.Get("createdAfter"),
		Page:          page,
		Limit:         limit,
	}

	users, total, err := h.userService.ListUsers(r.Context(), filter)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, UserListResponse{
		Users:      users,
		Total:      total,
		Page:       page,
		TotalPages: totalPages(total, limit),
	})
}

// GetUser handles GET /api/users/{id}
func (h *MarketplaceHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	user, err := h.userService.GetByID(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, user)
}
