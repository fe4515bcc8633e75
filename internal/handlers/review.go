package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"tradetide-backend/internal/middleware"
	"tradetide-backend/internal/models"
	"tradetide-backend/internal/repository"
	"tradetide-backend/internal/services"

	"github.com/go-chi/chi/v5"
)

// ReviewHandler serves review endpoints.
type ReviewHandler struct {
	reviewService *services.ReviewService
}

// NewReviewHandler creates a new review handler
func NewReviewHandler(reviewService *services.ReviewService) *ReviewHandler {
	return &ReviewHandler{reviewService: reviewService}
}

// Create handles POST /api/reviews
func (h *ReviewHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var input services.CreateReviewInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	review, err := h.reviewService.Create(r.Context(), userID, input)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, review)
}

// ReviewListResponse is the paginated body for GET /api/reviews
type ReviewListResponse struct {
	Reviews    []*models.Review `json:"reviews"`
	Total      int              `json:"total"`
	Page       int              `json:"page"`
	TotalPages int              `json:"totalPages"`
}

// List handles GET /api/reviews
func (h *ReviewHandler) List(w http.ResponseWriter, r *http.Request) {
	page, limit := parsePagination(r)
	q := r.URL.Query()

	filter := repository.ReviewFilter{
		ReviewerID:    q.Get("reviewerId"),
		RevieweeID:    q.Get("revieweeId"),
		Skill:         q.Get("skill"),
		MinRating:     atoiOrZero(q.Get("minRating")),
		MaxRating:     atoiOrZero(q.Get("maxRating")),
		CreatedBefore: q.Get("createdBefore"),
		CreatedAfter:  q.Get("createdAfter"),
		Page:          page,
		Limit:         limit,
	}

	reviews, total, err := h.reviewService.List(r.Context(), filter)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, ReviewListResponse{
		Reviews:    reviews,
		Total:      total,
		Page:       page,
		TotalPages: totalPages(total, limit),
	})
}

// ListForUser handles GET /api/reviews/user/{userId}
func (h *ReviewHandler) ListForUser(w http.ResponseWriter, r *http.Request) {
	revieweeID := chi.URLParam(r, "userId")

	reviews, err := h.reviewService.ListForUser(r.Context(), revieweeID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, reviews)
}

// UpdateReviewRequest is the body for PUT /api/reviews/{id}
type UpdateReviewRequest struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

// Update handles PUT /api/reviews/{id}
func (h *ReviewHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	id := chi.URLParam(r, "id")

	var req UpdateReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	review, err := h.reviewService.Update(r.Context(), userID, id, req.Rating, req.Comment)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, review)
}

// Delete handles DELETE /api/reviews/{id}
func (h *ReviewHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	id := chi.URLParam(r, "id")

	review, err := h.reviewService.Delete(r.Context(), userID, id)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, review)
}

func atoiOrZero(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}
