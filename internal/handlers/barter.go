package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"tradetide-backend/internal/middleware"
	"tradetide-backend/internal/models"
	"tradetide-backend/internal/services"

	"github.com/go-chi/chi/v5"
)

// BarterHandler serves barter request endpoints.
type BarterHandler struct {
	barterService *services.BarterService
}

// NewBarterHandler creates a new barter handler
func NewBarterHandler(barterService *services.BarterService) *BarterHandler {
	return &BarterHandler{barterService: barterService}
}

// CreateBarterRequest is the body for POST /api/barter-requests
type CreateBarterRequest struct {
	ReceiverID string `json:"receiverId"`
	Skill      string `json:"skill"`
}

// Create handles POST /api/barter-requests
func (h *BarterHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var req CreateBarterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	request, err := h.barterService.Create(r.Context(), userID, req.ReceiverID, req.Skill)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, request)
}

// List handles GET /api/barter-requests
func (h *BarterHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	requests, err := h.barterService.ListForUser(r.Context(), userID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, requests)
}

// Accept handles PUT /api/barter-requests/{id}/accept
func (h *BarterHandler) Accept(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.barterService.Accept)
}

// Decline handles PUT /api/barter-requests/{id}/decline
func (h *BarterHandler) Decline(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.barterService.Decline)
}

// Complete handles PUT /api/barter-requests/{id}/complete
func (h *BarterHandler) Complete(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.barterService.Complete)
}

// Delete handles DELETE /api/barter-requests/{id}
func (h *BarterHandler) Delete(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.barterService.Delete)
}

func (h *BarterHandler) transition(w http.ResponseWriter, r *http.Request, op func(ctx context.Context, actorID, id string) (*models.BarterRequest, error)) {
	userID := middleware.GetUserID(r.Context())
	id := chi.URLParam(r, "id")

	request, err := op(r.Context(), userID, id)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, request)
}
