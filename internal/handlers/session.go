package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"tradetide-backend/internal/middleware"
	"tradetide-backend/internal/services"

	"github.com/go-chi/chi/v5"
)

// SessionHandler serves skill-exchange session endpoints.
type SessionHandler struct {
	sessionService *services.SessionService
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(sessionService *services.SessionService) *SessionHandler {
	return &SessionHandler{sessionService: sessionService}
}

// CreateSessionRequest is the body for POST /api/sessions
type CreateSessionRequest struct {
	PartnerID string    `json:"partnerId"`
	Date      time.Time `json:"date"`
	Skill     string    `json:"skill"`
}

// Create handles POST /api/sessions
func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var req CreateSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	session, err := h.sessionService.Create(r.Context(), userID, req.PartnerID, req.Date, req.Skill)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, session)
}

// List handles GET /api/sessions
func (h *SessionHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	sessions, err := h.sessionService.ListForUser(r.Context(), userID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, sessions)
}

// UpdateSessionStatusRequest is the body for PUT /api/sessions/{id}/status
type UpdateSessionStatusRequest struct {
	Status string `json:"status"`
}

// UpdateStatus handles PUT /api/sessions/{id}/status
func (h *SessionHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	id := chi.URLParam(r, "id")

	var req UpdateSessionStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	session, err := h.sessionService.UpdateStatus(r.Context(), userID, id, req.Status)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, session)
}
