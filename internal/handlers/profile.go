package handlers

import (
	"encoding/json"
	"net/http"

	"tradetide-backend/internal/middleware"
	"tradetide-backend/internal/services"

	"github.com/rs/zerolog/log"
)

// ProfileHandler handles the current user's profile.
type ProfileHandler struct {
	userService   *services.UserService
	uploadService *services.UploadService
}

// NewProfileHandler creates a new profile handler
func NewProfileHandler(userService *services.UserService, uploadService *services.UploadService) *ProfileHandler {
	return &ProfileHandler{
		userService:   userService,
		uploadService: uploadService,
	}
}

// Get handles GET /api/profile
func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	user, err := h.userService.GetByID(r.Context(), userID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, user)
}

// Update handles PUT /api/profile
func (h *ProfileHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var update services.ProfileUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	user, err := h.userService.UpdateProfile(r.Context(), userID, update)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	log.Info().Str("user_id", userID).Msg("Profile updated")
	respondJSON(w, http.StatusOK, user)
}

// UploadRequest is the body for POST /api/profile/uploads
type UploadRequest struct {
	Kind        string `json:"kind"`
	ContentType string `json:"contentType"`
}

// PresignUpload handles POST /api/profile/uploads. It returns a pre-signed
// S3 PUT URL; the client uploads the image and then saves the public URL via
// PUT /api/profile.
func (h *ProfileHandler) PresignUpload(w http.ResponseWriter, r *http.Request) {
	if h.uploadService == nil {
		respondError(w, "Uploads are not configured", http.StatusNotImplemented)
		return
	}

	userID := middleware.GetUserID(r.Context())

	var req UploadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	ticket, err := h.uploadService.PresignImage(r.Context(), userID, req.Kind, req.ContentType)
	if err != nil {
		respondError(w, err.Error(), http.StatusBadRequest)
		return
	}

	respondJSON(w, http.StatusOK, ticket)
}
