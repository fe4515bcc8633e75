package handlers

import (
	"net/http"

	"tradetide-backend/internal/repository"
	"tradetide-backend/internal/services"
)

// AuditLogHandler serves the audit trail.
type AuditLogHandler struct {
	auditService *services.AuditService
}

// NewAuditLogHandler creates a new audit log handler
func NewAuditLogHandler(auditService *services.AuditService) *AuditLogHandler {
	return &AuditLogHandler{auditService: auditService}
}

// List handles GET /api/audit-logs
func (h *AuditLogHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	entries, err := h.auditService.List(r.Context(), repository.AuditFilter{
		ActorID: q.Get("actorId"),
		Action:  q.Get("action"),
		Target:  q.Get("target"),
		From:    q.Get("from"),
		To:      q.Get("to"),
	})
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, entries)
}
