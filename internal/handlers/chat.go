package handlers

import (
	"encoding/json"
	"net/http"

	"tradetide-backend/internal/metrics"
	"tradetide-backend/internal/middleware"
	"tradetide-backend/internal/models"
	"tradetide-backend/internal/services"

	"github.com/go-chi/chi/v5"
)

// ChatHandler serves the chat REST surface. Writes go through ChatService so
// REST and relay clients share the same persistence and broadcast path.
type ChatHandler struct {
	chatService *services.ChatService
	collector   *metrics.Collector
}

// NewChatHandler creates a new chat handler
func NewChatHandler(chatService *services.ChatService, collector *metrics.Collector) *ChatHandler {
	return &ChatHandler{chatService: chatService, collector: collector}
}

// CreateChatRequest is the body for POST /api/chat/chats
type CreateChatRequest struct {
	ParticipantID string `json:"participantId"`
}

// CreateChat handles POST /api/chat/chats. Creation is idempotent: an
// existing chat for the pair is returned with 200, a fresh one with 201.
func (h *ChatHandler) CreateChat(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var req CreateChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	chat, created, err := h.chatService.GetOrCreate(r.Context(), userID, req.ParticipantID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	respondJSON(w, status, chat)
}

// ListChats handles GET /api/chat/chats
func (h *ChatHandler) ListChats(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	chats, err := h.chatService.ListForUser(r.Context(), userID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, chats)
}

// ChatDetailResponse is the body for GET /api/chat/chats/{chatId}
type ChatDetailResponse struct {
	Chat     *models.Chat      `json:"chat"`
	Messages []*models.Message `json:"messages"`
}

// GetChat handles GET /api/chat/chats/{chatId}. Opening a chat marks the
// counterparty's messages as read.
func (h *ChatHandler) GetChat(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	chatID := chi.URLParam(r, "chatId")

	chat, messages, err := h.chatService.GetWithMessages(r.Context(), userID, chatID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, ChatDetailResponse{Chat: chat, Messages: messages})
}

// SendMessageRequest is the body for POST /api/chat/messages
type SendMessageRequest struct {
	ChatID  string `json:"chatId"`
	Content string `json:"content"`
}

// SendMessage handles POST /api/chat/messages
func (h *ChatHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var req SendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	message, err := h.chatService.SendMessage(r.Context(), userID, req.ChatID, req.Content)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	h.collector.RecordMessageSent()
	respondJSON(w, http.StatusCreated, message)
}

// UnreadCountResponse is the body for GET /api/chat/messages/unread
type UnreadCountResponse struct {
	UnreadCount int `json:"unreadCount"`
}

// UnreadCount handles GET /api/chat/messages/unread
func (h *ChatHandler) UnreadCount(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	count, err := h.chatService.UnreadCount(r.Context(), userID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, UnreadCountResponse{UnreadCount: count})
}
