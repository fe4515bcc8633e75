package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"tradetide-backend/internal/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// ChatService owns chat persistence and real-time delivery. REST handlers
// and the websocket relay both go through these methods, so the stored state
// and the live events cannot diverge.
type ChatService struct {
	chatRepo    ChatStore
	messageRepo MessageStore
	userRepo    UserStore
	notifier    *NotificationService
	broadcaster Broadcaster
}

// NewChatService creates a new chat service
func NewChatService(chatRepo ChatStore, messageRepo MessageStore, userRepo UserStore, notifier *NotificationService, broadcaster Broadcaster) *ChatService {
	return &ChatService{
		chatRepo:    chatRepo,
		messageRepo: messageRepo,
		userRepo:    userRepo,
		notifier:    notifier,
		broadcaster: broadcaster,
	}
}

// GetOrCreate returns the chat between the caller and participantID,
// creating it on first contact. Idempotent: the same pair always resolves to
// the same chat. The created flag tells the handler whether to answer 200 or
// 201.
func (s *ChatService) GetOrCreate(ctx context.Context, userID, participantID string) (*models.Chat, bool, error) {
	if participantID == "" {
		return nil, false, fmt.Errorf("participantId is required: %w", models.ErrValidation)
	}
	if participantID == userID {
		return nil, false, fmt.Errorf("cannot start a chat with yourself: %w", models.ErrValidation)
	}

	// The other participant must exist.
	if _, err := s.userRepo.GetByID(ctx, participantID); err != nil {
		return nil, false, err
	}

	a, b := sortPair(userID, participantID)
	existing, err := s.chatRepo.GetByParticipants(ctx, a, b)
	if err == nil {
		s.attachUsers(ctx, existing)
		return existing, false, nil
	}

	now := time.Now()
	chat := &models.Chat{
		ID:           uuid.New().String(),
		Participants: []string{a, b},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.chatRepo.Create(ctx, chat); err != nil {
		return nil, false, err
	}
	s.attachUsers(ctx, chat)

	s.broadcaster.EmitToUser(participantID, EventNewChat, chat)

	return chat, true, nil
}

// ListForUser retrieves the caller's chats with participant summaries.
func (s *ChatService) ListForUser(ctx context.Context, userID string) ([]*models.Chat, error) {
	chats, err := s.chatRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	for _, chat := range chats {
		s.attachUsers(ctx, chat)
	}
	return chats, nil
}

// GetWithMessages retrieves a chat and its messages oldest-first, marking
// everything not authored by the caller as read. Other participants receive
// a messages_read event. A caller who is not a participant gets not-found.
func (s *ChatService) GetWithMessages(ctx context.Context, userID, chatID string) (*models.Chat, []*models.Message, error) {
	chat, err := s.participantChat(ctx, userID, chatID)
	if err != nil {
		return nil, nil, err
	}
	s.attachUsers(ctx, chat)

	messages, err := s.messageRepo.ListByChat(ctx, chatID)
	if err != nil {
		return nil, nil, err
	}

	if err := s.markRead(ctx, userID, chatID); err != nil {
		// Reading the chat still succeeds; the receipt is retried on the
		// next open.
		log.Error().Err(err).Str("chat_id", chatID).Msg("Failed to mark messages read")
	}

	return chat, messages, nil
}

// SendMessage validates, persists and broadcasts a message. The message goes
// to the chat room, and every other participant additionally receives a
// chat_notification on their user room so clients that have not joined the
// chat room still learn about it.
func (s *ChatService) SendMessage(ctx context.Context, senderID, chatID, content string) (*models.Message, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, fmt.Errorf("message content cannot be empty: %w", models.ErrValidation)
	}
	if chatID == "" {
		return nil, fmt.Errorf("chatId is required: %w", models.ErrValidation)
	}

	chat, err := s.participantChat(ctx, senderID, chatID)
	if err != nil {
		return nil, err
	}

	sender, err := s.userRepo.GetByID(ctx, senderID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	summary := sender.Summary()
	msg := &models.Message{
		ID:        uuid.New().String(),
		ChatID:    chatID,
		SenderID:  senderID,
		Sender:    &summary,
		Content:   content,
		Read:      false,
		CreatedAt: now,
	}
	if err := s.messageRepo.Create(ctx, msg); err != nil {
		return nil, err
	}

	if err := s.chatRepo.Touch(ctx, chatID, now); err != nil {
		log.Error().Err(err).Str("chat_id", chatID).Msg("Failed to bump chat activity")
	}

	s.broadcaster.EmitToChat(chatID, EventNewMessage, msg)
	for _, participantID := range chat.OtherParticipants(senderID) {
		s.broadcaster.EmitToUser(participantID, EventChatNotification, map[string]any{
			"chatId":  chatID,
			"message": msg,
		})
		s.notifier.Notify(ctx, participantID, models.NotificationChat,
			fmt.Sprintf("New message from %s", sender.Username))
	}

	return msg, nil
}

// MarkRead marks every message in the chat not authored by the caller as
// read and notifies the other chat-room members.
func (s *ChatService) MarkRead(ctx context.Context, userID, chatID string) error {
	if _, err := s.participantChat(ctx, userID, chatID); err != nil {
		return err
	}
	return s.markRead(ctx, userID, chatID)
}

// UnreadCount counts unread messages addressed to the caller across all
// their chats.
func (s *ChatService) UnreadCount(ctx context.Context, userID string) (int, error) {
	return s.messageRepo.CountUnreadForUser(ctx, userID)
}

// Typing broadcasts a stateless typing indicator to the chat room,
// excluding the typist. Nothing is persisted.
func (s *ChatService) Typing(userID, chatID string, isTyping bool) {
	s.broadcaster.EmitToChatExcept(chatID, userID, EventUserTyping, map[string]any{
		"userId":   userID,
		"isTyping": isTyping,
	})
}

func (s *ChatService) markRead(ctx context.Context, userID, chatID string) error {
	if _, err := s.messageRepo.MarkRead(ctx, chatID, userID); err != nil {
		return err
	}
	s.broadcaster.EmitToChatExcept(chatID, userID, EventMessagesRead, map[string]any{
		"chatId": chatID,
		"userId": userID,
	})
	return nil
}

// participantChat loads a chat and verifies membership. Non-participants get
// not-found rather than forbidden so chat existence is not revealed.
func (s *ChatService) participantChat(ctx context.Context, userID, chatID string) (*models.Chat, error) {
	chat, err := s.chatRepo.GetByID(ctx, chatID)
	if err != nil {
		return nil, err
	}
	if !chat.HasParticipant(userID) {
		return nil, fmt.Errorf("chat %s: %w", chatID, models.ErrNotFound)
	}
	return chat, nil
}

func (s *ChatService) attachUsers(ctx context.Context, chat *models.Chat) {
	summaries, err := s.userRepo.GetSummaries(ctx, chat.Participants)
	if err != nil {
		log.Error().Err(err).Str("chat_id", chat.ID).Msg("Failed to load chat participants")
		return
	}
	chat.Users = summaries
}

func sortPair(a, b string) (string, string) {
	if a > b {
		return b, a
	}
	return a, b
}
