package services

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"tradetide-backend/internal/models"
)

func chatFixtures() (*mockUserStore, *mockChatStore, *mockMessageStore, *mockBroadcaster, *mockNotificationStore) {
	users := &mockUserStore{
		getByIDFn: func(_ context.Context, id string) (*models.User, error) {
			switch id {
			case "alice", "bob", "carol":
				return &models.User{ID: id, Username: id, Email: id + "@example.com"}, nil
			}
			return nil, fmt.Errorf("user %s: %w", id, models.ErrNotFound)
		},
	}
	chats := &mockChatStore{}
	messages := &mockMessageStore{}
	broadcaster := &mockBroadcaster{}
	notifs := &mockNotificationStore{}
	return users, chats, messages, broadcaster, notifs
}

func newChatService(users *mockUserStore, chats *mockChatStore, messages *mockMessageStore, broadcaster *mockBroadcaster, notifs *mockNotificationStore) *ChatService {
	return NewChatService(chats, messages, users, NewNotificationService(notifs), broadcaster)
}

func TestGetOrCreateIsIdempotent(t *testing.T) {
	users, chats, messages, broadcaster, notifs := chatFixtures()

	var stored *models.Chat
	chats.createFn = func(_ context.Context, chat *models.Chat) error {
		stored = chat
		return nil
	}
	chats.getByParticipantsFn = func(_ context.Context, a, b string) (*models.Chat, error) {
		if stored != nil && stored.Participants[0] == a && stored.Participants[1] == b {
			return stored, nil
		}
		return nil, fmt.Errorf("chat: %w", models.ErrNotFound)
	}

	svc := newChatService(users, chats, messages, broadcaster, notifs)

	first, created, err := svc.GetOrCreate(context.Background(), "bob", "alice")
	if err != nil {
		t.Fatalf("GetOrCreate() error = %v", err)
	}
	if !created {
		t.Error("first GetOrCreate() created = false, want true")
	}
	if first.Participants[0] != "alice" || first.Participants[1] != "bob" {
		t.Errorf("participants = %v, want sorted [alice bob]", first.Participants)
	}

	// Same pair from the other side resolves to the same chat.
	second, created, err := svc.GetOrCreate(context.Background(), "alice", "bob")
	if err != nil {
		t.Fatalf("second GetOrCreate() error = %v", err)
	}
	if created {
		t.Error("second GetOrCreate() created = true, want false")
	}
	if second.ID != first.ID {
		t.Errorf("second chat ID = %s, want %s", second.ID, first.ID)
	}

	// Only the first call announces the chat to the other participant.
	events := broadcaster.byEvent(EventNewChat)
	if len(events) != 1 || events[0].room != "user:alice" {
		t.Errorf("new_chat events = %+v, want one to user:alice", events)
	}
}

func TestGetOrCreateValidation(t *testing.T) {
	users, chats, messages, broadcaster, notifs := chatFixtures()
	svc := newChatService(users, chats, messages, broadcaster, notifs)

	tests := []struct {
		name          string
		participantID string
		wantErr       error
	}{
		{"empty participant", "", models.ErrValidation},
		{"self chat", "alice", models.ErrValidation},
		{"unknown participant", "mallory", models.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := svc.GetOrCreate(context.Background(), "alice", tt.participantID)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("GetOrCreate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestSendMessageBroadcastsAndNotifies(t *testing.T) {
	users, chats, messages, broadcaster, notifs := chatFixtures()

	chat := &models.Chat{ID: "chat-1", Participants: []string{"alice", "bob"}}
	chats.getByIDFn = func(_ context.Context, id string) (*models.Chat, error) {
		if id == chat.ID {
			return chat, nil
		}
		return nil, fmt.Errorf("chat %s: %w", id, models.ErrNotFound)
	}

	var persisted *models.Message
	messages.createFn = func(_ context.Context, msg *models.Message) error {
		persisted = msg
		return nil
	}

	svc := newChatService(users, chats, messages, broadcaster, notifs)

	msg, err := svc.SendMessage(context.Background(), "alice", "chat-1", "  hello bob  ")
	if err != nil {
		t.Fatalf("SendMessage() error = %v", err)
	}
	if msg.Content != "hello bob" {
		t.Errorf("content = %q, want trimmed %q", msg.Content, "hello bob")
	}
	if persisted == nil || persisted.ID != msg.ID {
		t.Fatal("message was not persisted")
	}
	if msg.Sender == nil || msg.Sender.Username != "alice" {
		t.Errorf("sender summary = %+v, want alice", msg.Sender)
	}

	if events := broadcaster.byEvent(EventNewMessage); len(events) != 1 || events[0].room != "chat:chat-1" {
		t.Errorf("new_message events = %+v, want one to chat:chat-1", events)
	}
	if events := broadcaster.byEvent(EventChatNotification); len(events) != 1 || events[0].room != "user:bob" {
		t.Errorf("chat_notification events = %+v, want one to user:bob", events)
	}
	if len(notifs.created) != 1 || notifs.created[0].UserID != "bob" || notifs.created[0].Type != models.NotificationChat {
		t.Errorf("notifications = %+v, want one chat notification for bob", notifs.created)
	}
}

func TestSendMessageRejectsNonParticipant(t *testing.T) {
	users, chats, messages, broadcaster, notifs := chatFixtures()

	chat := &models.Chat{ID: "chat-1", Participants: []string{"alice", "bob"}}
	chats.getByIDFn = func(_ context.Context, id string) (*models.Chat, error) {
		return chat, nil
	}
	messages.createFn = func(_ context.Context, msg *models.Message) error {
		t.Fatal("message persisted for non-participant")
		return nil
	}

	svc := newChatService(users, chats, messages, broadcaster, notifs)

	_, err := svc.SendMessage(context.Background(), "carol", "chat-1", "let me in")
	if !errors.Is(err, models.ErrNotFound) {
		t.Errorf("SendMessage() error = %v, want ErrNotFound", err)
	}
	if len(broadcaster.events) != 0 {
		t.Errorf("broadcast events = %+v, want none", broadcaster.events)
	}
}

func TestSendMessageRejectsEmptyContent(t *testing.T) {
	users, chats, messages, broadcaster, notifs := chatFixtures()
	svc := newChatService(users, chats, messages, broadcaster, notifs)

	for _, content := range []string{"", "   ", "\n\t"} {
		if _, err := svc.SendMessage(context.Background(), "alice", "chat-1", content); !errors.Is(err, models.ErrValidation) {
			t.Errorf("SendMessage(%q) error = %v, want ErrValidation", content, err)
		}
	}
}

func TestMarkReadBroadcastsReceipt(t *testing.T) {
	users, chats, messages, broadcaster, notifs := chatFixtures()

	chat := &models.Chat{ID: "chat-1", Participants: []string{"alice", "bob"}}
	chats.getByIDFn = func(_ context.Context, id string) (*models.Chat, error) {
		return chat, nil
	}

	var markedChat, markedUser string
	messages.markReadFn = func(_ context.Context, chatID, userID string) (int64, error) {
		markedChat, markedUser = chatID, userID
		return 3, nil
	}

	svc := newChatService(users, chats, messages, broadcaster, notifs)

	if err := svc.MarkRead(context.Background(), "bob", "chat-1"); err != nil {
		t.Fatalf("MarkRead() error = %v", err)
	}
	if markedChat != "chat-1" || markedUser != "bob" {
		t.Errorf("MarkRead stored (%s, %s), want (chat-1, bob)", markedChat, markedUser)
	}

	// The reader is excluded from their own receipt.
	events := broadcaster.byEvent(EventMessagesRead)
	if len(events) != 1 || events[0].exclude != "bob" {
		t.Errorf("messages_read events = %+v, want one excluding bob", events)
	}
}

func TestGetWithMessagesMarksRead(t *testing.T) {
	users, chats, messages, broadcaster, notifs := chatFixtures()

	chat := &models.Chat{ID: "chat-1", Participants: []string{"alice", "bob"}}
	chats.getByIDFn = func(_ context.Context, id string) (*models.Chat, error) {
		return chat, nil
	}
	messages.listByChatFn = func(_ context.Context, chatID string) ([]*models.Message, error) {
		return []*models.Message{{ID: "m1", ChatID: chatID, SenderID: "alice"}}, nil
	}

	marked := false
	messages.markReadFn = func(_ context.Context, chatID, userID string) (int64, error) {
		marked = true
		return 1, nil
	}

	svc := newChatService(users, chats, messages, broadcaster, notifs)

	got, msgs, err := svc.GetWithMessages(context.Background(), "bob", "chat-1")
	if err != nil {
		t.Fatalf("GetWithMessages() error = %v", err)
	}
	if got.ID != "chat-1" || len(msgs) != 1 {
		t.Errorf("GetWithMessages() = (%v, %d messages)", got.ID, len(msgs))
	}
	if !marked {
		t.Error("opening the chat did not mark messages read")
	}
}

func TestGetWithMessagesHidesChatFromOutsiders(t *testing.T) {
	users, chats, messages, broadcaster, notifs := chatFixtures()

	chats.getByIDFn = func(_ context.Context, id string) (*models.Chat, error) {
		return &models.Chat{ID: id, Participants: []string{"alice", "bob"}}, nil
	}

	svc := newChatService(users, chats, messages, broadcaster, notifs)

	_, _, err := svc.GetWithMessages(context.Background(), "carol", "chat-1")
	if !errors.Is(err, models.ErrNotFound) {
		t.Errorf("GetWithMessages() error = %v, want ErrNotFound for non-participant", err)
	}
}

func TestTypingExcludesTypist(t *testing.T) {
	users, chats, messages, broadcaster, notifs := chatFixtures()
	svc := newChatService(users, chats, messages, broadcaster, notifs)

	svc.Typing("alice", "chat-1", true)

	events := broadcaster.byEvent(EventUserTyping)
	if len(events) != 1 || events[0].room != "chat:chat-1" || events[0].exclude != "alice" {
		t.Errorf("user_typing events = %+v, want one to chat:chat-1 excluding alice", events)
	}
}
