package services

import (
	"sync"

	"github.com/rs/zerolog/log"
)

// Server-to-client relay events.
const (
	EventNewMessage       = "new_message"
	EventMessagesRead     = "messages_read"
	EventUserTyping       = "user_typing"
	EventChatNotification = "chat_notification"
	EventNewChat          = "new_chat"
	EventError            = "error"
)

// Client-to-server relay events.
const (
	EventAuthenticate = "authenticate"
	EventJoinChat     = "join_chat"
	EventLeaveChat    = "leave_chat"
	EventSendMessage  = "send_message"
	EventTyping       = "typing"
	EventMarkRead     = "mark_read"
)

// WSEvent is the relay wire envelope, both directions.
type WSEvent struct {
	Event    string `json:"event"`
	ChatID   string `json:"chatId,omitempty"`
	Content  string `json:"content,omitempty"`
	IsTyping bool   `json:"isTyping,omitempty"`
	Message  string `json:"message,omitempty"`
	Data     any    `json:"data,omitempty"`
}

// RelayConn is the transport surface the hub needs from a connection.
// *websocket.Conn satisfies it.
type RelayConn interface {
	WriteJSON(v any) error
	Close() error
}

// Client is one registered relay connection.
type Client struct {
	userID string

	// writeMu serializes writes; gorilla allows one concurrent writer.
	writeMu sync.Mutex
	conn    RelayConn
}

func (c *Client) send(event WSEvent) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.conn.WriteJSON(event)
}

// UserID returns the authenticated identity of the connection.
func (c *Client) UserID() string {
	return c.userID
}

// Hub tracks relay connections and their room memberships. One instance is
// constructed per process and injected where needed; Close tears it down.
type Hub struct {
	mu sync.RWMutex
	// users maps user identity to its single active connection. A newer
	// connection replaces the entry; only the most recent one receives
	// user-addressed events.
	users map[string]*Client
	// rooms maps a room key (user:<id> or chat:<id>) to member connections.
	rooms map[string]map[*Client]struct{}
	// membership is the reverse index used to clean up on disconnect.
	membership map[*Client]map[string]struct{}
}

// NewHub creates a new relay hub
func NewHub() *Hub {
	return &Hub{
		users:      make(map[string]*Client),
		rooms:      make(map[string]map[*Client]struct{}),
		membership: make(map[*Client]map[string]struct{}),
	}
}

func userRoom(userID string) string { return "user:" + userID }
func chatRoom(chatID string) string { return "chat:" + chatID }

// Register records the user's connection, replacing and closing any previous
// one, and joins it to the user-addressed room.
func (h *Hub) Register(userID string, conn RelayConn) *Client {
	client := &Client{userID: userID, conn: conn}

	h.mu.Lock()
	if existing, ok := h.users[userID]; ok {
		h.removeLocked(existing)
		existing.conn.Close()
	}
	h.users[userID] = client
	h.joinLocked(client, userRoom(userID))
	h.mu.Unlock()

	log.Info().Str("user_id", userID).Msg("Relay connection registered")
	return client
}

// Unregister removes the connection from the hub and closes it. The
// user-addressed mapping is only cleared when this connection still owns it.
func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	if current, ok := h.users[client.userID]; ok && current == client {
		delete(h.users, client.userID)
	}
	h.removeLocked(client)
	h.mu.Unlock()

	client.conn.Close()
	log.Info().Str("user_id", client.userID).Msg("Relay connection unregistered")
}

// JoinChat subscribes the connection to a chat room. No membership check
// against actual chat participants happens here; send paths verify that.
func (h *Hub) JoinChat(client *Client, chatID string) {
	h.mu.Lock()
	h.joinLocked(client, chatRoom(chatID))
	h.mu.Unlock()
}

// LeaveChat unsubscribes the connection from a chat room
func (h *Hub) LeaveChat(client *Client, chatID string) {
	h.mu.Lock()
	h.leaveLocked(client, chatRoom(chatID))
	h.mu.Unlock()
}

// IsOnline reports whether the user has an active connection.
func (h *Hub) IsOnline(userID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.users[userID]
	return ok
}

// EmitToChat sends an event to every connection in the chat room.
func (h *Hub) EmitToChat(chatID, event string, data any) {
	h.broadcast(chatRoom(chatID), "", event, data)
}

// EmitToChatExcept sends an event to the chat room, skipping connections
// owned by excludeUserID. Used for typing indicators and read receipts.
func (h *Hub) EmitToChatExcept(chatID, excludeUserID, event string, data any) {
	h.broadcast(chatRoom(chatID), excludeUserID, event, data)
}

// EmitToUser sends an event to the user's active connection, if any.
func (h *Hub) EmitToUser(userID, event string, data any) {
	h.broadcast(userRoom(userID), "", event, data)
}

// SendError sends an error event to a single connection.
func (h *Hub) SendError(client *Client, message string) {
	if err := client.send(WSEvent{Event: EventError, Message: message}); err != nil {
		log.Error().Err(err).Str("user_id", client.userID).Msg("Failed to send relay error")
	}
}

// Close closes every connection and resets the hub state.
func (h *Hub) Close() {
	h.mu.Lock()
	clients := make([]*Client, 0, len(h.membership))
	for client := range h.membership {
		clients = append(clients, client)
	}
	h.users = make(map[string]*Client)
	h.rooms = make(map[string]map[*Client]struct{})
	h.membership = make(map[*Client]map[string]struct{})
	h.mu.Unlock()

	for _, client := range clients {
		client.conn.Close()
	}
}

func (h *Hub) broadcast(room, excludeUserID, event string, data any) {
	h.mu.RLock()
	members := make([]*Client, 0, len(h.rooms[room]))
	for client := range h.rooms[room] {
		if excludeUserID != "" && client.userID == excludeUserID {
			continue
		}
		members = append(members, client)
	}
	h.mu.RUnlock()

	msg := WSEvent{Event: event, Data: data}
	for _, client := range members {
		if err := client.send(msg); err != nil {
			log.Error().Err(err).
				Str("user_id", client.userID).
				Str("event", event).
				Msg("Failed to deliver relay event")
			h.Unregister(client)
		}
	}
}

func (h *Hub) joinLocked(client *Client, room string) {
	if h.rooms[room] == nil {
		h.rooms[room] = make(map[*Client]struct{})
	}
	h.rooms[room][client] = struct{}{}
	if h.membership[client] == nil {
		h.membership[client] = make(map[string]struct{})
	}
	h.membership[client][room] = struct{}{}
}

func (h *Hub) leaveLocked(client *Client, room string) {
	if members, ok := h.rooms[room]; ok {
		delete(members, client)
		if len(members) == 0 {
			delete(h.rooms, room)
		}
	}
	if rooms, ok := h.membership[client]; ok {
		delete(rooms, room)
	}
}

func (h *Hub) removeLocked(client *Client) {
	for room := range h.membership[client] {
		if members, ok := h.rooms[room]; ok {
			delete(members, client)
			if len(members) == 0 {
				delete(h.rooms, room)
			}
		}
	}
	delete(h.membership, client)
}
