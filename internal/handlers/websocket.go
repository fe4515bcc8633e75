package handlers

import (
	"context"
	"net/http"

	"tradetide-backend/internal/metrics"
	"tradetide-backend/internal/services"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// WebSocketHandler upgrades relay connections and pumps their events through
// the chat service, so relay writes share the REST write path.
type WebSocketHandler struct {
	userService *services.UserService
	chatService *services.ChatService
	hub         *services.Hub
	collector   *metrics.Collector
	upgrader    websocket.Upgrader
}

// NewWebSocketHandler creates a new websocket handler
func NewWebSocketHandler(userService *services.UserService, chatService *services.ChatService, hub *services.Hub, collector *metrics.Collector) *WebSocketHandler {
	return &WebSocketHandler{
		userService: userService,
		chatService: chatService,
		hub:         hub,
		collector:   collector,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// Handle handles GET /ws. The JWT rides the token query parameter because
// browser websocket clients cannot set an Authorization header.
func (h *WebSocketHandler) Handle(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		respondError(w, "Missing token", http.StatusUnauthorized)
		return
	}

	userID, err := h.userService.ValidateJWT(token)
	if err != nil {
		respondError(w, "Invalid token", http.StatusUnauthorized)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("Failed to upgrade websocket connection")
		return
	}

	client := h.hub.Register(userID, conn)
	h.collector.RelayConnected(1)
	defer func() {
		h.hub.Unregister(client)
		h.collector.RelayConnected(-1)
	}()

	for {
		var event services.WSEvent
		if err := conn.ReadJSON(&event); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn().Err(err).Str("user_id", userID).Msg("Relay connection closed unexpectedly")
			}
			return
		}

		h.collector.RecordRelayEvent(event.Event)
		h.dispatch(r.Context(), client, event)
	}
}

func (h *WebSocketHandler) dispatch(ctx context.Context, client *services.Client, event services.WSEvent) {
	userID := client.UserID()

	switch event.Event {
	case services.EventAuthenticate:
		// Identity comes from the upgrade token; the event is accepted for
		// client compatibility but carries no authority.

	case services.EventJoinChat:
		h.hub.JoinChat(client, event.ChatID)

	case services.EventLeaveChat:
		h.hub.LeaveChat(client, event.ChatID)

	case services.EventSendMessage:
		if _, err := h.chatService.SendMessage(ctx, userID, event.ChatID, event.Content); err != nil {
			// Sends from non-participants or to unknown chats are dropped
			// without an error frame, same as the REST path would reject.
			log.Debug().Err(err).
				Str("user_id", userID).
				Str("chat_id", event.ChatID).
				Msg("Relay send_message rejected")
		} else {
			h.collector.RecordMessageSent()
		}

	case services.EventTyping:
		h.chatService.Typing(userID, event.ChatID, event.IsTyping)

	case services.EventMarkRead:
		if err := h.chatService.MarkRead(ctx, userID, event.ChatID); err != nil {
			log.Debug().Err(err).
				Str("user_id", userID).
				Str("chat_id", event.ChatID).
				Msg("Relay mark_read rejected")
		}

	default:
		h.hub.SendError(client, "Unknown event: "+event.Event)
	}
}
