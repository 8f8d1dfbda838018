package handlers

import (
	"encoding/json"
	"log"
	"time"

	"github.com/thereayou/fileflow/internal/database"
	"github.com/thereayou/fileflow/internal/handlers/dto"
	"github.com/thereayou/fileflow/internal/models"
	ws "github.com/thereayou/fileflow/internal/websocket"
)

// ChatEventHandler обрабатывает прикладные события realtime-соединений
type ChatEventHandler struct {
	db  *database.Database
	hub *ws.Hub
}

func NewChatEventHandler(db *database.Database, hub *ws.Hub) *ChatEventHandler {
	return &ChatEventHandler{db: db, hub: hub}
}

func (h *ChatEventHandler) HandleEvent(client *ws.Client, evt *ws.Event) error {
	switch evt.Type {
	case ws.TypeNewMessage:
		return h.handleNewMessage(client, evt)

	case ws.TypeTyping:
		return h.handleTyping(client, evt)

	case ws.TypeStoppedTyping:
		h.hub.BroadcastExcept(client, ws.TypeUserStoppedTyping, dto.UserBroadcast{Username: client.Username})
		return nil

	case ws.TypeClearChat:
		return h.handleClearChat(client)

	default:
		log.Printf("Unknown event type: %s", evt.Type)
		return nil
	}
}

func (h *ChatEventHandler) handleNewMessage(client *ws.Client, evt *ws.Event) error {
	var payload dto.NewMessagePayload
	if err := json.Unmarshal(evt.Data, &payload); err != nil {
		return err
	}

	if payload.Message == "" {
		return ws.ErrInvalidEvent
	}

	message := &models.Message{
		UserID:   client.UserID,
		Username: client.Username,
		Body:     payload.Message,
	}

	if err := h.db.SaveMessage(message); err != nil {
		return err
	}

	// Рассылается всем, включая отправителя
	h.hub.Broadcast(ws.TypeMessageReceived, dto.MessageBroadcast{
		Username:  client.Username,
		Message:   payload.Message,
		Timestamp: time.Now().Format(timestampLayout),
	})

	return nil
}

func (h *ChatEventHandler) handleTyping(client *ws.Client, evt *ws.Event) error {
	payload := dto.TypingPayload{IsTyping: true}
	if len(evt.Data) > 0 {
		if err := json.Unmarshal(evt.Data, &payload); err != nil {
			return err
		}
	}

	// Не персистится, чистый relay мимо отправителя
	h.hub.BroadcastExcept(client, ws.TypeUserTyping, dto.TypingBroadcast{
		Username: client.Username,
		IsTyping: payload.IsTyping,
	})

	return nil
}

func (h *ChatEventHandler) handleClearChat(client *ws.Client) error {
	if err := h.db.ClearMessages(); err != nil {
		return err
	}

	h.hub.Broadcast(ws.TypeChatCleared, dto.UserBroadcast{Username: client.Username})
	return nil
}
