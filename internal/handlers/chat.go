package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/thereayou/fileflow/internal/database"
	"github.com/thereayou/fileflow/internal/handlers/dto"
	"github.com/thereayou/fileflow/internal/middleware"
	ws "github.com/thereayou/fileflow/internal/websocket"
)

// Формат времени в исходящих событиях и истории
const timestampLayout = "2006-01-02 15:04:05"

const historyLimit = 100

type ChatHandler struct {
	db  *database.Database
	hub *ws.Hub
}

func NewChatHandler(db *database.Database, hub *ws.Hub) *ChatHandler {
	return &ChatHandler{db: db, hub: hub}
}

// History возвращает последние 100 сообщений, старые первыми
func (h *ChatHandler) History(c *gin.Context) {
	messages, err := h.db.RecentMessages(historyLimit)
	if err != nil {
		log.Printf("Failed to load chat history: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load history"})
		return
	}

	result := make([]dto.MessageBroadcast, len(messages))
	for i, msg := range messages {
		result[i] = dto.MessageBroadcast{
			Username:  msg.Username,
			Message:   msg.Body,
			Timestamp: msg.CreatedAt.Format(timestampLayout),
		}
	}

	c.JSON(http.StatusOK, result)
}

// Clear удаляет всю историю и оповещает подключенных клиентов
func (h *ChatHandler) Clear(c *gin.Context) {
	username := c.MustGet(middleware.UsernameKey).(string)

	if err := h.db.ClearMessages(); err != nil {
		log.Printf("Failed to clear chat: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "failed to clear chat"})
		return
	}

	h.hub.Broadcast(ws.TypeChatCleared, dto.UserBroadcast{Username: username})

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Chat history cleared"})
}
