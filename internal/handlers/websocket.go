package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/thereayou/fileflow/internal/middleware"
	ws "github.com/thereayou/fileflow/internal/websocket"
)

// WebSocketHandler управляет realtime-соединениями
type WebSocketHandler struct {
	hub      *ws.Hub
	events   *ChatEventHandler
	upgrader websocket.Upgrader
}

func NewWebSocketHandler(hub *ws.Hub, events *ChatEventHandler) *WebSocketHandler {
	return &WebSocketHandler{
		hub:    hub,
		events: events,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

// HandleWebSocket апгрейдит соединение уже аутентифицированного клиента
func (h *WebSocketHandler) HandleWebSocket(c *gin.Context) {
	userID := c.MustGet(middleware.UserIDKey).(uint)
	username := c.MustGet(middleware.UsernameKey).(string)

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}

	client := ws.NewClient(h.hub, conn, userID, username)

	h.hub.Register(client)

	go client.WritePump()
	go client.ReadPump(h.events)
}
