package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/thereayou/fileflow/internal/handlers"
	"github.com/thereayou/fileflow/internal/middleware"
	"github.com/thereayou/fileflow/pkg/session"
)

func APIEndpoints(
	r *gin.Engine,
	sessions session.Store,
	authH *handlers.AuthHandler,
	fileH *handlers.FileHandler,
	chatH *handlers.ChatHandler,
	wsH *handlers.WebSocketHandler,
) {
	r.GET("/healthz", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	// Открытые endpoints
	r.POST("/login", authH.Login)
	r.POST("/register", authH.Register)

	// Все остальное только под сессией
	authed := r.Group("/", middleware.SessionAuth(sessions))
	{
		authed.GET("/logout", authH.Logout)

		authed.GET("/files", fileH.List)
		authed.POST("/upload", fileH.Upload)
		authed.GET("/download/:name", fileH.Download)

		authed.GET("/chat/history", chatH.History)
		authed.DELETE("/chat/clear", chatH.Clear)

		authed.GET("/ws", wsH.HandleWebSocket)
	}
}
