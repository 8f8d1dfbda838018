package server

import (
	"context"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"

	"github.com/thereayou/fileflow/internal/database"
	"github.com/thereayou/fileflow/internal/files"
	"github.com/thereayou/fileflow/internal/handlers"
	"github.com/thereayou/fileflow/internal/presence"
	ws "github.com/thereayou/fileflow/internal/websocket"
	"github.com/thereayou/fileflow/pkg/session"
)

type Server struct {
	Router   *gin.Engine
	DB       *database.Database
	Redis    *redis.Client
	Sessions session.Store
	Hub      *ws.Hub
}

func NewServer() *Server {
	if err := godotenv.Load(".env.local"); err != nil {
		if err := godotenv.Load(); err != nil {
			log.Println(".env not found, using environment variables")
		}
	}

	dbConn := &database.Database{}
	if err := dbConn.Connect(); err != nil {
		log.Fatalf("SQLite connect failed: %v", err)
	}

	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		redisURL = "redis://localhost:6379/0"
	}
	redisOpts, err := redis.ParseURL(redisURL)
	if err != nil {
		log.Fatalf("invalid REDIS_URL: %v", err)
	}
	rdb := redis.NewClient(redisOpts)
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		log.Fatalf("Redis connect failed: %v", err)
	}

	sessions := session.NewRedisStore(rdb, sessionTTL())

	uploadDir := os.Getenv("UPLOAD_DIR")
	if uploadDir == "" {
		uploadDir = "uploads"
	}
	registry, err := files.NewRegistry(uploadDir)
	if err != nil {
		log.Fatalf("Upload dir init failed: %v", err)
	}

	hub := ws.NewHub(presence.NewTracker())
	go hub.Run()

	authH := handlers.NewAuthHandler(dbConn, sessions)
	fileH := handlers.NewFileHandler(registry)
	chatH := handlers.NewChatHandler(dbConn, hub)
	eventH := handlers.NewChatEventHandler(dbConn, hub)
	wsH := handlers.NewWebSocketHandler(hub, eventH)

	router := gin.Default()
	APIEndpoints(router, sessions, authH, fileH, chatH, wsH)

	return &Server{
		Router:   router,
		DB:       dbConn,
		Redis:    rdb,
		Sessions: sessions,
		Hub:      hub,
	}
}

func (s *Server) Run() {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	log.Printf("Server starting on port %s", port)
	if err := s.Router.Run(":" + port); err != nil {
		log.Fatalf("Server run error: %v", err)
	}
}

func sessionTTL() time.Duration {
	hours, err := strconv.Atoi(os.Getenv("SESSION_TTL_HOURS"))
	if err != nil || hours <= 0 {
		hours = 24
	}
	return time.Duration(hours) * time.Hour
}
