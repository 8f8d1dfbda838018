package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/thereayou/fileflow/internal/database"
	"github.com/thereayou/fileflow/internal/files"
	"github.com/thereayou/fileflow/internal/handlers"
	"github.com/thereayou/fileflow/internal/presence"
	ws "github.com/thereayou/fileflow/internal/websocket"
	"github.com/thereayou/fileflow/pkg/session"
)

func newTestServer(t *testing.T) (*httptest.Server, *database.Database) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	dbConn := database.NewDatabase(db)
	require.NoError(t, dbConn.Migrate())

	sessions := session.NewMemoryStore()

	registry, err := files.NewRegistry(t.TempDir())
	require.NoError(t, err)

	hub := ws.NewHub(presence.NewTracker())
	go hub.Run()
	t.Cleanup(hub.Stop)

	authH := handlers.NewAuthHandler(dbConn, sessions)
	fileH := handlers.NewFileHandler(registry)
	chatH := handlers.NewChatHandler(dbConn, hub)
	eventH := handlers.NewChatEventHandler(dbConn, hub)
	wsH := handlers.NewWebSocketHandler(hub, eventH)

	router := gin.New()
	APIEndpoints(router, sessions, authH, fileH, chatH, wsH)

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv, dbConn
}

func registerUser(t *testing.T, srv *httptest.Server, username string) *http.Cookie {
	t.Helper()

	body := fmt.Sprintf(`{"username":%q,"password":"secret1"}`, username)
	resp, err := http.Post(srv.URL+"/register", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	for _, cookie := range resp.Cookies() {
		if cookie.Name == session.CookieName {
			return cookie
		}
	}
	t.Fatal("session cookie not set")
	return nil
}

func dialWS(t *testing.T, srv *httptest.Server, cookie *http.Cookie) *websocket.Conn {
	t.Helper()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	header := http.Header{}
	header.Add("Cookie", cookie.Name+"="+cookie.Value)

	conn, _, err := websocket.DefaultDialer.Dial(url, header)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readEvent(t *testing.T, conn *websocket.Conn, want ws.EventType) json.RawMessage {
	t.Helper()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(3*time.Second)))
	var evt ws.Event
	require.NoError(t, conn.ReadJSON(&evt))
	require.Equal(t, want, evt.Type)
	return evt.Data
}

func sendEvent(t *testing.T, conn *websocket.Conn, eventType ws.EventType, payload interface{}) {
	t.Helper()

	evt := map[string]interface{}{"type": eventType}
	if payload != nil {
		evt["data"] = payload
	}
	require.NoError(t, conn.WriteJSON(evt))
}

func doAuthed(t *testing.T, srv *httptest.Server, method, path string, cookie *http.Cookie) *http.Response {
	t.Helper()

	req, err := http.NewRequest(method, srv.URL+path, nil)
	require.NoError(t, err)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	return resp
}

func TestWebSocketRequiresSession(t *testing.T) {
	srv, _ := newTestServer(t)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestRESTRequiresSession(t *testing.T) {
	srv, _ := newTestServer(t)

	for _, path := range []string{"/files", "/chat/history", "/logout"} {
		resp := doAuthed(t, srv, http.MethodGet, path, nil)
		resp.Body.Close()
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, path)
	}
}

func TestChatEndToEnd(t *testing.T) {
	srv, db := newTestServer(t)

	aliceCookie := registerUser(t, srv, "alice")
	bobCookie := registerUser(t, srv, "bob")

	alice := dialWS(t, srv, aliceCookie)
	var count ws.OnlineCountPayload
	require.NoError(t, json.Unmarshal(readEvent(t, alice, ws.TypeOnlineCount), &count))
	assert.Equal(t, 1, count.Count)

	bob := dialWS(t, srv, bobCookie)
	require.NoError(t, json.Unmarshal(readEvent(t, bob, ws.TypeOnlineCount), &count))
	assert.Equal(t, 2, count.Count)
	require.NoError(t, json.Unmarshal(readEvent(t, alice, ws.TypeOnlineCount), &count))
	assert.Equal(t, 2, count.Count)

	// Сообщение получают все, включая отправителя
	sendEvent(t, alice, ws.TypeNewMessage, map[string]string{"message": "hello"})

	for _, conn := range []*websocket.Conn{alice, bob} {
		var msg struct {
			Username  string `json:"username"`
			Message   string `json:"message"`
			Timestamp string `json:"timestamp"`
		}
		require.NoError(t, json.Unmarshal(readEvent(t, conn, ws.TypeMessageReceived), &msg))
		assert.Equal(t, "alice", msg.Username)
		assert.Equal(t, "hello", msg.Message)
		assert.NotEmpty(t, msg.Timestamp)
	}

	// Typing не доходит до отправителя
	sendEvent(t, bob, ws.TypeTyping, map[string]bool{"isTyping": true})
	var typing struct {
		Username string `json:"username"`
		IsTyping bool   `json:"isTyping"`
	}
	require.NoError(t, json.Unmarshal(readEvent(t, alice, ws.TypeUserTyping), &typing))
	assert.Equal(t, "bob", typing.Username)
	assert.True(t, typing.IsTyping)

	// Сообщение дошло до истории
	resp := doAuthed(t, srv, http.MethodGet, "/chat/history", aliceCookie)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var history []struct {
		Username  string `json:"username"`
		Message   string `json:"message"`
		Timestamp string `json:"timestamp"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&history))
	require.Len(t, history, 1)
	assert.Equal(t, "hello", history[0].Message)

	// Очистка оповещает всех и сбрасывает нумерацию
	sendEvent(t, bob, ws.TypeClearChat, nil)

	var cleared struct {
		Username string `json:"username"`
	}
	require.NoError(t, json.Unmarshal(readEvent(t, alice, ws.TypeChatCleared), &cleared))
	assert.Equal(t, "bob", cleared.Username)
	readEvent(t, bob, ws.TypeChatCleared)

	sendEvent(t, bob, ws.TypeNewMessage, map[string]string{"message": "fresh"})
	readEvent(t, alice, ws.TypeMessageReceived)

	messages, err := db.RecentMessages(100)
	require.NoError(t, err)
	require.Len(t, messages, 1)
	assert.Equal(t, uint(1), messages[0].ID)
}

func TestClearChatOverREST(t *testing.T) {
	srv, db := newTestServer(t)

	cookie := registerUser(t, srv, "alice")
	conn := dialWS(t, srv, cookie)
	readEvent(t, conn, ws.TypeOnlineCount)

	sendEvent(t, conn, ws.TypeNewMessage, map[string]string{"message": "to be erased"})
	readEvent(t, conn, ws.TypeMessageReceived)

	resp := doAuthed(t, srv, http.MethodDelete, "/chat/clear", cookie)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Success bool `json:"success"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.True(t, body.Success)

	// Подключенный клиент получает оповещение
	var cleared struct {
		Username string `json:"username"`
	}
	require.NoError(t, json.Unmarshal(readEvent(t, conn, ws.TypeChatCleared), &cleared))
	assert.Equal(t, "alice", cleared.Username)

	messages, err := db.RecentMessages(100)
	require.NoError(t, err)
	assert.Empty(t, messages)
}

func TestPresenceDropsOnDisconnect(t *testing.T) {
	srv, _ := newTestServer(t)

	aliceCookie := registerUser(t, srv, "alice")
	bobCookie := registerUser(t, srv, "bob")

	alice := dialWS(t, srv, aliceCookie)
	readEvent(t, alice, ws.TypeOnlineCount)

	bob := dialWS(t, srv, bobCookie)
	readEvent(t, bob, ws.TypeOnlineCount)
	readEvent(t, alice, ws.TypeOnlineCount)

	require.NoError(t, bob.Close())

	var count ws.OnlineCountPayload
	require.NoError(t, json.Unmarshal(readEvent(t, alice, ws.TypeOnlineCount), &count))
	assert.Equal(t, 1, count.Count)
}
