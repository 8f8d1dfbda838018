package websocket

import (
	"context"
	"log"
	"sync"

	"github.com/thereayou/fileflow/internal/presence"
)

// Hub держит реестр активных соединений и рассылает события.
// Один экземпляр на процесс, один общий broadcast-домен.
type Hub struct {
	clients map[*Client]bool

	presence *presence.Tracker

	register   chan *Client
	unregister chan *Client

	mu sync.RWMutex

	// Контекст для graceful shutdown
	ctx    context.Context
	cancel context.CancelFunc
}

// NewHub создает новый Hub
func NewHub(tracker *presence.Tracker) *Hub {
	ctx, cancel := context.WithCancel(context.Background())
	return &Hub{
		clients:    make(map[*Client]bool),
		presence:   tracker,
		register:   make(chan *Client),
		unregister: make(chan *Client),
		ctx:        ctx,
		cancel:     cancel,
	}
}

// Run запускает hub
func (h *Hub) Run() {
	for {
		select {
		case <-h.ctx.Done():
			return

		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)
		}
	}
}

// Stop останавливает hub
func (h *Hub) Stop() {
	h.cancel()

	h.mu.Lock()
	defer h.mu.Unlock()

	for client := range h.clients {
		close(client.Send)
	}
	h.clients = make(map[*Client]bool)
}

// Register регистрирует нового клиента
func (h *Hub) Register(client *Client) {
	h.register <- client
}

// Unregister отменяет регистрацию клиента
func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.clients[client] = true
	count := h.presence.Connect(client.UserID)

	log.Printf("Client connected: %s (online: %d)", client.Username, count)

	h.notifyOnlineCount(count)
}

func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client]; !ok {
		return
	}

	delete(h.clients, client)
	close(client.Send)
	count := h.presence.Disconnect(client.UserID)

	log.Printf("Client disconnected: %s (online: %d)", client.Username, count)

	h.notifyOnlineCount(count)
}

// Broadcast отправляет событие всем активным соединениям
func (h *Hub) Broadcast(eventType EventType, payload interface{}) {
	data, err := marshalEvent(eventType, payload)
	if err != nil {
		log.Printf("Failed to marshal %s event: %v", eventType, err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	h.send(data, nil)
}

// BroadcastExcept отправляет событие всем, кроме sender
func (h *Hub) BroadcastExcept(sender *Client, eventType EventType, payload interface{}) {
	data, err := marshalEvent(eventType, payload)
	if err != nil {
		log.Printf("Failed to marshal %s event: %v", eventType, err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	h.send(data, sender)
}

func (h *Hub) notifyOnlineCount(count int) {
	data, err := marshalEvent(TypeOnlineCount, OnlineCountPayload{Count: count})
	if err != nil {
		return
	}
	h.send(data, nil)
}

// send рассылает под уже взятой блокировкой; медленный клиент с полной
// очередью пропускается, чтобы не тормозить остальных
func (h *Hub) send(data []byte, exclude *Client) {
	for client := range h.clients {
		if client == exclude {
			continue
		}
		select {
		case client.Send <- data:
		default:
			log.Printf("Client %s send channel full", client.Username)
		}
	}
}
