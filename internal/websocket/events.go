package websocket

import "encoding/json"

// EventType определяет типы событий
type EventType string

const (
	// Входящие от клиента
	TypeNewMessage    EventType = "new_message"
	TypeTyping        EventType = "typing"
	TypeStoppedTyping EventType = "stopped_typing"
	TypeClearChat     EventType = "clear_chat"

	// Исходящие ко всем подключенным
	TypeOnlineCount       EventType = "online_count"
	TypeMessageReceived   EventType = "message_received"
	TypeUserTyping        EventType = "user_typing"
	TypeUserStoppedTyping EventType = "user_stopped_typing"
	TypeChatCleared       EventType = "chat_cleared"
)

type Event struct {
	Type EventType       `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

type OnlineCountPayload struct {
	Count int `json:"count"`
}

// EventHandler обрабатывает прикладные события клиента
type EventHandler interface {
	HandleEvent(client *Client, evt *Event) error
}

func marshalEvent(eventType EventType, payload interface{}) ([]byte, error) {
	evt := Event{Type: eventType}

	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		evt.Data = data
	}

	return json.Marshal(evt)
}
