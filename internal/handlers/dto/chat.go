package dto

// NewMessagePayload структура входящего события new_message
type NewMessagePayload struct {
	Message string `json:"message"`
}

// TypingPayload структура входящего события typing
type TypingPayload struct {
	IsTyping bool `json:"isTyping"`
}

// MessageBroadcast структура исходящего message_received; тот же формат
// отдает /chat/history
type MessageBroadcast struct {
	Username  string `json:"username"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

type TypingBroadcast struct {
	Username string `json:"username"`
	IsTyping bool   `json:"isTyping"`
}

type UserBroadcast struct {
	Username string `json:"username"`
}
