package session

import (
	"context"
	"errors"
)

// Имя cookie, в которой клиент держит токен сессии
const CookieName = "file_share_session"

var ErrNotFound = errors.New("session not found")

type Session struct {
	UserID   uint   `json:"user_id"`
	Username string `json:"username"`
}

// Store хранит серверные записи сессий по непрозрачному токену
type Store interface {
	Create(ctx context.Context, sess Session) (string, error)
	Get(ctx context.Context, token string) (*Session, error)
	Delete(ctx context.Context, token string) error
}
