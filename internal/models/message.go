package models

import "time"

type Message struct {
	ID     uint   `gorm:"primaryKey;autoIncrement"`
	UserID uint   `gorm:"not null"`
	// Имя автора фиксируется на момент отправки
	Username  string `gorm:"not null"`
	Body      string `gorm:"not null"`
	CreatedAt time.Time

	User User `gorm:"foreignKey:UserID"`
}
