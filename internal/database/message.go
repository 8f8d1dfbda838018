package database

import (
	"gorm.io/gorm"

	"github.com/thereayou/fileflow/internal/models"
)

func (d *Database) SaveMessage(message *models.Message) error {
	return d.db.Create(message).Error
}

// RecentMessages возвращает последние limit сообщений в хронологическом порядке
func (d *Database) RecentMessages(limit int) ([]models.Message, error) {
	var messages []models.Message

	err := d.db.
		Order("id DESC").
		Limit(limit).
		Find(&messages).Error
	if err != nil {
		return nil, err
	}

	// Разворачиваем порядок, чтобы старые сообщения были первыми
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}

	return messages, nil
}

// ClearMessages удаляет все сообщения и сбрасывает счетчик id
func (d *Database) ClearMessages() error {
	return d.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM messages").Error; err != nil {
			return err
		}
		return tx.Exec("DELETE FROM sqlite_sequence WHERE name = ?", "messages").Error
	})
}
