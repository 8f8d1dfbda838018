package database

import (
	"errors"
	"os"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/thereayou/fileflow/internal/models"
)

func (d *Database) Connect() error {
	path := os.Getenv("DATABASE_PATH")
	if path == "" {
		path = "fileflow.db"
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{TranslateError: true})
	if err != nil {
		return err
	}

	d.db = db

	return d.Migrate()
}

// Migrate создает схему и предустановленного администратора
func (d *Database) Migrate() error {
	if err := d.db.AutoMigrate(&models.User{}, &models.Message{}); err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("admin123"), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	err = d.CreateUser(&models.User{Username: "admin", PasswordHash: string(hash)})
	if errors.Is(err, ErrUsernameTaken) {
		return nil
	}
	return err
}
