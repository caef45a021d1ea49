package database

import (
	"tasknotes/backend/models"

	"gorm.io/gorm"
)

// RunMigrations brings the users and notes tables up to date.
func RunMigrations(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Note{},
	)
}
