package database

import (
	"tasklist/backend/models"

	"gorm.io/gorm"
)

// RunMigrations brings the users and tasks tables up to date.
func RunMigrations(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Task{},
	)
}
