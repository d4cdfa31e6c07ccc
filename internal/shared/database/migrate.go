package database

import (
	"authportal/internal/audit"

	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&audit.AuthEvent{},
	); err != nil {
		return err
	}
	return MigrateConstraints(db)
}
