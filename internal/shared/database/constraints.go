package database

import (
	"gorm.io/gorm"
)

// MigrateConstraints adds the indexes the audit history queries rely on
func MigrateConstraints(db *gorm.DB) error {
	// history lookups read one address newest first
	err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_auth_events_email_created_at
		ON auth_events (email, created_at DESC);
	`).Error
	if err != nil {
		return err
	}

	return nil
}
