package audit

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, event *AuthEvent) error
	ListByEmail(ctx context.Context, email string, limit int) ([]AuthEvent, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, event *AuthEvent) error {
	return r.db.WithContext(ctx).Create(event).Error
}

func (r *repository) ListByEmail(ctx context.Context, email string, limit int) ([]AuthEvent, error) {
	var events []AuthEvent
	err := r.db.WithContext(ctx).
		Where("email = ?", email).
		Order("created_at DESC").
		Limit(limit).
		Find(&events).Error
	if err != nil {
		return nil, err
	}
	return events, nil
}
