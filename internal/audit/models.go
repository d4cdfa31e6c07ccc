package audit

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// EventType names an auth lifecycle event reported by the auth service
type EventType string

const (
	EventEmailVerified EventType = "email-verified"
	EventPasswordReset EventType = "password-reset"
)

// ParseEventType validates an event type coming from a hook
func ParseEventType(s string) (EventType, bool) {
	switch t := EventType(s); t {
	case EventEmailVerified, EventPasswordReset:
		return t, true
	default:
		return "", false
	}
}

// AuthEvent is one row of the audit trail
type AuthEvent struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Type      EventType `gorm:"type:varchar(50);not null;index" json:"type"`
	Email     string    `gorm:"type:varchar(255);not null;index" json:"email"`
	CreatedAt time.Time `gorm:"not null;default:now()" json:"createdAt"`
}

func (AuthEvent) TableName() string {
	return "auth_events"
}

// BeforeCreate fills in the primary key
func (e *AuthEvent) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}

// EventResponse is an audit row as the admin API returns it
type EventResponse struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

func toEventResponse(e AuthEvent) EventResponse {
	return EventResponse{
		ID:        e.ID.String(),
		Type:      string(e.Type),
		Email:     e.Email,
		CreatedAt: e.CreatedAt,
	}
}
