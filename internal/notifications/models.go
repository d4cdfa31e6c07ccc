package notifications

import (
	"encoding/json"
	"strings"
	"time"

	"authportal/internal/backend"

	"github.com/google/uuid"
)

// NotificationStatus tracks a dispatch attempt
type NotificationStatus string

const (
	NotificationStatusPending NotificationStatus = "pending"
	NotificationStatusQueued  NotificationStatus = "queued"
	NotificationStatusSent    NotificationStatus = "sent"
	NotificationStatusFailed  NotificationStatus = "failed"
)

// EmailNotification is a transactional email the auth service asked us to deliver
type EmailNotification struct {
	ID        uuid.UUID            `json:"id"`
	Purpose   backend.EmailPurpose `json:"purpose"`
	Email     string               `json:"email"`
	URL       string               `json:"url"`
	Status    NotificationStatus   `json:"status"`
	LastError *string              `json:"lastError,omitempty"`
	CreatedAt time.Time            `json:"createdAt"`
	UpdatedAt time.Time            `json:"updatedAt"`
}

// NewEmailNotification builds a pending notification for one recipient
func NewEmailNotification(purpose backend.EmailPurpose, email, link string) *EmailNotification {
	now := time.Now().UTC()
	return &EmailNotification{
		ID:        uuid.New(),
		Purpose:   purpose,
		Email:     email,
		URL:       link,
		Status:    NotificationStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// GetPartitionKey keeps all mail for one address on one partition
func (en *EmailNotification) GetPartitionKey() string {
	return strings.ToLower(en.Email)
}

func (en *EmailNotification) ToJSON() ([]byte, error) {
	return json.Marshal(en)
}

func (en *EmailNotification) MarkQueued() {
	en.Status = NotificationStatusQueued
	en.UpdatedAt = time.Now().UTC()
}

func (en *EmailNotification) MarkSent() {
	en.Status = NotificationStatusSent
	en.UpdatedAt = time.Now().UTC()
}

func (en *EmailNotification) MarkFailed(err error) {
	en.Status = NotificationStatusFailed
	en.UpdatedAt = time.Now().UTC()
	errorStr := err.Error()
	en.LastError = &errorStr
}

// EmailHookRequest is posted by the auth service whenever it needs a link mailed
type EmailHookRequest struct {
	Purpose string `json:"purpose" binding:"required"`
	Email   string `json:"email" binding:"required,email"`
	URL     string `json:"url" binding:"required"`
	Token   string `json:"token"`
}

// AuthEventRequest is posted by the auth service after a lifecycle event
type AuthEventRequest struct {
	Type  string `json:"type" binding:"required"`
	Email string `json:"email" binding:"required,email"`
}

// DispatchResponse is returned to the hook caller
type DispatchResponse struct {
	ID      string `json:"id"`
	Purpose string `json:"purpose"`
	Status  string `json:"status"`
}
