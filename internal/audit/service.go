package audit

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"authportal/pkg/logger"
)

var (
	ErrInvalidEventType = errors.New("invalid event type")
	ErrMissingEmail     = errors.New("email is required")
)

// Recorder stores auth lifecycle events
type Recorder interface {
	Record(ctx context.Context, eventType, email string) error
}

type Service struct {
	repo   Repository
	logger *logger.Logger
	now    func() time.Time
}

func NewService(repo Repository, log *logger.Logger) *Service {
	if log == nil {
		log = logger.GetDefault()
	}
	return &Service{repo: repo, logger: log, now: time.Now}
}

// Record validates and persists an event
func (s *Service) Record(ctx context.Context, eventType, email string) error {
	t, ok := ParseEventType(eventType)
	if !ok {
		return ErrInvalidEventType
	}
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" {
		return ErrMissingEmail
	}

	event := &AuthEvent{Type: t, Email: email, CreatedAt: s.now().UTC()}
	if err := s.repo.Create(ctx, event); err != nil {
		return fmt.Errorf("failed to record auth event: %w", err)
	}

	s.logger.InfoWithContext(ctx, "Auth event recorded", map[string]interface{}{
		"type":  string(t),
		"email": email,
	})
	return nil
}

// History returns the most recent events for an email
func (s *Service) History(ctx context.Context, email string, limit int) ([]AuthEvent, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.repo.ListByEmail(ctx, strings.ToLower(email), limit)
}

// LogRecorder is used when the database is disabled; events only reach the log
type LogRecorder struct {
	Logger *logger.Logger
}

func (r LogRecorder) Record(ctx context.Context, eventType, email string) error {
	if _, ok := ParseEventType(eventType); !ok {
		return ErrInvalidEventType
	}
	if strings.TrimSpace(email) == "" {
		return ErrMissingEmail
	}
	log := r.Logger
	if log == nil {
		log = logger.GetDefault()
	}
	log.InfoWithContext(ctx, "Auth event", map[string]interface{}{
		"type":  eventType,
		"email": email,
	})
	return nil
}
