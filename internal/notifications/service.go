package notifications

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"authportal/internal/backend"
	"authportal/pkg/logger"
)

// ErrInvalidCallbackURL is returned when a hook carries a url that is not absolute
var ErrInvalidCallbackURL = errors.New("invalid callback url")

// Dispatcher delivers one email notification
type Dispatcher interface {
	Dispatch(ctx context.Context, notification *EmailNotification) error
}

// EmailSender is the backend endpoint family that sends transactional mail
type EmailSender interface {
	SendEmail(ctx context.Context, purpose backend.EmailPurpose, email, link string) error
}

// HTTPDispatcher hands notifications to the backend email endpoints
type HTTPDispatcher struct {
	sender EmailSender
}

func NewHTTPDispatcher(sender EmailSender) *HTTPDispatcher {
	return &HTTPDispatcher{sender: sender}
}

func (hd *HTTPDispatcher) Dispatch(ctx context.Context, notification *EmailNotification) error {
	if err := hd.sender.SendEmail(ctx, notification.Purpose, notification.Email, notification.URL); err != nil {
		notification.MarkFailed(err)
		return err
	}
	notification.MarkSent()
	return nil
}

type Service struct {
	dispatcher Dispatcher
	logger     *logger.Logger
}

func NewService(dispatcher Dispatcher, log *logger.Logger) *Service {
	if log == nil {
		log = logger.GetDefault()
	}
	return &Service{dispatcher: dispatcher, logger: log}
}

// SendEmail turns an email hook into a dispatched notification
func (s *Service) SendEmail(ctx context.Context, req EmailHookRequest) (*EmailNotification, error) {
	purpose, ok := backend.ParsePurpose(req.Purpose)
	if !ok {
		return nil, backend.ErrInvalidPurpose
	}

	link, err := BuildLink(req.URL, req.Token)
	if err != nil {
		return nil, err
	}

	notification := NewEmailNotification(purpose, strings.TrimSpace(req.Email), link)
	if err := s.dispatcher.Dispatch(ctx, notification); err != nil {
		s.logger.ErrorWithContext(ctx, "Email dispatch failed", err, map[string]interface{}{
			"purpose": string(purpose),
		})
		return notification, fmt.Errorf("failed to dispatch %s email: %w", purpose, err)
	}
	return notification, nil
}

// BuildLink appends the token to the callback url as ?token=
func BuildLink(rawURL, token string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("%w: %q", ErrInvalidCallbackURL, rawURL)
	}
	if token == "" {
		return u.String(), nil
	}
	q := u.Query()
	q.Set("token", token)
	u.RawQuery = q.Encode()
	return u.String(), nil
}
