package profile

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"authportal/internal/backend"
	"authportal/internal/shared/constants"
	"authportal/internal/users"
	"authportal/internal/validation"
	"authportal/pkg/cache"
	"authportal/pkg/logger"
)

var (
	ErrValidation  = errors.New("profile validation failed")
	ErrEmptyUpload = errors.New("no image uploaded")
	ErrNoImageURL  = errors.New("backend returned no image url")
)

// TokenProvider hands out a backend bearer token for the caller's session
type TokenProvider interface {
	Token(ctx context.Context, r *http.Request) (string, error)
}

// Backend is the profile part of the backend API
type Backend interface {
	GetProfile(ctx context.Context, token string) (*backend.Profile, error)
	UpdateProfile(ctx context.Context, token string, profile backend.Profile) error
	UploadProfileImage(ctx context.Context, token, filename string, image io.Reader) (string, error)
}

type Service struct {
	tokens    TokenProvider
	backend   Backend
	cache     cache.Service
	validator *validation.Validator
	logger    *logger.Logger
	ttl       time.Duration
}

func NewService(tokens TokenProvider, be Backend, cacheService cache.Service, log *logger.Logger, ttl time.Duration) *Service {
	if log == nil {
		log = logger.GetDefault()
	}
	if ttl <= 0 {
		ttl = constants.TTL_USER_PROFILE
	}
	return &Service{
		tokens:    tokens,
		backend:   be,
		cache:     cacheService,
		validator: validation.Default(),
		logger:    log,
		ttl:       ttl,
	}
}

// Get loads the profile from the backend merged with the session user. When
// the backend cannot be reached the last observed profile is served, and
// failing that the session data alone.
func (s *Service) Get(ctx context.Context, r *http.Request, user users.SessionUser) (*View, error) {
	p, err := s.fetch(ctx, r)
	if err != nil {
		s.logger.LogGatewayFailure(ctx, "get-profile", err)
		if cached, ok := s.cached(ctx, user.ID); ok {
			return &View{Profile: merge(*cached, user), Source: SourceCache}, nil
		}
		return &View{Profile: merge(backend.Profile{}, user), Source: SourceSession}, nil
	}

	merged := merge(*p, user)
	s.remember(ctx, user.ID, merged)
	return &View{Profile: merged, Source: SourceBackend}, nil
}

// Update validates and saves the profile form. Field errors come back with ErrValidation.
func (s *Service) Update(ctx context.Context, r *http.Request, user users.SessionUser, form validation.ProfileUpdate) (validation.FieldErrors, error) {
	if errs := s.validator.Validate(form); !errs.Valid() {
		return errs, ErrValidation
	}

	token, err := s.tokens.Token(ctx, r)
	if err != nil {
		return nil, err
	}

	p := backend.Profile{
		Name:          form.Name,
		Email:         form.Email,
		Phone:         form.Phone,
		City:          form.City,
		State:         form.State,
		LinkedIn:      form.LinkedIn,
		PhoneVerified: form.PhoneVerified,
		Image:         form.Image,
	}
	if err := s.backend.UpdateProfile(ctx, token, p); err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}

	// last write wins; no version check against concurrent edits
	s.remember(ctx, user.ID, p)
	return nil, nil
}

// UploadImage stores a new avatar and returns its URL
func (s *Service) UploadImage(ctx context.Context, r *http.Request, user users.SessionUser, filename string, image io.Reader) (string, error) {
	if image == nil || filename == "" {
		return "", ErrEmptyUpload
	}

	token, err := s.tokens.Token(ctx, r)
	if err != nil {
		return "", err
	}

	imageURL, err := s.backend.UploadProfileImage(ctx, token, filename, image)
	if err != nil {
		return "", fmt.Errorf("failed to upload profile image: %w", err)
	}
	if imageURL == "" {
		return "", ErrNoImageURL
	}

	if cached, ok := s.cached(ctx, user.ID); ok {
		cached.Image = imageURL
		s.remember(ctx, user.ID, *cached)
	}
	return imageURL, nil
}

func (s *Service) fetch(ctx context.Context, r *http.Request) (*backend.Profile, error) {
	token, err := s.tokens.Token(ctx, r)
	if err != nil {
		return nil, err
	}
	return s.backend.GetProfile(ctx, token)
}

func (s *Service) cached(ctx context.Context, userID string) (*backend.Profile, bool) {
	if s.cache == nil || userID == "" {
		return nil, false
	}
	var p backend.Profile
	if err := s.cache.Get(ctx, constants.BuildUserProfileKey(userID), &p); err != nil {
		return nil, false
	}
	return &p, true
}

func (s *Service) remember(ctx context.Context, userID string, p backend.Profile) {
	if s.cache == nil || userID == "" {
		return
	}
	if err := s.cache.Set(ctx, constants.BuildUserProfileKey(userID), p, s.ttl); err != nil {
		s.logger.WarnContext(ctx, "Failed to cache profile", "error", err.Error())
	}
}

// merge fills name, email and image from the session when the backend left them empty
func merge(p backend.Profile, user users.SessionUser) backend.Profile {
	if p.Name == "" {
		p.Name = user.Name
	}
	if p.Email == "" {
		p.Email = user.Email
	}
	if p.Image == "" {
		p.Image = user.Image
	}
	return p
}
