package users

import (
	"context"
	"net/http"

	"authportal/internal/gateway"
)

// RoleFetcher looks up a role string for a user; it never fails
type RoleFetcher interface {
	FetchRole(ctx context.Context, userID string) string
}

// SessionFetcher reads the caller's session from the auth service
type SessionFetcher interface {
	GetSession(ctx context.Context, cookies []*http.Cookie) (*gateway.SessionSnapshot, error)
}

// Roles resolves the role attached to a session. There is no caching: the
// lookup runs once per session materialisation.
type Roles struct {
	fetcher RoleFetcher
}

func NewRoles(fetcher RoleFetcher) *Roles {
	return &Roles{fetcher: fetcher}
}

// Resolve returns the user's role, RoleUser when the lookup yields nothing
func (r *Roles) Resolve(ctx context.Context, userID string) Role {
	if r == nil || r.fetcher == nil || userID == "" {
		return RoleUser
	}
	return ParseRole(r.fetcher.FetchRole(ctx, userID))
}

// Sessions materialises the caller's session with its role
type Sessions struct {
	gateway SessionFetcher
	roles   *Roles
}

func NewSessions(gw SessionFetcher, roles *Roles) *Sessions {
	return &Sessions{gateway: gw, roles: roles}
}

// Current returns the session carried by cookies, or gateway.ErrNoSession
func (s *Sessions) Current(ctx context.Context, cookies []*http.Cookie) (*Session, error) {
	snap, err := s.gateway.GetSession(ctx, cookies)
	if err != nil {
		return nil, err
	}

	u := snap.User
	return &Session{
		ID:        snap.Session.ID,
		UserID:    u.ID,
		ExpiresAt: snap.Session.ExpiresAt,
		User: SessionUser{
			ID:            u.ID,
			Name:          u.Name,
			Email:         u.Email,
			EmailVerified: u.EmailVerified,
			Image:         u.Image,
			Role:          s.roles.Resolve(ctx, u.ID),
			CreatedAt:     u.CreatedAt,
			UpdatedAt:     u.UpdatedAt,
		},
	}, nil
}
