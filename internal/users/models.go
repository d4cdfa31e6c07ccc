package users

import (
	"strings"
	"time"
)

type Role string

const (
	RoleUser       Role = "USER"
	RoleAdmin      Role = "ADMIN"
	RoleSuperAdmin Role = "SUPER_ADMIN"
)

// SessionUser is the signed-in user as the portal exposes it: the auth
// service's user record plus the role looked up from the backend
type SessionUser struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	EmailVerified bool      `json:"emailVerified"`
	Image         string    `json:"image,omitempty"`
	Role          Role      `json:"role"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// Session is a materialised session
type Session struct {
	ID        string      `json:"id"`
	UserID    string      `json:"userId"`
	ExpiresAt time.Time   `json:"expiresAt"`
	User      SessionUser `json:"user"`
}

// ParseRole upper-cases a role string. Empty becomes RoleUser; anything else is
// kept as the backend reported it.
func ParseRole(role string) Role {
	role = strings.TrimSpace(role)
	if role == "" {
		return RoleUser
	}
	return Role(strings.ToUpper(role))
}

func IsValidRole(role string) bool {
	switch Role(strings.ToUpper(role)) {
	case RoleUser, RoleAdmin, RoleSuperAdmin:
		return true
	default:
		return false
	}
}
