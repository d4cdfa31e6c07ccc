package auth

import (
	"authportal/internal/flows"
	"authportal/internal/users"
)

// FlowView is what a client needs to render the current step of a flow
type FlowView struct {
	Flow        flows.Kind    `json:"flow"`
	State       flows.State   `json:"state"`
	Email       string        `json:"email,omitempty"`
	ResendCount int           `json:"resendCount"`
	MaxResends  int           `json:"maxResends,omitempty"`
	Message     string        `json:"message,omitempty"`
	Notice      *flows.Notice `json:"notice,omitempty"`
	Redirect    string        `json:"redirect,omitempty"`
}

// SessionResponse is the signed-in user as the client sees it
type SessionResponse struct {
	User      users.SessionUser `json:"user"`
	SessionID string            `json:"sessionId"`
	ExpiresAt string            `json:"expiresAt"`
}

// PageResponse describes a page route
type PageResponse struct {
	Page          string             `json:"page"`
	Authenticated bool               `json:"authenticated"`
	User          *users.SessionUser `json:"user,omitempty"`
	Flow          *FlowView          `json:"flow,omitempty"`
}

// SignOutResponse tells the client where to go after signing out
type SignOutResponse struct {
	Redirect string `json:"redirect"`
}
