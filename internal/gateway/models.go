package gateway

import (
	"net/http"
	"time"
)

// User is the account as reported by the auth service
type User struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	EmailVerified bool      `json:"emailVerified"`
	Image         string    `json:"image,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// Session is the server-side session record behind the session cookie
type Session struct {
	ID        string    `json:"id"`
	Token     string    `json:"token"`
	UserID    string    `json:"userId"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// SessionSnapshot is what get-session returns for a signed-in caller
type SessionSnapshot struct {
	Session Session `json:"session"`
	User    User    `json:"user"`
}

// SignInEmailRequest represents the email/password sign-in payload
type SignInEmailRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	CallbackURL string `json:"callbackURL,omitempty"`
}

// SignInSocialRequest starts an OAuth sign-in with a provider
type SignInSocialRequest struct {
	Provider           string `json:"provider"`
	CallbackURL        string `json:"callbackURL,omitempty"`
	ErrorCallbackURL   string `json:"errorCallbackURL,omitempty"`
	NewUserCallbackURL string `json:"newUserCallbackURL,omitempty"`
}

// SignUpEmailRequest represents the registration payload
type SignUpEmailRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	Name        string `json:"name"`
	CallbackURL string `json:"callbackURL,omitempty"`
}

// ForgetPasswordRequest asks the auth service to send a reset link
type ForgetPasswordRequest struct {
	Email      string `json:"email"`
	RedirectTo string `json:"redirectTo,omitempty"`
}

// ResetPasswordRequest sets a new password using a reset token
type ResetPasswordRequest struct {
	NewPassword string `json:"newPassword"`
	Token       string `json:"token"`
}

// SendVerificationEmailRequest asks for another verification email
type SendVerificationEmailRequest struct {
	Email       string `json:"email"`
	CallbackURL string `json:"callbackURL,omitempty"`
}

// SignInResult is returned by a successful email sign-in.
// Cookies holds the session cookies the auth service set on its response.
type SignInResult struct {
	Redirect bool           `json:"redirect"`
	Token    string         `json:"token"`
	URL      string         `json:"url,omitempty"`
	User     User           `json:"user"`
	Cookies  []*http.Cookie `json:"-"`
}

// SignUpResult is returned by a successful registration
type SignUpResult struct {
	Token *string `json:"token"`
	User  User    `json:"user"`
}

// SocialResult carries the provider authorization URL
type SocialResult struct {
	URL      string `json:"url"`
	Redirect bool   `json:"redirect"`
}

// StatusResult is the generic {status:true} acknowledgement
type StatusResult struct {
	Status  bool   `json:"status"`
	Message string `json:"message,omitempty"`
}

// TokenResult carries a bearer token for backend calls
type TokenResult struct {
	Token string `json:"token"`
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
