package gateway

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	// ErrUnavailable wraps transport failures talking to the auth service
	ErrUnavailable = errors.New("auth service unavailable")
	// ErrNoSession is returned when the caller has no session on the auth service
	ErrNoSession = errors.New("no active session")
)

// Error is a non-2xx answer from the auth service.
// Only Message is reliably populated; Status and Code depend on the endpoint.
type Error struct {
	Status  int
	Code    string
	Message string
}

func (e *Error) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("auth service: %d %s: %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("auth service: %d: %s", e.Status, e.Message)
}

// Operation names the gateway call an error came from
type Operation string

const (
	OpSignIn                Operation = "sign-in"
	OpSignInSocial          Operation = "sign-in-social"
	OpSignUp                Operation = "sign-up"
	OpSignOut               Operation = "sign-out"
	OpForgetPassword        Operation = "forget-password"
	OpResetPassword         Operation = "reset-password"
	OpSendVerificationEmail Operation = "send-verification-email"
	OpToken                 Operation = "token"
	OpGetSession            Operation = "get-session"
)

// Kind is the closed set of causes flows react to
type Kind int

const (
	KindNone Kind = iota
	KindUnknown
	KindUnavailable
	KindEmailTaken
	KindUnverifiedEmail
	KindAccountNotFound
	KindTokenExpired
	KindWeakPassword
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindUnavailable:
		return "unavailable"
	case KindEmailTaken:
		return "email_taken"
	case KindUnverifiedEmail:
		return "unverified_email"
	case KindAccountNotFound:
		return "account_not_found"
	case KindTokenExpired:
		return "token_expired"
	case KindWeakPassword:
		return "weak_password"
	default:
		return "unknown"
	}
}

// Classify maps a raw gateway error to a Kind. The auth service has no stable
// error taxonomy, so recognition is by message text and only for the operation
// that can produce the cause; everything else is KindUnknown.
func Classify(op Operation, err error) Kind {
	if err == nil {
		return KindNone
	}
	if errors.Is(err, ErrUnavailable) {
		return KindUnavailable
	}

	var gwErr *Error
	if !errors.As(err, &gwErr) {
		return KindUnknown
	}
	msg := strings.ToLower(gwErr.Message)

	switch op {
	case OpSignUp:
		if strings.Contains(msg, "email") {
			return KindEmailTaken
		}
	case OpSignIn:
		if gwErr.Status == http.StatusForbidden || containsAny(msg, "verify", "unverified") {
			return KindUnverifiedEmail
		}
	case OpForgetPassword:
		if containsAny(msg, "not found", "exist") {
			return KindAccountNotFound
		}
	case OpResetPassword:
		if containsAny(msg, "expired", "invalid") {
			return KindTokenExpired
		}
		if containsAny(msg, "weak", "password") {
			return KindWeakPassword
		}
	}
	return KindUnknown
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
