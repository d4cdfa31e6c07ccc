package flows

import (
	"context"
	"errors"
	"net/http"
	"sync"

	"authportal/internal/backend"
	"authportal/internal/gateway"
	"authportal/internal/validation"
	"authportal/pkg/logger"
)

var (
	// ErrBusy is returned when a flow already has a call in flight
	ErrBusy = errors.New("flow is busy")
	// ErrDisposed is returned when a flow was disposed while its call was in flight
	ErrDisposed = errors.New("flow disposed")
	// ErrInvalidTransition is returned for an action the current state does not accept
	ErrInvalidTransition = errors.New("invalid transition")
	// ErrFlowNotFound is returned when no snapshot exists for a flow id
	ErrFlowNotFound = errors.New("flow not found")
)

// Kind identifies a flow type
type Kind string

const (
	KindSignUp             Kind = "sign-up"
	KindSignIn             Kind = "sign-in"
	KindForgotPassword     Kind = "forgot-password"
	KindResetPassword      Kind = "reset-password"
	KindPasswordManagement Kind = "password-management"
)

// State is a step of a flow
type State string

// NoticeLevel mirrors the toast variants of the client
type NoticeLevel string

const (
	NoticeSuccess NoticeLevel = "success"
	NoticeError   NoticeLevel = "error"
)

// Notice is a transient message for the user
type Notice struct {
	Level   NoticeLevel `json:"level"`
	Message string      `json:"message"`
}

func successNotice(msg string) *Notice { return &Notice{Level: NoticeSuccess, Message: msg} }
func errorNotice(msg string) *Notice   { return &Notice{Level: NoticeError, Message: msg} }

// Outcome is the result of one flow action
type Outcome struct {
	State       State                  `json:"state"`
	FieldErrors validation.FieldErrors `json:"fieldErrors,omitempty"`
	Notice      *Notice                `json:"notice,omitempty"`
	Redirect    string                 `json:"redirect,omitempty"`
	Cookies     []*http.Cookie         `json:"-"`
}

// Snapshot is the serialisable form of any flow
type Snapshot struct {
	Kind        Kind   `json:"kind"`
	State       State  `json:"state"`
	Email       string `json:"email,omitempty"`
	Token       string `json:"token,omitempty"`
	OTP         string `json:"otp,omitempty"`
	ResendCount int    `json:"resendCount"`
	Message     string `json:"message,omitempty"`
}

// Machine is implemented by every flow
type Machine interface {
	Kind() Kind
	State() State
	Snapshot() Snapshot
	Busy() bool
	Dispose()
}

// AuthGateway is the part of the auth service the flows call
type AuthGateway interface {
	SignUpEmail(ctx context.Context, req gateway.SignUpEmailRequest) (*gateway.SignUpResult, error)
	SignInEmail(ctx context.Context, req gateway.SignInEmailRequest) (*gateway.SignInResult, error)
	SignInSocial(ctx context.Context, req gateway.SignInSocialRequest) (*gateway.SocialResult, error)
	ForgetPassword(ctx context.Context, req gateway.ForgetPasswordRequest) (*gateway.StatusResult, error)
	ResetPassword(ctx context.Context, req gateway.ResetPasswordRequest) (*gateway.StatusResult, error)
	SendVerificationEmail(ctx context.Context, req gateway.SendVerificationEmailRequest) (*gateway.StatusResult, error)
}

// ResetCodeBackend is the part of the backend used by the OTP reset panel
type ResetCodeBackend interface {
	VerifyResetOTP(ctx context.Context, email, otp string) error
	ResetPasswordWithOTP(ctx context.Context, req backend.ResetWithOTPRequest) error
}

// Deps are shared by all machines
type Deps struct {
	Gateway        AuthGateway
	Backend        ResetCodeBackend
	Validator      *validation.Validator
	Logger         *logger.Logger
	MaxResends     int
	SocialProvider string
}

func (d Deps) withDefaults() Deps {
	if d.Validator == nil {
		d.Validator = validation.Default()
	}
	if d.Logger == nil {
		d.Logger = logger.GetDefault()
	}
	if d.MaxResends <= 0 {
		d.MaxResends = 3
	}
	if d.SocialProvider == "" {
		d.SocialProvider = "google"
	}
	return d
}

// guard is the busy flag plus disposal token every machine embeds.
// Only the holder of the busy flag mutates the machine, and only through settle.
type guard struct {
	mu       sync.Mutex
	busy     bool
	disposed bool
}

func (g *guard) begin() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.disposed {
		return ErrDisposed
	}
	if g.busy {
		return ErrBusy
	}
	g.busy = true
	return nil
}

func (g *guard) end() {
	g.mu.Lock()
	g.busy = false
	g.mu.Unlock()
}

// settle applies fn unless the machine was disposed while the call was in flight
func (g *guard) settle(fn func()) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.disposed {
		return ErrDisposed
	}
	fn()
	return nil
}

// Busy reports whether a call is in flight
func (g *guard) Busy() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.busy
}

// Dispose cancels the machine; late results are dropped
func (g *guard) Dispose() {
	g.mu.Lock()
	g.disposed = true
	g.mu.Unlock()
}

// ResendMessages are the notices a resend loop shows
type ResendMessages struct {
	Success string
	Failure string
}

// ResendAction performs one resend
type ResendAction func(ctx context.Context) error

// ResendLoop is the capped "send it again" sub-state shared by the email-sent steps.
// There is no cooldown; the cap is the only limit.
type ResendLoop struct {
	max      int
	count    int
	action   ResendAction
	messages ResendMessages
}

// NewResendLoop creates a loop that allows limit successful resends
func NewResendLoop(limit int, action ResendAction, messages ResendMessages) *ResendLoop {
	return &ResendLoop{max: limit, action: action, messages: messages}
}

// Count is the number of successful resends so far
func (r *ResendLoop) Count() int { return r.count }

// Exhausted reports whether the cap was reached
func (r *ResendLoop) Exhausted() bool { return r.count >= r.max }

// Reset clears the counter
func (r *ResendLoop) Reset() { r.count = 0 }

func (r *ResendLoop) restore(count int) {
	if count < 0 {
		count = 0
	}
	if count > r.max {
		count = r.max
	}
	r.count = count
}

// Resend runs the action under g unless the cap is reached.
// The action error is reported through the returned notice.
func (r *ResendLoop) Resend(ctx context.Context, g *guard) (*Notice, error) {
	if r.Exhausted() {
		return errorNotice(msgMaxResends), nil
	}
	if err := g.begin(); err != nil {
		return nil, err
	}
	defer g.end()

	actionErr := r.action(ctx)

	var notice *Notice
	if err := g.settle(func() {
		if actionErr != nil {
			notice = errorNotice(r.messages.Failure)
			return
		}
		r.count++
		notice = successNotice(r.messages.Success)
	}); err != nil {
		return nil, err
	}
	return notice, nil
}
