package flows

import (
	"context"
	"strings"

	"authportal/internal/backend"
	"authportal/internal/gateway"
	"authportal/internal/validation"
)

const (
	PasswordMenu         State = "menu"
	PasswordForgot       State = "forgot"
	PasswordVerifyToken  State = "verify-token"
	PasswordNewPassword  State = "new-password"
	PasswordResetSuccess State = "reset-success"
)

// PasswordManagement is the profile panel's code-based reset: request a code,
// verify it with the backend, then set the new password with the verified pair.
type PasswordManagement struct {
	guard
	deps  Deps
	state State
	email string
	otp   string
}

// NewPasswordManagement starts the panel on its menu
func NewPasswordManagement(deps Deps) *PasswordManagement {
	return &PasswordManagement{deps: deps.withDefaults(), state: PasswordMenu}
}

func (m *PasswordManagement) Kind() Kind { return KindPasswordManagement }

func (m *PasswordManagement) State() State { return m.state }

func (m *PasswordManagement) Email() string { return m.email }

func (m *PasswordManagement) Snapshot() Snapshot {
	return Snapshot{Kind: KindPasswordManagement, State: m.state, Email: m.email, OTP: m.otp}
}

func (m *PasswordManagement) restore(s Snapshot) {
	m.state = s.State
	m.email = s.Email
	m.otp = s.OTP
}

// Open moves from the menu to the email step
func (m *PasswordManagement) Open(ctx context.Context) (Outcome, error) {
	if m.state != PasswordMenu {
		return Outcome{State: m.state}, ErrInvalidTransition
	}
	return m.move(ctx, PasswordForgot)
}

// SubmitEmail asks for a reset code. The step advances whatever the auth service answers.
func (m *PasswordManagement) SubmitEmail(ctx context.Context, req validation.ResetRequest) (Outcome, error) {
	if m.state != PasswordForgot {
		return Outcome{State: m.state}, ErrInvalidTransition
	}
	if errs := m.deps.Validator.Validate(req); !errs.Valid() {
		return Outcome{State: m.state, FieldErrors: errs}, nil
	}
	if err := m.begin(); err != nil {
		return Outcome{State: m.state}, err
	}
	defer m.end()

	email := strings.TrimSpace(req.Email)
	if _, callErr := m.deps.Gateway.ForgetPassword(ctx, gateway.ForgetPasswordRequest{Email: email}); callErr != nil {
		m.deps.Logger.LogGatewayFailure(ctx, string(gateway.OpForgetPassword), callErr)
	}

	var out Outcome
	err := m.settle(func() {
		from := m.state
		m.state = PasswordVerifyToken
		m.email = email
		m.otp = ""
		m.deps.Logger.LogFlowTransition(ctx, string(KindPasswordManagement), string(from), string(m.state))
		out = Outcome{State: m.state, Notice: successNotice(msgResetCodeSent)}
	})
	return out, err
}

// SubmitOTP verifies the code with the backend and carries the verified pair forward
func (m *PasswordManagement) SubmitOTP(ctx context.Context, req validation.OTPCode) (Outcome, error) {
	if m.state != PasswordVerifyToken {
		return Outcome{State: m.state}, ErrInvalidTransition
	}
	if errs := m.deps.Validator.Validate(req); !errs.Valid() {
		return Outcome{State: m.state, FieldErrors: errs}, nil
	}
	if err := m.begin(); err != nil {
		return Outcome{State: m.state}, err
	}
	defer m.end()

	callErr := m.deps.Backend.VerifyResetOTP(ctx, m.email, req.OTP)
	if callErr != nil {
		m.deps.Logger.LogGatewayFailure(ctx, "verify-reset-otp", callErr)
	}

	var out Outcome
	err := m.settle(func() {
		if callErr != nil {
			out = Outcome{State: m.state, Notice: errorNotice(msgResetCodeInvalid)}
			return
		}
		from := m.state
		m.state = PasswordNewPassword
		m.otp = req.OTP
		m.deps.Logger.LogFlowTransition(ctx, string(KindPasswordManagement), string(from), string(m.state))
		out = Outcome{State: m.state, Notice: successNotice(msgResetCodeVerified)}
	})
	return out, err
}

// SubmitNewPassword sets the password through the backend's code-based endpoint
func (m *PasswordManagement) SubmitNewPassword(ctx context.Context, req validation.OTPNewPassword) (Outcome, error) {
	if m.state != PasswordNewPassword {
		return Outcome{State: m.state}, ErrInvalidTransition
	}
	if errs := m.deps.Validator.Validate(req); !errs.Valid() {
		return Outcome{State: m.state, FieldErrors: errs}, nil
	}
	if err := m.begin(); err != nil {
		return Outcome{State: m.state}, err
	}
	defer m.end()

	callErr := m.deps.Backend.ResetPasswordWithOTP(ctx, backend.ResetWithOTPRequest{
		Email:       m.email,
		OTP:         m.otp,
		NewPassword: req.NewPassword,
	})
	if callErr != nil {
		m.deps.Logger.LogGatewayFailure(ctx, "reset-password-with-otp", callErr)
	}

	var out Outcome
	err := m.settle(func() {
		if callErr != nil {
			out = Outcome{State: m.state, Notice: errorNotice(msgOTPResetFailed)}
			return
		}
		from := m.state
		m.state = PasswordResetSuccess
		m.otp = ""
		m.deps.Logger.LogFlowTransition(ctx, string(KindPasswordManagement), string(from), string(m.state))
		out = Outcome{State: m.state, Notice: successNotice(msgOTPResetSucceeded)}
	})
	return out, err
}

// Back returns to the menu and forgets the email and code
func (m *PasswordManagement) Back(ctx context.Context) (Outcome, error) {
	return m.move(ctx, PasswordMenu)
}

func (m *PasswordManagement) move(ctx context.Context, to State) (Outcome, error) {
	var out Outcome
	err := m.settle(func() {
		from := m.state
		m.state = to
		if to == PasswordMenu || to == PasswordForgot {
			m.email = ""
			m.otp = ""
		}
		m.deps.Logger.LogFlowTransition(ctx, string(KindPasswordManagement), string(from), string(m.state))
		out = Outcome{State: m.state}
	})
	return out, err
}
