package flows

import (
	"context"
	"strings"

	"authportal/internal/gateway"
	"authportal/internal/validation"
)

const (
	ForgotPasswordEmail     State = "email"
	ForgotPasswordEmailSent State = "email-sent"
)

// ForgotPassword requests a reset link and lets the user resend it
type ForgotPassword struct {
	guard
	deps   Deps
	state  State
	email  string
	resend *ResendLoop
}

// NewForgotPassword starts a forgot-password flow on the email step
func NewForgotPassword(deps Deps) *ForgotPassword {
	m := &ForgotPassword{deps: deps.withDefaults(), state: ForgotPasswordEmail}
	m.resend = NewResendLoop(m.deps.MaxResends, m.requestLink, ResendMessages{
		Success: msgResetEmailSent,
		Failure: msgResetEmailRetry,
	})
	return m
}

func (m *ForgotPassword) Kind() Kind { return KindForgotPassword }

func (m *ForgotPassword) State() State { return m.state }

func (m *ForgotPassword) Email() string { return m.email }

func (m *ForgotPassword) ResendCount() int { return m.resend.Count() }

func (m *ForgotPassword) Snapshot() Snapshot {
	return Snapshot{Kind: KindForgotPassword, State: m.state, Email: m.email, ResendCount: m.resend.Count()}
}

func (m *ForgotPassword) restore(s Snapshot) {
	m.state = s.State
	m.email = s.Email
	m.resend.restore(s.ResendCount)
}

// Submit asks for a reset link. Only an unknown account keeps the user on the email step
// with a field error; other failures just notify.
func (m *ForgotPassword) Submit(ctx context.Context, req validation.ResetRequest) (Outcome, error) {
	if m.state != ForgotPasswordEmail {
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
	_, callErr := m.deps.Gateway.ForgetPassword(ctx, gateway.ForgetPasswordRequest{
		Email:      email,
		RedirectTo: PathResetPassword,
	})
	if callErr != nil {
		m.deps.Logger.LogGatewayFailure(ctx, string(gateway.OpForgetPassword), callErr)
	}

	var out Outcome
	err := m.settle(func() {
		from := m.state
		switch gateway.Classify(gateway.OpForgetPassword, callErr) {
		case gateway.KindNone:
			m.state = ForgotPasswordEmailSent
			m.email = email
			m.resend.Reset()
			out = Outcome{State: m.state, Notice: successNotice(msgResetLinkSent)}
		case gateway.KindAccountNotFound:
			out = Outcome{
				State:       m.state,
				FieldErrors: validation.FieldErrors{"email": msgAccountNotFound},
				Notice:      errorNotice(msgAccountNotFound + "."),
			}
		case gateway.KindUnavailable:
			out = Outcome{State: m.state, Notice: errorNotice(msgConnectionError)}
		default:
			out = Outcome{State: m.state, Notice: errorNotice(msgResetLinkFailed)}
		}
		m.deps.Logger.LogFlowTransition(ctx, string(KindForgotPassword), string(from), string(m.state))
	})
	return out, err
}

// Resend requests the reset link again, up to the resend cap
func (m *ForgotPassword) Resend(ctx context.Context) (Outcome, error) {
	if m.state != ForgotPasswordEmailSent {
		return Outcome{State: m.state}, ErrInvalidTransition
	}
	notice, err := m.resend.Resend(ctx, &m.guard)
	return Outcome{State: m.state, Notice: notice}, err
}

// Back returns to the email step and clears the resend counter
func (m *ForgotPassword) Back(ctx context.Context) (Outcome, error) {
	var out Outcome
	err := m.settle(func() {
		from := m.state
		m.state = ForgotPasswordEmail
		m.email = ""
		m.resend.Reset()
		m.deps.Logger.LogFlowTransition(ctx, string(KindForgotPassword), string(from), string(m.state))
		out = Outcome{State: m.state}
	})
	return out, err
}

func (m *ForgotPassword) requestLink(ctx context.Context) error {
	_, err := m.deps.Gateway.ForgetPassword(ctx, gateway.ForgetPasswordRequest{
		Email:      m.email,
		RedirectTo: PathResetPassword,
	})
	if err != nil {
		m.deps.Logger.LogGatewayFailure(ctx, string(gateway.OpForgetPassword), err)
	}
	return err
}
