package flows

import (
	"context"
	"strings"

	"authportal/internal/gateway"
	"authportal/internal/validation"
)

const (
	SignUpForm      State = "form"
	SignUpEmailSent State = "email-sent"
)

// SignUp drives registration: form, then a verification-email step with capped resends
type SignUp struct {
	guard
	deps   Deps
	state  State
	email  string
	resend *ResendLoop
}

// NewSignUp starts a sign-up flow on the form step
func NewSignUp(deps Deps) *SignUp {
	m := &SignUp{deps: deps.withDefaults(), state: SignUpForm}
	m.resend = NewResendLoop(m.deps.MaxResends, m.sendVerification, ResendMessages{
		Success: msgVerificationSent,
		Failure: msgVerificationRetry,
	})
	return m
}

func (m *SignUp) Kind() Kind { return KindSignUp }

func (m *SignUp) State() State { return m.state }

// Email is the address the verification email went to
func (m *SignUp) Email() string { return m.email }

func (m *SignUp) ResendCount() int { return m.resend.Count() }

func (m *SignUp) Snapshot() Snapshot {
	return Snapshot{Kind: KindSignUp, State: m.state, Email: m.email, ResendCount: m.resend.Count()}
}

func (m *SignUp) restore(s Snapshot) {
	m.state = s.State
	m.email = s.Email
	m.resend.restore(s.ResendCount)
}

// Submit registers the account and moves to the email-sent step
func (m *SignUp) Submit(ctx context.Context, req validation.RegistrationRequest) (Outcome, error) {
	if m.state != SignUpForm {
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
	_, callErr := m.deps.Gateway.SignUpEmail(ctx, gateway.SignUpEmailRequest{
		Email:       email,
		Password:    req.Password,
		Name:        strings.TrimSpace(req.FirstName + " " + req.LastName),
		CallbackURL: PathVerifyEmail,
	})
	if callErr != nil {
		m.deps.Logger.LogGatewayFailure(ctx, string(gateway.OpSignUp), callErr)
	}

	var out Outcome
	err := m.settle(func() {
		from := m.state
		out = m.applySubmit(email, callErr)
		m.deps.Logger.LogFlowTransition(ctx, string(KindSignUp), string(from), string(m.state))
	})
	return out, err
}

func (m *SignUp) applySubmit(email string, callErr error) Outcome {
	switch gateway.Classify(gateway.OpSignUp, callErr) {
	case gateway.KindNone:
		m.state = SignUpEmailSent
		m.email = email
		m.resend.Reset()
		return Outcome{State: m.state, Notice: successNotice(msgSignUpSuccess)}
	case gateway.KindEmailTaken:
		return Outcome{State: m.state, FieldErrors: validation.FieldErrors{"email": msgEmailTaken}}
	case gateway.KindUnavailable:
		return Outcome{State: m.state, Notice: errorNotice(msgConnectionError)}
	default:
		return Outcome{State: m.state, Notice: errorNotice(msgSignUpFailed)}
	}
}

// Resend sends the verification email again, up to the resend cap
func (m *SignUp) Resend(ctx context.Context) (Outcome, error) {
	if m.state != SignUpEmailSent {
		return Outcome{State: m.state}, ErrInvalidTransition
	}
	notice, err := m.resend.Resend(ctx, &m.guard)
	return Outcome{State: m.state, Notice: notice}, err
}

// Back returns to the form and clears the resend counter
func (m *SignUp) Back(ctx context.Context) (Outcome, error) {
	var out Outcome
	err := m.settle(func() {
		from := m.state
		m.state = SignUpForm
		m.email = ""
		m.resend.Reset()
		m.deps.Logger.LogFlowTransition(ctx, string(KindSignUp), string(from), string(m.state))
		out = Outcome{State: m.state}
	})
	return out, err
}

func (m *SignUp) sendVerification(ctx context.Context) error {
	_, err := m.deps.Gateway.SendVerificationEmail(ctx, gateway.SendVerificationEmailRequest{
		Email:       m.email,
		CallbackURL: PathVerifyEmail,
	})
	if err != nil {
		m.deps.Logger.LogGatewayFailure(ctx, string(gateway.OpSendVerificationEmail), err)
	}
	return err
}
