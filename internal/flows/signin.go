package flows

import (
	"context"
	"strings"

	"authportal/internal/gateway"
	"authportal/internal/validation"
)

const (
	SignInForm                      State = "form"
	SignInEmailVerificationRequired State = "email-verification-required"
)

// SignIn drives email/password and social sign-in. An unverified account
// detours into a verification step with capped resends.
type SignIn struct {
	guard
	deps   Deps
	state  State
	email  string
	resend *ResendLoop
}

// NewSignIn starts a sign-in flow on the form step
func NewSignIn(deps Deps) *SignIn {
	m := &SignIn{deps: deps.withDefaults(), state: SignInForm}
	m.resend = NewResendLoop(m.deps.MaxResends, m.sendVerification, ResendMessages{
		Success: msgVerificationSent,
		Failure: msgVerificationRetry,
	})
	return m
}

func (m *SignIn) Kind() Kind { return KindSignIn }

func (m *SignIn) State() State { return m.state }

func (m *SignIn) Email() string { return m.email }

func (m *SignIn) ResendCount() int { return m.resend.Count() }

func (m *SignIn) Snapshot() Snapshot {
	return Snapshot{Kind: KindSignIn, State: m.state, Email: m.email, ResendCount: m.resend.Count()}
}

func (m *SignIn) restore(s Snapshot) {
	m.state = s.State
	m.email = s.Email
	m.resend.restore(s.ResendCount)
}

// Submit signs in. On success the outcome carries the session cookies and the
// post-login redirect; redirectTo is honoured only when it is a local path.
func (m *SignIn) Submit(ctx context.Context, creds validation.Credentials, redirectTo string) (Outcome, error) {
	if m.state != SignInForm {
		return Outcome{State: m.state}, ErrInvalidTransition
	}
	if errs := m.deps.Validator.Validate(creds); !errs.Valid() {
		return Outcome{State: m.state, FieldErrors: errs}, nil
	}
	if err := m.begin(); err != nil {
		return Outcome{State: m.state}, err
	}
	defer m.end()

	email := strings.TrimSpace(creds.Email)
	res, callErr := m.deps.Gateway.SignInEmail(ctx, gateway.SignInEmailRequest{
		Email:    email,
		Password: creds.Password,
	})
	if callErr != nil {
		m.deps.Logger.LogGatewayFailure(ctx, string(gateway.OpSignIn), callErr)
	}

	var out Outcome
	err := m.settle(func() {
		from := m.state
		switch gateway.Classify(gateway.OpSignIn, callErr) {
		case gateway.KindNone:
			m.deps.Logger.LogAuthSuccess(ctx, email, "email")
			out = Outcome{
				State:    m.state,
				Notice:   successNotice(msgSignInSuccess),
				Redirect: SafeRedirect(redirectTo),
			}
			if res != nil {
				out.Cookies = res.Cookies
			}
		case gateway.KindUnverifiedEmail:
			m.state = SignInEmailVerificationRequired
			m.email = email
			m.resend.Reset()
			out = Outcome{State: m.state, Notice: errorNotice(msgVerifyBeforeSignIn)}
		case gateway.KindUnavailable:
			out = Outcome{State: m.state, Notice: errorNotice(msgConnectionError)}
		default:
			// both fields, so the response does not reveal which one was wrong
			out = Outcome{
				State: m.state,
				FieldErrors: validation.FieldErrors{
					"email":    msgInvalidCredentials,
					"password": msgInvalidCredentials,
				},
				Notice: errorNotice(msgInvalidCredentials),
			}
		}
		m.deps.Logger.LogFlowTransition(ctx, string(KindSignIn), string(from), string(m.state))
	})
	return out, err
}

// Social starts an OAuth sign-in and returns the provider URL as the redirect
func (m *SignIn) Social(ctx context.Context) (Outcome, error) {
	if err := m.begin(); err != nil {
		return Outcome{State: m.state}, err
	}
	defer m.end()

	res, callErr := m.deps.Gateway.SignInSocial(ctx, gateway.SignInSocialRequest{
		Provider:           m.deps.SocialProvider,
		CallbackURL:        PathDashboard,
		ErrorCallbackURL:   PathError,
		NewUserCallbackURL: PathHome,
	})
	if callErr != nil {
		m.deps.Logger.LogGatewayFailure(ctx, string(gateway.OpSignInSocial), callErr)
	}

	var out Outcome
	err := m.settle(func() {
		if callErr != nil || res == nil || res.URL == "" {
			out = Outcome{State: m.state, Notice: errorNotice(msgSocialFailed)}
			return
		}
		out = Outcome{State: m.state, Redirect: res.URL}
	})
	return out, err
}

// Resend sends the verification email again, up to the resend cap
func (m *SignIn) Resend(ctx context.Context) (Outcome, error) {
	if m.state != SignInEmailVerificationRequired {
		return Outcome{State: m.state}, ErrInvalidTransition
	}
	notice, err := m.resend.Resend(ctx, &m.guard)
	return Outcome{State: m.state, Notice: notice}, err
}

// Back returns to the form and clears the resend counter
func (m *SignIn) Back(ctx context.Context) (Outcome, error) {
	var out Outcome
	err := m.settle(func() {
		from := m.state
		m.state = SignInForm
		m.email = ""
		m.resend.Reset()
		m.deps.Logger.LogFlowTransition(ctx, string(KindSignIn), string(from), string(m.state))
		out = Outcome{State: m.state}
	})
	return out, err
}

func (m *SignIn) sendVerification(ctx context.Context) error {
	_, err := m.deps.Gateway.SendVerificationEmail(ctx, gateway.SendVerificationEmailRequest{
		Email:       m.email,
		CallbackURL: PathDashboard,
	})
	if err != nil {
		m.deps.Logger.LogGatewayFailure(ctx, string(gateway.OpSendVerificationEmail), err)
	}
	return err
}

// SafeRedirect returns target when it is a local absolute path, otherwise the dashboard
func SafeRedirect(target string) string {
	if target == "" || !strings.HasPrefix(target, "/") {
		return PathDashboard
	}
	if strings.HasPrefix(target, "//") || strings.HasPrefix(target, "/\\") {
		return PathDashboard
	}
	return target
}
