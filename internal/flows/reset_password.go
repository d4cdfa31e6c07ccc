package flows

import (
	"context"
	"strings"

	"authportal/internal/gateway"
	"authportal/internal/validation"
)

const (
	ResetValidatingToken State = "validating-token"
	ResetForm            State = "reset"
	ResetSuccess         State = "success"
	ResetError           State = "error"
)

// ResetPassword sets a new password with the token carried by the emailed link
type ResetPassword struct {
	guard
	deps    Deps
	state   State
	token   string
	message string
}

// NewResetPassword creates a reset flow waiting for its token
func NewResetPassword(deps Deps) *ResetPassword {
	return &ResetPassword{deps: deps.withDefaults(), state: ResetValidatingToken}
}

func (m *ResetPassword) Kind() Kind { return KindResetPassword }

func (m *ResetPassword) State() State { return m.state }

// Message explains the error state
func (m *ResetPassword) Message() string { return m.message }

func (m *ResetPassword) Snapshot() Snapshot {
	return Snapshot{Kind: KindResetPassword, State: m.state, Token: m.token, Message: m.message}
}

func (m *ResetPassword) restore(s Snapshot) {
	m.state = s.State
	m.token = s.Token
	m.message = s.Message
}

// Start takes the token from the link. No token means the error step, without any call.
func (m *ResetPassword) Start(ctx context.Context, token string) (Outcome, error) {
	var out Outcome
	err := m.settle(func() {
		from := m.state
		m.token = strings.TrimSpace(token)
		if m.token == "" {
			m.state = ResetError
			m.message = msgMissingToken
		} else {
			m.state = ResetForm
			m.message = ""
		}
		m.deps.Logger.LogFlowTransition(ctx, string(KindResetPassword), string(from), string(m.state))
		out = Outcome{State: m.state}
	})
	return out, err
}

// Submit resets the password with the stored token
func (m *ResetPassword) Submit(ctx context.Context, req validation.NewPassword) (Outcome, error) {
	if m.state != ResetForm {
		return Outcome{State: m.state}, ErrInvalidTransition
	}
	if errs := m.deps.Validator.Validate(req); !errs.Valid() {
		return Outcome{State: m.state, FieldErrors: errs}, nil
	}
	if err := m.begin(); err != nil {
		return Outcome{State: m.state}, err
	}
	defer m.end()

	_, callErr := m.deps.Gateway.ResetPassword(ctx, gateway.ResetPasswordRequest{
		NewPassword: req.Password,
		Token:       m.token,
	})
	if callErr != nil {
		m.deps.Logger.LogGatewayFailure(ctx, string(gateway.OpResetPassword), callErr)
	}

	var out Outcome
	err := m.settle(func() {
		from := m.state
		switch gateway.Classify(gateway.OpResetPassword, callErr) {
		case gateway.KindNone:
			m.state = ResetSuccess
			m.token = ""
			out = Outcome{State: m.state, Notice: successNotice(msgResetSucceeded), Redirect: PathSignIn}
		case gateway.KindTokenExpired:
			m.state = ResetError
			m.message = msgTokenExpired
			out = Outcome{State: m.state, Notice: errorNotice(msgTokenExpiredHint)}
		case gateway.KindWeakPassword:
			out = Outcome{
				State:       m.state,
				FieldErrors: validation.FieldErrors{"password": msgPasswordRejected},
				Notice:      errorNotice(msgPasswordRejected),
			}
		case gateway.KindUnavailable:
			out = Outcome{State: m.state, Notice: errorNotice(msgConnectionError)}
		default:
			out = Outcome{State: m.state, Notice: errorNotice(msgResetFailed)}
		}
		m.deps.Logger.LogFlowTransition(ctx, string(KindResetPassword), string(from), string(m.state))
	})
	return out, err
}
