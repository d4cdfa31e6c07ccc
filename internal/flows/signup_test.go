package flows

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"authportal/internal/gateway"
	"authportal/internal/validation"
)

func validRegistration() validation.RegistrationRequest {
	return validation.RegistrationRequest{
		FirstName:       "A",
		LastName:        "B",
		Email:           "a@b.com",
		Password:        "Abcdef12",
		ConfirmPassword: "Abcdef12",
	}
}

func TestSignUp_HappyPath(t *testing.T) {
	gw := newFakeGateway()
	m := NewSignUp(testDeps(gw, nil))

	out, err := m.Submit(context.Background(), validRegistration())
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if out.State != SignUpEmailSent || m.State() != SignUpEmailSent {
		t.Errorf("state = %v", out.State)
	}
	if m.Email() != "a@b.com" {
		t.Errorf("email = %q", m.Email())
	}
	if out.Notice == nil || out.Notice.Message != msgSignUpSuccess {
		t.Errorf("notice = %+v", out.Notice)
	}
}

func TestSignUp_ConfirmMismatchBlocksCall(t *testing.T) {
	gw := newFakeGateway()
	m := NewSignUp(testDeps(gw, nil))

	req := validRegistration()
	req.ConfirmPassword = "Abcdef13"
	out, err := m.Submit(context.Background(), req)
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if _, ok := out.FieldErrors["confirmPassword"]; !ok {
		t.Errorf("field errors = %v", out.FieldErrors)
	}
	if gw.total() != 0 {
		t.Errorf("gateway called %d times", gw.total())
	}
	if m.State() != SignUpForm {
		t.Errorf("state = %v", m.State())
	}
}

func TestSignUp_Errors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantField  string
		wantNotice string
	}{
		{"email taken", &gateway.Error{Status: 422, Message: "User already exists. Use another email."}, "email", ""},
		{"other", &gateway.Error{Status: 500, Message: "boom"}, "", msgSignUpFailed},
		{"transport", fmt.Errorf("%w: dial", gateway.ErrUnavailable), "", msgConnectionError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gw := newFakeGateway()
			gw.err = tt.err
			m := NewSignUp(testDeps(gw, nil))

			out, err := m.Submit(context.Background(), validRegistration())
			if err != nil {
				t.Fatalf("Submit() error = %v", err)
			}
			if out.State != SignUpForm {
				t.Errorf("state = %v", out.State)
			}
			if tt.wantField != "" && out.FieldErrors[tt.wantField] == "" {
				t.Errorf("missing field error on %s: %v", tt.wantField, out.FieldErrors)
			}
			if tt.wantNotice != "" && (out.Notice == nil || out.Notice.Message != tt.wantNotice) {
				t.Errorf("notice = %+v", out.Notice)
			}
			if m.Busy() {
				t.Error("busy flag stuck after failure")
			}
		})
	}
}

func TestSignUp_ResendCap(t *testing.T) {
	gw := newFakeGateway()
	m := NewSignUp(testDeps(gw, nil))
	ctx := context.Background()

	if _, err := m.Submit(ctx, validRegistration()); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}

	for i := 1; i <= 3; i++ {
		out, err := m.Resend(ctx)
		if err != nil {
			t.Fatalf("Resend() #%d error = %v", i, err)
		}
		if out.Notice.Level != NoticeSuccess {
			t.Fatalf("Resend() #%d notice = %+v", i, out.Notice)
		}
	}

	out, err := m.Resend(ctx)
	if err != nil {
		t.Fatalf("4th Resend() error = %v", err)
	}
	if out.Notice.Message != msgMaxResends {
		t.Errorf("notice = %+v", out.Notice)
	}
	if got := gw.count("send-verification-email"); got != 3 {
		t.Errorf("verification calls = %d, want 3", got)
	}
	if m.ResendCount() != 3 {
		t.Errorf("resend count = %d", m.ResendCount())
	}

	if _, err := m.Back(ctx); err != nil {
		t.Fatalf("Back() error = %v", err)
	}
	if m.ResendCount() != 0 || m.State() != SignUpForm {
		t.Errorf("after Back: count=%d state=%v", m.ResendCount(), m.State())
	}
}

func TestSignUp_FailedResendDoesNotCount(t *testing.T) {
	gw := newFakeGateway()
	m := NewSignUp(testDeps(gw, nil))
	ctx := context.Background()
	m.Submit(ctx, validRegistration())

	gw.errs["send-verification-email"] = errors.New("nope")
	out, err := m.Resend(ctx)
	if err != nil {
		t.Fatalf("Resend() error = %v", err)
	}
	if out.Notice.Message != msgVerificationRetry || m.ResendCount() != 0 {
		t.Errorf("notice = %+v count = %d", out.Notice, m.ResendCount())
	}
}

func TestSignUp_ResendOnlyFromEmailSent(t *testing.T) {
	m := NewSignUp(testDeps(newFakeGateway(), nil))
	if _, err := m.Resend(context.Background()); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("expected ErrInvalidTransition, got %v", err)
	}
}
