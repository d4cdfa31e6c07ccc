package gateway

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		op   Operation
		err  error
		want Kind
	}{
		{"nil", OpSignIn, nil, KindNone},
		{"transport", OpSignIn, fmt.Errorf("%w: dial", ErrUnavailable), KindUnavailable},
		{"foreign error", OpSignIn, errors.New("something"), KindUnknown},
		{"signup email taken", OpSignUp, &Error{Status: 422, Message: "User already exists. Use another email."}, KindEmailTaken},
		{"signup other", OpSignUp, &Error{Status: 500, Message: "Internal"}, KindUnknown},
		{"signin forbidden", OpSignIn, &Error{Status: http.StatusForbidden, Message: "Forbidden"}, KindUnverifiedEmail},
		{"signin verify text", OpSignIn, &Error{Status: 401, Message: "Please Verify your email"}, KindUnverifiedEmail},
		{"signin bad creds", OpSignIn, &Error{Status: 401, Message: "Invalid email or password"}, KindUnknown},
		{"forgot not found", OpForgetPassword, &Error{Status: 400, Message: "User not found"}, KindAccountNotFound},
		{"forgot does not exist", OpForgetPassword, &Error{Status: 400, Message: "Account does not exist"}, KindAccountNotFound},
		{"reset invalid token", OpResetPassword, &Error{Status: 400, Message: "Invalid token"}, KindTokenExpired},
		{"reset expired", OpResetPassword, &Error{Status: 400, Message: "token expired"}, KindTokenExpired},
		{"reset weak", OpResetPassword, &Error{Status: 400, Message: "Password too short"}, KindWeakPassword},
		{"email text outside signup", OpForgetPassword, &Error{Status: 400, Message: "email rejected"}, KindUnknown},
		{"wrapped", OpSignUp, fmt.Errorf("ctx: %w", &Error{Message: "email in use"}), KindEmailTaken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.op, tt.err); got != tt.want {
				t.Errorf("Classify() = %v, want %v", got, tt.want)
			}
		})
	}
}
