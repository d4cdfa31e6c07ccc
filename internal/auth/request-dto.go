package auth

import "authportal/internal/validation"

// sign-in request payload; redirect is the page the gate bounced the user from
type SignInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Redirect string `json:"redirect,omitempty"`
}

func (r SignInRequest) credentials() validation.Credentials {
	return validation.Credentials{Email: r.Email, Password: r.Password}
}

// reset-password request payload; the token comes from the emailed link and is
// only needed when the page route has not seen it yet
type ResetPasswordRequest struct {
	Token           string `json:"token,omitempty"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

func (r ResetPasswordRequest) newPassword() validation.NewPassword {
	return validation.NewPassword{Password: r.Password, ConfirmPassword: r.ConfirmPassword}
}
