package validation

// Credentials is the sign-in form
type Credentials struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RegistrationRequest is the sign-up form
type RegistrationRequest struct {
	FirstName       string `json:"firstName" validate:"required"`
	LastName        string `json:"lastName" validate:"required"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"password_policy"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=Password"`
}

// ResetRequest asks for a password reset link or code
type ResetRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// NewPassword is the token-based reset form
type NewPassword struct {
	Password        string `json:"password" validate:"password_policy"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=Password"`
}

// OTPCode is the 6-digit reset code typed into the profile panel
type OTPCode struct {
	OTP string `json:"otp" validate:"required,len=6,numeric"`
}

// OTPNewPassword is the last step of the profile panel reset
type OTPNewPassword struct {
	NewPassword     string `json:"newPassword" validate:"required,min=8"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=NewPassword"`
}

// ProfileUpdate is the editable part of the user profile
type ProfileUpdate struct {
	Name          string `json:"name" validate:"required"`
	Email         string `json:"email" validate:"required,email"`
	Phone         string `json:"phone"`
	City          string `json:"city"`
	State         string `json:"state"`
	LinkedIn      string `json:"linkedin" validate:"omitempty,url"`
	PhoneVerified bool   `json:"phoneVerified"`
	Image         string `json:"image"`
}
