package backend

// Profile is the extended user profile stored by the backend
type Profile struct {
	Name          string `json:"name"`
	Email         string `json:"email"`
	Phone         string `json:"phone"`
	City          string `json:"city"`
	State         string `json:"state"`
	LinkedIn      string `json:"linkedin"`
	PhoneVerified bool   `json:"phoneVerified"`
	Image         string `json:"image"`
}

// ImageUploadResult is the backend's answer to a profile image upload.
// Depending on the backend version the URL arrives as imageUrl or user.image.
type ImageUploadResult struct {
	ImageURL string `json:"imageUrl"`
	User     *struct {
		Image string `json:"image"`
	} `json:"user,omitempty"`
}

// URL returns whichever image URL the backend populated
func (r ImageUploadResult) URL() string {
	if r.ImageURL != "" {
		return r.ImageURL
	}
	if r.User != nil {
		return r.User.Image
	}
	return ""
}

// EmailPurpose selects which transactional email the backend sends
type EmailPurpose string

const (
	PurposeEmailVerification EmailPurpose = "email-verification"
	PurposeForgotPassword    EmailPurpose = "forgot-password"
	PurposeResetPassword     EmailPurpose = "reset-password"
)

var emailPaths = map[EmailPurpose]string{
	PurposeEmailVerification: "/users/email-verification",
	PurposeForgotPassword:    "/users/forgot-password",
	PurposeResetPassword:     "/users/reset-password",
}

// ParsePurpose validates a purpose string coming from outside
func ParsePurpose(s string) (EmailPurpose, bool) {
	p := EmailPurpose(s)
	_, ok := emailPaths[p]
	return p, ok
}

// EmailRequest is the body of the backend email endpoints
type EmailRequest struct {
	Email string `json:"email"`
	URL   string `json:"url,omitempty"`
}

// VerifyOTPRequest checks a password reset code
type VerifyOTPRequest struct {
	Email string `json:"email"`
	OTP   string `json:"otp"`
}

// ResetWithOTPRequest sets a new password with a verified reset code
type ResetWithOTPRequest struct {
	Email       string `json:"email"`
	OTP         string `json:"otp"`
	NewPassword string `json:"newPassword"`
}

// DefaultRole is assigned whenever the role lookup yields nothing usable
const DefaultRole = "USER"
