package flows

// User-facing copy shared by the auth screens
const (
	msgConnectionError = "Connection error. Please try again."
	msgMaxResends      = "Maximum resend attempts reached. Please try again later."

	msgSignUpSuccess     = "Account created! Please check your email to verify."
	msgSignUpFailed      = "Registration failed. Please try again."
	msgEmailTaken        = "This email is already registered"
	msgVerificationSent  = "Verification email sent successfully!"
	msgVerificationRetry = "Failed to resend verification email. Please try again."

	msgSignInSuccess      = "Login Successful"
	msgInvalidCredentials = "Invalid credentials"
	msgVerifyBeforeSignIn = "Please verify your email before signing in."
	msgSocialFailed       = "Google sign-in failed. Please try again."

	msgResetLinkSent   = "Password reset link sent to your email!"
	msgAccountNotFound = "No account found with this email address"
	msgResetLinkFailed = "Failed to send password reset email. Please try again."
	msgResetEmailSent  = "Reset email sent successfully!"
	msgResetEmailRetry = "Failed to resend reset email. Please try again."

	msgMissingToken      = "Invalid or missing reset token"
	msgTokenExpired      = "Reset link has expired or is invalid"
	msgTokenExpiredHint  = "Reset link has expired or is invalid. Please request a new one."
	msgPasswordRejected  = "Password does not meet requirements"
	msgResetFailed       = "Failed to reset password. Please try again."
	msgResetSucceeded    = "Password reset successful! You can now sign in with your new password."
	msgResetCodeSent     = "Reset code sent to your email"
	msgResetCodeInvalid  = "Invalid or expired reset code"
	msgResetCodeVerified = "Reset code verified! Please enter your new password."
	msgOTPResetFailed    = "Failed to reset password"
	msgOTPResetSucceeded = "Password reset successfully!"
)

// Callback targets handed to the auth service
const (
	PathDashboard     = "/dashboard"
	PathSignIn        = "/auth/sign-in"
	PathVerifyEmail   = "/auth/verify-email"
	PathResetPassword = "/auth/reset-password"
	PathError         = "/error"
	PathHome          = "/"
)
