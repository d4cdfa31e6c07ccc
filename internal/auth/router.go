package auth

import (
	"authportal/internal/flows"

	"github.com/gin-gonic/gin"
)

// Router handles auth flow routes
type Router struct {
	controller *Controller
}

// NewRouter creates a new auth router
func NewRouter(controller *Controller) *Router {
	return &Router{controller: controller}
}

// SetupRoutes registers the flow API under rg
func (authRouter *Router) SetupRoutes(rg *gin.RouterGroup) {
	ctrl := authRouter.controller

	auth := rg.Group("/auth")
	{
		auth.POST("/sign-up", ctrl.SignUp)
		auth.POST("/sign-up/resend", ctrl.SignUpResend)
		auth.POST("/sign-up/back", ctrl.SignUpBack)

		auth.POST("/sign-in", ctrl.SignIn)
		auth.POST("/sign-in/resend", ctrl.SignInResend)
		auth.POST("/sign-in/back", ctrl.SignInBack)
		auth.POST("/sign-in/social", ctrl.SignInSocial)

		auth.POST("/forgot-password", ctrl.ForgotPassword)
		auth.POST("/forgot-password/resend", ctrl.ForgotPasswordResend)
		auth.POST("/forgot-password/back", ctrl.ForgotPasswordBack)

		auth.POST("/reset-password", ctrl.ResetPassword)

		auth.POST("/sign-out", ctrl.SignOut)
	}

	rg.GET("/session", ctrl.Session)
}

// SetupPasswordRoutes registers the password panel on a group that already requires a session
func (authRouter *Router) SetupPasswordRoutes(rg *gin.RouterGroup) {
	ctrl := authRouter.controller

	password := rg.Group("/password")
	{
		password.GET("", ctrl.PasswordView)
		password.POST("/open", ctrl.PasswordOpen)
		password.POST("/email", ctrl.PasswordEmail)
		password.POST("/otp", ctrl.PasswordOTP)
		password.POST("/new-password", ctrl.PasswordNewPassword)
		password.POST("/back", ctrl.PasswordBack)
	}
}

// SetupPages registers the page routes the route gate protects
func (authRouter *Router) SetupPages(rg gin.IRoutes) {
	ctrl := authRouter.controller

	rg.GET("/", ctrl.Page("home"))
	rg.GET("/about", ctrl.Page("about"))
	rg.GET("/contact", ctrl.Page("contact"))
	rg.GET("/support", ctrl.Page("support"))
	rg.GET("/privacy-policy", ctrl.Page("privacy-policy"))
	rg.GET("/terms-conditions", ctrl.Page("terms-conditions"))
	rg.GET("/error", ctrl.Page("error"))

	rg.GET("/auth/sign-in", ctrl.FlowPage("sign-in", flows.KindSignIn))
	rg.GET("/auth/sign-up", ctrl.FlowPage("sign-up", flows.KindSignUp))
	rg.GET("/auth/forgot-password", ctrl.FlowPage("forgot-password", flows.KindForgotPassword))
	rg.GET("/auth/reset-password", ctrl.ResetPasswordPage)
	rg.GET("/auth/verify-email", ctrl.Page("verify-email"))

	rg.GET("/dashboard", ctrl.Page("dashboard"))
	rg.GET("/dashboard/profile", ctrl.FlowPage("profile", flows.KindPasswordManagement))
}
