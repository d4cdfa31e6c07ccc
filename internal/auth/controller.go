package auth

import (
	"context"
	"net/http"
	"time"

	"authportal/internal/flows"
	"authportal/internal/gateway"
	"authportal/internal/shared/middleware"
	"authportal/internal/shared/utils/response"
	"authportal/internal/validation"
	"authportal/pkg/logger"

	"github.com/gin-gonic/gin"
)

// SignOutGateway ends the session on the auth service
type SignOutGateway interface {
	SignOut(ctx context.Context, cookies []*http.Cookie) ([]*http.Cookie, error)
}

// TokenCache drops cached bearer tokens for a session
type TokenCache interface {
	Forget(ctx context.Context, r *http.Request)
}

// Options configures the cookies the controller writes
type Options struct {
	FlowCookieName    string
	SessionCookieName string
	SecureCookies     bool
	FlowTTL           time.Duration
}

type Controller struct {
	flows         *flowRunner
	gateway       SignOutGateway
	sessions      middleware.SessionProvider
	tokens        TokenCache
	sessionCookie string
	logger        *logger.Logger
}

func NewController(store *flows.Store, gw SignOutGateway, sessions middleware.SessionProvider, tokens TokenCache, opts Options, log *logger.Logger) *Controller {
	if log == nil {
		log = logger.GetDefault()
	}
	return &Controller{
		flows: &flowRunner{
			store:      store,
			cookieName: opts.FlowCookieName,
			secure:     opts.SecureCookies,
			ttl:        opts.FlowTTL,
			logger:     log,
		},
		gateway:       gw,
		sessions:      sessions,
		tokens:        tokens,
		sessionCookie: opts.SessionCookieName,
		logger:        log,
	}
}

func bindJSON(ctx *gin.Context, dst interface{}) bool {
	if err := ctx.ShouldBindJSON(dst); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return false
	}
	return true
}

// ---- sign-up ----

func (c *Controller) SignUp(ctx *gin.Context) {
	var req validation.RegistrationRequest
	if !bindJSON(ctx, &req) {
		return
	}
	c.flows.run(ctx, flows.KindSignUp, func(rc context.Context, m flows.Machine) (flows.Outcome, error) {
		return m.(*flows.SignUp).Submit(rc, req)
	})
}

func (c *Controller) SignUpResend(ctx *gin.Context) {
	c.flows.run(ctx, flows.KindSignUp, func(rc context.Context, m flows.Machine) (flows.Outcome, error) {
		return m.(*flows.SignUp).Resend(rc)
	})
}

func (c *Controller) SignUpBack(ctx *gin.Context) {
	c.flows.run(ctx, flows.KindSignUp, func(rc context.Context, m flows.Machine) (flows.Outcome, error) {
		return m.(*flows.SignUp).Back(rc)
	})
}

// ---- sign-in ----

func (c *Controller) SignIn(ctx *gin.Context) {
	var req SignInRequest
	if !bindJSON(ctx, &req) {
		return
	}
	redirect := req.Redirect
	if redirect == "" {
		redirect = ctx.Query("redirect")
	}
	c.flows.run(ctx, flows.KindSignIn, func(rc context.Context, m flows.Machine) (flows.Outcome, error) {
		return m.(*flows.SignIn).Submit(rc, req.credentials(), redirect)
	})
}

func (c *Controller) SignInSocial(ctx *gin.Context) {
	c.flows.run(ctx, flows.KindSignIn, func(rc context.Context, m flows.Machine) (flows.Outcome, error) {
		return m.(*flows.SignIn).Social(rc)
	})
}

func (c *Controller) SignInResend(ctx *gin.Context) {
	c.flows.run(ctx, flows.KindSignIn, func(rc context.Context, m flows.Machine) (flows.Outcome, error) {
		return m.(*flows.SignIn).Resend(rc)
	})
}

func (c *Controller) SignInBack(ctx *gin.Context) {
	c.flows.run(ctx, flows.KindSignIn, func(rc context.Context, m flows.Machine) (flows.Outcome, error) {
		return m.(*flows.SignIn).Back(rc)
	})
}

// ---- forgot / reset password (emailed link) ----

func (c *Controller) ForgotPassword(ctx *gin.Context) {
	var req validation.ResetRequest
	if !bindJSON(ctx, &req) {
		return
	}
	c.flows.run(ctx, flows.KindForgotPassword, func(rc context.Context, m flows.Machine) (flows.Outcome, error) {
		return m.(*flows.ForgotPassword).Submit(rc, req)
	})
}

func (c *Controller) ForgotPasswordResend(ctx *gin.Context) {
	c.flows.run(ctx, flows.KindForgotPassword, func(rc context.Context, m flows.Machine) (flows.Outcome, error) {
		return m.(*flows.ForgotPassword).Resend(rc)
	})
}

func (c *Controller) ForgotPasswordBack(ctx *gin.Context) {
	c.flows.run(ctx, flows.KindForgotPassword, func(rc context.Context, m flows.Machine) (flows.Outcome, error) {
		return m.(*flows.ForgotPassword).Back(rc)
	})
}

func (c *Controller) ResetPassword(ctx *gin.Context) {
	var req ResetPasswordRequest
	if !bindJSON(ctx, &req) {
		return
	}
	c.flows.run(ctx, flows.KindResetPassword, func(rc context.Context, m flows.Machine) (flows.Outcome, error) {
		reset := m.(*flows.ResetPassword)
		if req.Token != "" && reset.State() != flows.ResetForm {
			out, err := reset.Start(rc, req.Token)
			if err != nil || out.State != flows.ResetForm {
				return out, err
			}
		}
		return reset.Submit(rc, req.newPassword())
	})
}

// ---- password management (signed in, code based) ----

func (c *Controller) PasswordView(ctx *gin.Context) {
	response.RespondJSON(ctx, "success", http.StatusOK, "OK", c.flows.current(ctx, flows.KindPasswordManagement), nil)
}

func (c *Controller) PasswordOpen(ctx *gin.Context) {
	c.flows.run(ctx, flows.KindPasswordManagement, func(rc context.Context, m flows.Machine) (flows.Outcome, error) {
		return m.(*flows.PasswordManagement).Open(rc)
	})
}

func (c *Controller) PasswordEmail(ctx *gin.Context) {
	var req validation.ResetRequest
	if !bindJSON(ctx, &req) {
		return
	}
	c.flows.run(ctx, flows.KindPasswordManagement, func(rc context.Context, m flows.Machine) (flows.Outcome, error) {
		return m.(*flows.PasswordManagement).SubmitEmail(rc, req)
	})
}

func (c *Controller) PasswordOTP(ctx *gin.Context) {
	var req validation.OTPCode
	if !bindJSON(ctx, &req) {
		return
	}
	c.flows.run(ctx, flows.KindPasswordManagement, func(rc context.Context, m flows.Machine) (flows.Outcome, error) {
		return m.(*flows.PasswordManagement).SubmitOTP(rc, req)
	})
}

func (c *Controller) PasswordNewPassword(ctx *gin.Context) {
	var req validation.OTPNewPassword
	if !bindJSON(ctx, &req) {
		return
	}
	c.flows.run(ctx, flows.KindPasswordManagement, func(rc context.Context, m flows.Machine) (flows.Outcome, error) {
		return m.(*flows.PasswordManagement).SubmitNewPassword(rc, req)
	})
}

func (c *Controller) PasswordBack(ctx *gin.Context) {
	c.flows.run(ctx, flows.KindPasswordManagement, func(rc context.Context, m flows.Machine) (flows.Outcome, error) {
		return m.(*flows.PasswordManagement).Back(rc)
	})
}

// ---- session ----

// SignOut ends the session upstream and clears it locally even when the auth service fails
func (c *Controller) SignOut(ctx *gin.Context) {
	rc := ctx.Request.Context()

	upstream, err := c.gateway.SignOut(rc, ctx.Request.Cookies())
	if err != nil {
		c.logger.LogGatewayFailure(rc, string(gateway.OpSignOut), err)
	}
	if c.tokens != nil {
		c.tokens.Forget(rc, ctx.Request)
	}

	written := make(map[string]bool, len(upstream))
	for _, ck := range upstream {
		http.SetCookie(ctx.Writer, ck)
		written[ck.Name] = true
	}
	for _, name := range []string{c.sessionCookie, gateway.SecurePrefix + c.sessionCookie} {
		if written[name] {
			continue
		}
		http.SetCookie(ctx.Writer, &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
			Secure:   name != c.sessionCookie || c.flows.secure,
		})
	}
	c.flows.clearCookie(ctx)

	response.RespondJSON(ctx, "success", http.StatusOK, "Signed out successfully", SignOutResponse{Redirect: flows.PathSignIn}, nil)
}

func (c *Controller) Session(ctx *gin.Context) {
	if !gateway.HasSession(ctx.Request, c.sessionCookie) {
		response.RespondJSON(ctx, "error", http.StatusUnauthorized, "Not signed in", nil, nil)
		return
	}

	session, err := c.sessions.Current(ctx.Request.Context(), ctx.Request.Cookies())
	if err != nil {
		if gateway.IsNoSession(err) {
			response.RespondJSON(ctx, "error", http.StatusUnauthorized, "Not signed in", nil, nil)
			return
		}
		c.logger.LogGatewayFailure(ctx.Request.Context(), string(gateway.OpGetSession), err)
		response.RespondJSON(ctx, "error", http.StatusBadGateway, "Unable to load session", nil, nil)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Session retrieved successfully", SessionResponse{
		User:      session.User,
		SessionID: session.ID,
		ExpiresAt: session.ExpiresAt.Format(time.RFC3339),
	}, nil)
}
