package middleware

import (
	"context"
	"net/http"

	"authportal/internal/gateway"
	"authportal/internal/shared/utils/response"
	"authportal/internal/users"
	"authportal/pkg/logger"

	"github.com/gin-gonic/gin"
)

// Context keys set by the session middlewares
const (
	ContextSession   = "session"
	ContextUserID    = "user_id"
	ContextUserEmail = "user_email"
	ContextUserRole  = "user_role"
)

// SessionProvider materialises the caller's session from its cookies
type SessionProvider interface {
	Current(ctx context.Context, cookies []*http.Cookie) (*users.Session, error)
}

// RequireSession rejects requests without a live session on the auth service.
// The cookie is checked first so anonymous calls never reach the gateway.
func RequireSession(cookieName string, sessions SessionProvider, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !gateway.HasSession(c.Request, cookieName) {
			response.AbortJSON(c, http.StatusUnauthorized, "Not signed in", nil)
			return
		}

		session, err := sessions.Current(c.Request.Context(), c.Request.Cookies())
		if err != nil {
			if gateway.IsNoSession(err) {
				response.AbortJSON(c, http.StatusUnauthorized, "Session expired", nil)
				return
			}
			log.LogGatewayFailure(c.Request.Context(), string(gateway.OpGetSession), err)
			response.AbortJSON(c, http.StatusBadGateway, "Unable to verify session", nil)
			return
		}

		setSession(c, session)
		c.Next()
	}
}

// OptionalSession loads the session when a cookie is present and carries on either way
func OptionalSession(cookieName string, sessions SessionProvider) gin.HandlerFunc {
	return func(c *gin.Context) {
		if gateway.HasSession(c.Request, cookieName) {
			if session, err := sessions.Current(c.Request.Context(), c.Request.Cookies()); err == nil {
				setSession(c, session)
			}
		}
		c.Next()
	}
}

func setSession(c *gin.Context, session *users.Session) {
	c.Set(ContextSession, session)
	c.Set(ContextUserID, session.User.ID)
	c.Set(ContextUserEmail, session.User.Email)
	c.Set(ContextUserRole, string(session.User.Role))
}

// CurrentSession returns the session stored by RequireSession or OptionalSession
func CurrentSession(c *gin.Context) (*users.Session, bool) {
	v, ok := c.Get(ContextSession)
	if !ok {
		return nil, false
	}
	session, ok := v.(*users.Session)
	return session, ok && session != nil
}

// RequireRoles middleware checks if user has any of the required roles
func RequireRoles(requiredRoles ...users.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		userRole, exists := c.Get(ContextUserRole)
		if !exists {
			response.AbortJSON(c, http.StatusUnauthorized, "user role not found in context", nil)
			return
		}

		for _, role := range requiredRoles {
			if userRole.(string) == string(role) {
				c.Next()
				return
			}
		}

		response.AbortJSON(c, http.StatusForbidden, "Insufficient permissions", nil)
	}
}
