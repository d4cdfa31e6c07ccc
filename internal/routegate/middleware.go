package routegate

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"authportal/internal/gateway"
	"authportal/pkg/logger"
)

// Middleware applies the gate to every request. It trusts cookie presence alone;
// handlers that act on the session re-check it with the auth service.
func Middleware(routes Routes, cookieName string, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		authenticated := gateway.HasSession(c.Request, cookieName)

		decision := routes.Classify(path, authenticated)
		if decision.Kind != Redirect {
			c.Next()
			return
		}

		log.LogRouteRedirect(c.Request.Context(), path, decision.Target, authenticated)
		c.Redirect(http.StatusFound, decision.Target)
		c.Abort()
	}
}
