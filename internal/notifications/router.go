package notifications

import (
	"crypto/subtle"
	"net/http"

	"authportal/internal/shared/utils/response"

	"github.com/gin-gonic/gin"
)

// HookSecretHeader carries the shared secret configured on both services
const HookSecretHeader = "X-Hook-Secret"

// Router handles hook routes
type Router struct {
	controller *Controller
	secret     string
}

func NewRouter(controller *Controller, secret string) *Router {
	return &Router{controller: controller, secret: secret}
}

// SetupRoutes registers the hook routes
func (r *Router) SetupRoutes(rg *gin.RouterGroup) {
	hooks := rg.Group("/hooks")
	if r.secret != "" {
		hooks.Use(requireSecret(r.secret))
	}
	{
		hooks.POST("/email", r.controller.SendEmail)
		hooks.POST("/auth-events", r.controller.RecordAuthEvent)
	}
}

func requireSecret(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		got := c.GetHeader(HookSecretHeader)
		if subtle.ConstantTimeCompare([]byte(got), []byte(secret)) != 1 {
			response.AbortJSON(c, http.StatusUnauthorized, "Invalid hook secret", nil)
			return
		}
		c.Next()
	}
}
