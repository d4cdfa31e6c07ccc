package audit

import (
	"authportal/internal/shared/middleware"
	"authportal/internal/users"

	"github.com/gin-gonic/gin"
)

// SetupAdminRoutes registers the audit routes on a group that already requires a session
func SetupAdminRoutes(rg *gin.RouterGroup, controller *Controller) {
	admin := rg.Group("/auth-events")
	admin.Use(middleware.RequireRoles(users.RoleAdmin, users.RoleSuperAdmin))
	{
		admin.GET("", controller.ListEvents)
	}
}
