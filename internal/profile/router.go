package profile

import "github.com/gin-gonic/gin"

// Router handles profile routes
type Router struct {
	controller *Controller
}

func NewRouter(controller *Controller) *Router {
	return &Router{controller: controller}
}

// SetupRoutes registers the profile routes on a group that already requires a session
func (r *Router) SetupRoutes(rg *gin.RouterGroup) {
	rg.GET("", r.controller.GetProfile)
	rg.PUT("", r.controller.UpdateProfile)
	rg.PUT("/image", r.controller.UploadImage)
}
