// api/routes/router.go
package routes

import (
	"net/http"
	"time"

	"authportal/docs"
	"authportal/internal/audit"
	"authportal/internal/auth"
	"authportal/internal/backend"
	"authportal/internal/flows"
	"authportal/internal/gateway"
	"authportal/internal/notifications"
	"authportal/internal/profile"
	"authportal/internal/shared/config"
	"authportal/internal/shared/database"
	"authportal/internal/shared/middleware"
	"authportal/internal/users"
	"authportal/internal/validation"
	"authportal/pkg/cache"
	"authportal/pkg/logger"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Router holds all route dependencies
type Router struct {
	config     *config.Config
	db         *database.DB
	logger     *logger.Logger
	dispatcher notifications.Dispatcher

	// built once in SetupRoutes and shared by the route groups
	gateway  *gateway.Client
	backend  *backend.Client
	cache    cache.Service
	tokens   *gateway.TokenSource
	sessions *users.Sessions
}

// NewRouter creates a new router instance. dispatcher may be nil, in which
// case e-mails go straight to the backend.
func NewRouter(cfg *config.Config, db *database.DB, dispatcher notifications.Dispatcher, log *logger.Logger) *Router {
	if log == nil {
		log = logger.GetDefault()
	}
	return &Router{
		config:     cfg,
		db:         db,
		logger:     log,
		dispatcher: dispatcher,
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes(engine *gin.Engine) {
	r.gateway = gateway.NewClient(r.config.AuthService.BaseURL, r.config.AuthService.Timeout)
	r.backend = backend.NewClient(r.config.Backend.BaseURL, r.config.Backend.Timeout)
	r.cache = cache.NewService(r.db.GetRedis())
	r.tokens = gateway.NewTokenSource(r.gateway, r.cache, r.config.AuthService.SessionCookieName, r.config.Redis.TokenCacheTTL)
	r.sessions = users.NewSessions(r.gateway, users.NewRoles(r.backend))

	// Health check and basic info endpoints
	r.setupHealthRoutes(engine)

	// API docs
	docs.SwaggerInfo.BasePath = r.config.GetAPIBasePath()
	engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	authController := r.newAuthController()
	authRouter := auth.NewRouter(authController)

	// Page routes sit behind the route gate; the session is optional there
	pages := engine.Group("/")
	pages.Use(middleware.OptionalSession(r.config.AuthService.SessionCookieName, r.sessions))
	authRouter.SetupPages(pages)

	// API routes
	api := engine.Group(r.config.GetAPIBasePath())
	{
		authRouter.SetupRoutes(api)

		signedIn := api.Group("")
		signedIn.Use(middleware.RequireSession(r.config.AuthService.SessionCookieName, r.sessions, r.logger))
		{
			r.setupProfileRoutes(signedIn.Group("/profile"), authRouter)
			r.setupAdminRoutes(signedIn.Group("/admin"))
		}

		r.setupHookRoutes(api)
	}
}

// setupHealthRoutes sets up health check and system status routes
func (r *Router) setupHealthRoutes(engine *gin.Engine) {
	engine.GET("/health", func(c *gin.Context) {
		// Perform health checks
		if err := r.db.HealthCheck(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":    "unhealthy",
				"error":     err.Error(),
				"timestamp": time.Now(),
				"service":   "authportal",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"timestamp": time.Now(),
			"service":   "authportal",
		})
	})

	engine.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
			"version": r.config.APIVersion,
		})
	})

	engine.GET("/status", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":      "operational",
			"api_version": r.config.APIVersion,
			"timestamp":   time.Now(),
			"audit_trail": r.db.GetPostgreSQL() != nil,
			"kafka":       r.dispatcher != nil,
		})
	})
}

// newAuthController wires the flow store to the auth service and backend
func (r *Router) newAuthController() *auth.Controller {
	deps := flows.Deps{
		Gateway:        r.gateway,
		Backend:        r.backend,
		Validator:      validation.Default(),
		Logger:         r.logger,
		MaxResends:     r.config.Flows.MaxResends,
		SocialProvider: r.config.AuthService.SocialProvider,
	}
	store := flows.NewStore(r.cache, deps, r.config.Flows.TTL, r.config.Flows.LockTTL)

	return auth.NewController(store, r.gateway, r.sessions, r.tokens, auth.Options{
		FlowCookieName:    r.config.Flows.CookieName,
		SessionCookieName: r.config.AuthService.SessionCookieName,
		SecureCookies:     r.config.IsProduction(),
		FlowTTL:           r.config.Flows.TTL,
	}, r.logger)
}

// setupProfileRoutes configures the profile page API and the password panel
func (r *Router) setupProfileRoutes(rg *gin.RouterGroup, authRouter *auth.Router) {
	profileService := profile.NewService(r.tokens, r.backend, r.cache, r.logger, r.config.Redis.ProfileTTL)
	profileController := profile.NewController(profileService, r.config.Upload.MaxSize)
	profile.NewRouter(profileController).SetupRoutes(rg)

	authRouter.SetupPasswordRoutes(rg)
}

// setupAdminRoutes exposes the audit trail when PostgreSQL is configured
func (r *Router) setupAdminRoutes(rg *gin.RouterGroup) {
	if r.db.GetPostgreSQL() == nil {
		return
	}
	auditService := audit.NewService(audit.NewRepository(r.db.GetPostgreSQL()), r.logger)
	audit.SetupAdminRoutes(rg, audit.NewController(auditService))
}

// setupHookRoutes configures the callbacks used by the auth service
func (r *Router) setupHookRoutes(rg *gin.RouterGroup) {
	dispatcher := r.dispatcher
	if dispatcher == nil {
		dispatcher = notifications.NewHTTPDispatcher(r.backend)
	}
	notificationService := notifications.NewService(dispatcher, r.logger)

	var recorder audit.Recorder = audit.LogRecorder{Logger: r.logger}
	if r.db.GetPostgreSQL() != nil {
		recorder = audit.NewService(audit.NewRepository(r.db.GetPostgreSQL()), r.logger)
	}

	controller := notifications.NewController(notificationService, recorder)
	notifications.NewRouter(controller, r.config.Hooks.Secret).SetupRoutes(rg)
}
