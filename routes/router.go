package routes

import (
	"tasklist/backend/middleware"
	"tasklist/backend/services"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type RouterOptions struct {
	Log            *logrus.Logger
	AllowedOrigins string
	DB             Pinger
	AuthService    services.AuthServiceInterface
	TaskService    services.TaskServiceInterface
	// AuthRateLimit guards the account endpoints when set.
	AuthRateLimit gin.HandlerFunc
}

// NewRouter assembles the HTTP surface: health at the root, account routes
// under /api/auth and the authenticated task routes under /api.
func NewRouter(opts RouterOptions) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.LoggerMiddleware(opts.Log))
	router.Use(middleware.CORSMiddleware(opts.AllowedOrigins))

	RegisterHealthRoutes(router, opts.DB)

	api := router.Group("/api")

	var authHandlers []gin.HandlerFunc
	if opts.AuthRateLimit != nil {
		authHandlers = append(authHandlers, opts.AuthRateLimit)
	}
	RegisterAuthRoutes(api, opts.AuthService, authHandlers...)

	protected := api.Group("")
	protected.Use(middleware.AuthMiddleware(opts.AuthService))
	{
		RegisterTaskRoutes(protected, opts.TaskService)
	}

	return router
}
