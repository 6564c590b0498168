package routes

import (
	"github.com/gin-gonic/gin"

	"tourbook/internal/handlers"
	"tourbook/internal/middleware"
	"tourbook/pkg/logger"
)

// Routes that accept multipart image uploads instead of JSON.
var uploadRoutes = []string{
	"/api/v1/tours/:id/images",
	"/api/v1/users/me/photo",
}

// Dependencies is everything the router wires into handlers and middleware.
type Dependencies struct {
	Logger *logger.Logger

	AuthHandler   *handlers.AuthHandler
	UserHandler   *handlers.UserHandler
	TourHandler   *handlers.TourHandler
	ReviewHandler *handlers.ReviewHandler
	HealthHandler *handlers.HealthHandler

	Authenticator middleware.Authenticator
	RateLimiter   *middleware.RateLimiter

	CORSAllowedOrigins []string
	TrustedProxies     []string
	MaxBodyBytes       int64

	// StaticDir, when set, is served under /img.
	StaticDir string
}

func SetupRouter(deps *Dependencies) *gin.Engine {
	router := gin.New()
	_ = router.SetTrustedProxies(deps.TrustedProxies)

	// Global middleware
	router.Use(middleware.RecoveryMiddleware(deps.Logger))
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggingMiddleware(deps.Logger))
	router.Use(middleware.SecurityHeaders())
	router.Use(middleware.CORSMiddleware(deps.CORSAllowedOrigins))
	router.Use(middleware.BodyLimit(deps.MaxBodyBytes, uploadRoutes...))

	if deps.StaticDir != "" {
		router.Static("/img", deps.StaticDir)
	}

	router.GET("/health", deps.HealthHandler.Health)

	api := router.Group("/api")
	if deps.RateLimiter != nil {
		api.Use(deps.RateLimiter.Middleware())
	}

	v1 := api.Group("/v1")
	{
		protect := middleware.Protect(deps.Authenticator, deps.Logger)

		SetupUserRoutes(v1, deps.AuthHandler, deps.UserHandler, protect)
		SetupTourRoutes(v1, deps.TourHandler, deps.ReviewHandler, protect)
		SetupReviewRoutes(v1, deps.ReviewHandler, protect)
	}

	router.NoRoute(middleware.NotFoundHandler())

	return router
}
