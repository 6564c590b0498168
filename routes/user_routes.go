package routes

import (
	"github.com/gin-gonic/gin"

	"tourbook/internal/handlers"
	"tourbook/internal/middleware"
	"tourbook/internal/models"
)

func SetupUserRoutes(r *gin.RouterGroup, authHandler *handlers.AuthHandler, userHandler *handlers.UserHandler, protect gin.HandlerFunc) {
	users := r.Group("/users")

	// Public authentication routes
	users.POST("/signup", authHandler.Signup)
	users.POST("/login", authHandler.Login)
	users.POST("/forgot", authHandler.ForgotPassword)
	users.PATCH("/reset-password/:token", authHandler.ResetPassword)

	// Authenticated user routes
	me := users.Group("", protect)
	{
		me.PATCH("/update-password", authHandler.UpdatePassword)
		me.GET("/me", userHandler.GetMe)
		me.PATCH("/update-me", userHandler.UpdateMe)
		me.PATCH("/updateMe", userHandler.UpdateMe)
		me.PATCH("/me/photo", userHandler.UpdatePhoto)
		me.DELETE("/delete-me", userHandler.DeleteMe)
		me.DELETE("/deleteMe", userHandler.DeleteMe)
	}

	// Admin routes
	admin := users.Group("", protect, middleware.RestrictTo(models.RoleAdmin))
	{
		admin.GET("", userHandler.ListUsers)
		admin.GET("/:id", userHandler.GetUser)
		admin.PATCH("/:id", userHandler.UpdateUser)
		admin.DELETE("/:id", userHandler.DeleteUser)
	}
}
