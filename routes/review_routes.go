package routes

import (
	"github.com/gin-gonic/gin"

	"tourbook/internal/handlers"
	"tourbook/internal/middleware"
	"tourbook/internal/models"
)

func SetupReviewRoutes(r *gin.RouterGroup, reviewHandler *handlers.ReviewHandler, protect gin.HandlerFunc) {
	reviews := r.Group("/reviews", protect)
	{
		reviews.GET("", reviewHandler.ListReviews)
		reviews.POST("", middleware.RestrictTo(models.RoleUser), reviewHandler.CreateReview)
		reviews.GET("/:id", reviewHandler.GetReview)

		owners := middleware.RestrictTo(models.RoleUser, models.RoleAdmin)
		reviews.PATCH("/:id", owners, reviewHandler.UpdateReview)
		reviews.DELETE("/:id", owners, reviewHandler.DeleteReview)
	}
}
