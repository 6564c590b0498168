package routes

import (
	"github.com/gin-gonic/gin"

	"tourbook/internal/handlers"
	"tourbook/internal/middleware"
	"tourbook/internal/models"
)

func SetupTourRoutes(r *gin.RouterGroup, tourHandler *handlers.TourHandler, reviewHandler *handlers.ReviewHandler, protect gin.HandlerFunc) {
	tours := r.Group("/tours")
	staff := middleware.RestrictTo(models.RoleAdmin, models.RoleLeadGuide)

	// Public routes
	tours.GET("", tourHandler.ListTours)
	tours.GET("/top-5-cheap", tourHandler.AliasTopTours, tourHandler.ListTours)
	tours.GET("/stats", tourHandler.GetTourStats)
	tours.GET("/tours-within/:distance/center/:latlng/unit/:unit", tourHandler.GetToursWithin)
	tours.GET("/distances/:latlng/unit/:unit", tourHandler.GetDistances)
	tours.GET("/:id", tourHandler.GetTour)

	tours.GET("/monthly-plan/:year", protect,
		middleware.RestrictTo(models.RoleAdmin, models.RoleLeadGuide, models.RoleGuide),
		tourHandler.GetMonthlyPlan)

	// Staff routes
	tours.POST("", protect, staff, tourHandler.CreateTour)
	tours.PATCH("/:id", protect, staff, tourHandler.UpdateTour)
	tours.PATCH("/:id/images", protect, staff, tourHandler.UpdateTourImages)
	tours.DELETE("/:id", protect, staff, tourHandler.DeleteTour)

	// Nested reviews
	tours.GET("/:id/reviews", protect, mergeTourParam, reviewHandler.ListReviews)
	tours.POST("/:id/reviews", protect, middleware.RestrictTo(models.RoleUser), mergeTourParam, reviewHandler.CreateReview)
}

// mergeTourParam exposes the tour :id of a nested route as tourId, the name
// the review handlers read.
func mergeTourParam(c *gin.Context) {
	c.Params = append(c.Params, gin.Param{Key: "tourId", Value: c.Param("id")})
	c.Next()
}
