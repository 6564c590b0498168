package handlers

import (
	"github.com/gin-gonic/gin"

	"tourbook/internal/services"
	"tourbook/internal/utils"
	"tourbook/internal/validators"
)

type ReviewHandler struct {
	reviewService services.ReviewService
}

func NewReviewHandler(reviewService services.ReviewService) *ReviewHandler {
	return &ReviewHandler{
		reviewService: reviewService,
	}
}

// ListReviews lists every review, or a tour's reviews under
// /tours/:tourId/reviews.
func (h *ReviewHandler) ListReviews(c *gin.Context) {
	reviews, err := h.reviewService.ListReviews(c.Request.Context(), c.Param("tourId"), c.Request.URL.Query())
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	selected, ok := selectFields(c, reviews)
	if !ok {
		return
	}
	utils.ListResponse(c, "reviews", selected, len(reviews))
}

func (h *ReviewHandler) GetReview(c *gin.Context) {
	review, err := h.reviewService.GetReview(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.SuccessResponse(c, gin.H{"review": review})
}

func (h *ReviewHandler) CreateReview(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var request validators.CreateReviewRequest
	if !bindJSON(c, &request) {
		return
	}

	review, err := h.reviewService.CreateReview(c.Request.Context(), user, c.Param("tourId"), &request)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.CreatedResponse(c, gin.H{"review": review})
}

func (h *ReviewHandler) UpdateReview(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var request validators.UpdateReviewRequest
	if !bindJSON(c, &request) {
		return
	}

	review, err := h.reviewService.UpdateReview(c.Request.Context(), user, c.Param("id"), &request)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.SuccessResponse(c, gin.H{"review": review})
}

func (h *ReviewHandler) DeleteReview(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	if err := h.reviewService.DeleteReview(c.Request.Context(), user, c.Param("id")); err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.NoContentResponse(c)
}
