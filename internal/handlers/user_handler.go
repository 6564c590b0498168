package handlers

import (
	"github.com/gin-gonic/gin"

	"tourbook/internal/services"
	"tourbook/internal/utils"
	"tourbook/internal/validators"
)

type UserHandler struct {
	userService services.UserService
}

func NewUserHandler(userService services.UserService) *UserHandler {
	return &UserHandler{
		userService: userService,
	}
}

// GetMe returns the authenticated user.
func (h *UserHandler) GetMe(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	utils.SuccessResponse(c, gin.H{"user": user})
}

func (h *UserHandler) UpdateMe(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var request validators.UpdateMeRequest
	if !bindJSON(c, &request) {
		return
	}

	updated, err := h.userService.UpdateMe(c.Request.Context(), user, &request)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"user": updated})
}

// UpdatePhoto accepts a multipart "photo" field.
func (h *UserHandler) UpdatePhoto(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	fh, err := c.FormFile("photo")
	if err != nil {
		utils.HandleError(c, utils.NewBadRequestError("Please upload a photo."))
		return
	}
	file, err := openImage(fh)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	defer file.Close()

	updated, err := h.userService.UpdatePhoto(c.Request.Context(), user, file)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"user": updated})
}

func (h *UserHandler) DeleteMe(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	if err := h.userService.DeleteMe(c.Request.Context(), user); err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.NoContentResponse(c)
}

func (h *UserHandler) ListUsers(c *gin.Context) {
	users, err := h.userService.ListUsers(c.Request.Context(), c.Request.URL.Query())
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	selected, ok := selectFields(c, users)
	if !ok {
		return
	}
	utils.ListResponse(c, "users", selected, len(users))
}

func (h *UserHandler) GetUser(c *gin.Context) {
	user, err := h.userService.GetUser(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.SuccessResponse(c, gin.H{"user": user})
}

func (h *UserHandler) UpdateUser(c *gin.Context) {
	var request validators.UpdateUserRequest
	if !bindJSON(c, &request) {
		return
	}

	user, err := h.userService.UpdateUser(c.Request.Context(), c.Param("id"), &request)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.SuccessResponse(c, gin.H{"user": user})
}

func (h *UserHandler) DeleteUser(c *gin.Context) {
	if err := h.userService.DeleteUser(c.Request.Context(), c.Param("id")); err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.NoContentResponse(c)
}
