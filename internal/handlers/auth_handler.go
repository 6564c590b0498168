package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tourbook/internal/services"
	"tourbook/internal/utils"
	"tourbook/internal/validators"
)

type AuthHandler struct {
	authService services.AuthService
}

func NewAuthHandler(authService services.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

// Signup creates an account and logs it in.
func (h *AuthHandler) Signup(c *gin.Context) {
	var request validators.SignupRequest
	if !bindJSON(c, &request) {
		return
	}

	result, err := h.authService.Signup(c.Request.Context(), &request)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.TokenResponse(c, http.StatusOK, result.Token, gin.H{"user": result.User})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var request validators.LoginRequest
	if !bindJSON(c, &request) {
		return
	}

	result, err := h.authService.Login(c.Request.Context(), &request)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.TokenResponse(c, http.StatusOK, result.Token, nil)
}

func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var request validators.ForgotPasswordRequest
	if !bindJSON(c, &request) {
		return
	}

	if err := h.authService.ForgotPassword(c.Request.Context(), &request); err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.MessageResponse(c, "Token sent to email!")
}

func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var request validators.ResetPasswordRequest
	if !bindJSON(c, &request) {
		return
	}

	result, err := h.authService.ResetPassword(c.Request.Context(), c.Param("token"), &request)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.TokenResponse(c, http.StatusOK, result.Token, nil)
}

func (h *AuthHandler) UpdatePassword(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var request validators.UpdatePasswordRequest
	if !bindJSON(c, &request) {
		return
	}

	result, err := h.authService.UpdatePassword(c.Request.Context(), user, &request)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.TokenResponse(c, http.StatusOK, result.Token, nil)
}
