package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Response is the envelope every endpoint returns.
type Response struct {
	Status  string      `json:"status"`
	Results *int        `json:"results,omitempty"`
	Token   string      `json:"token,omitempty"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

func SuccessResponse(c *gin.Context, data gin.H) {
	c.JSON(http.StatusOK, Response{Status: StatusSuccess, Data: data})
}

func CreatedResponse(c *gin.Context, data gin.H) {
	c.JSON(http.StatusCreated, Response{Status: StatusSuccess, Data: data})
}

// ListResponse wraps a collection under key and reports its length.
func ListResponse(c *gin.Context, key string, items interface{}, count int) {
	c.JSON(http.StatusOK, Response{
		Status:  StatusSuccess,
		Results: &count,
		Data:    gin.H{key: items},
	})
}

// TokenResponse sends a freshly issued token. data may be nil.
func TokenResponse(c *gin.Context, statusCode int, token string, data gin.H) {
	resp := Response{Status: StatusSuccess, Token: token}
	if data != nil {
		resp.Data = data
	}
	c.JSON(statusCode, resp)
}

func MessageResponse(c *gin.Context, message string) {
	c.JSON(http.StatusOK, Response{Status: StatusSuccess, Message: message})
}

func ErrorResponse(c *gin.Context, statusCode int, message string) {
	status := StatusError
	if statusCode >= 400 && statusCode < 500 {
		status = StatusFail
	}
	c.AbortWithStatusJSON(statusCode, Response{Status: status, Message: message})
}

func NoContentResponse(c *gin.Context) {
	c.Status(http.StatusNoContent)
}
