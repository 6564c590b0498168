package handlers

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"

	"tourbook/internal/middleware"
	"tourbook/internal/models"
	"tourbook/internal/utils"
)

// bindJSON decodes the request body into dst and writes the error response
// when it cannot. An empty body decodes to the zero value.
func bindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil && !errors.Is(err, io.EOF) {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			utils.HandleError(c, err)
			return false
		}
		utils.HandleError(c, utils.NewBadRequestError("Invalid request body: "+err.Error()))
		return false
	}
	return true
}

// selectFields drops the fields a ?fields= projection left out of items and
// writes the error response when the items cannot be re-encoded.
func selectFields(c *gin.Context, items interface{}) (interface{}, bool) {
	selected, err := utils.NewAPIFeatures(c.Request.URL.Query(), 0).LimitFields().Select(items)
	if err != nil {
		utils.HandleError(c, err)
		return nil, false
	}
	return selected, true
}

// currentUser fetches the user set by middleware.Protect. Routes that use it
// are always protected, so a missing user is a wiring error.
func currentUser(c *gin.Context) (*models.User, bool) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		utils.HandleError(c, utils.NewUnauthenticatedError(utils.ErrMsgNotLoggedIn))
		return nil, false
	}
	return user, true
}

// openImage opens an uploaded multipart file after checking its extension.
func openImage(fh *multipart.FileHeader) (multipart.File, error) {
	if !utils.IsValidImageFormat(fh.Filename) {
		return nil, utils.NewBadRequestError("Not an image! Please upload only images.")
	}
	if fh.Size > utils.MaxUploadBytes {
		return nil, utils.NewAppError(http.StatusRequestEntityTooLarge, utils.ErrMsgBodyTooLarge, nil)
	}
	return fh.Open()
}
