package utils

import (
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// AppError is an expected failure that maps directly onto an HTTP status.
type AppError struct {
	StatusCode int
	Message    string
	Err        error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Status is "fail" for client errors and "error" otherwise.
func (e *AppError) Status() string {
	if e.StatusCode >= 400 && e.StatusCode < 500 {
		return StatusFail
	}
	return StatusError
}

func NewAppError(statusCode int, message string, err error) *AppError {
	return &AppError{StatusCode: statusCode, Message: message, Err: err}
}

func NewValidationError(message string) *AppError {
	return NewAppError(http.StatusBadRequest, message, nil)
}

func NewBadRequestError(message string) *AppError {
	return NewAppError(http.StatusBadRequest, message, nil)
}

func NewUnauthenticatedError(message string) *AppError {
	return NewAppError(http.StatusUnauthorized, message, nil)
}

func NewForbiddenError(message string) *AppError {
	return NewAppError(http.StatusForbidden, message, nil)
}

func NewNotFoundError(message string) *AppError {
	return NewAppError(http.StatusNotFound, message, nil)
}

func NewConflictError(message string) *AppError {
	return NewAppError(http.StatusConflict, message, nil)
}

func NewDeliveryError(message string, err error) *AppError {
	return NewAppError(http.StatusInternalServerError, message, err)
}

func NewInternalError(err error) *AppError {
	return NewAppError(http.StatusInternalServerError, ErrMsgInternal, err)
}

var dupKeyValue = regexp.MustCompile(`dup key: \{ ?[^:]+: "?([^"}]*)"? ?\}`)

// ToAppError classifies err. Unknown errors become a 500 whose message is
// hidden unless exposeInternal is set.
func ToAppError(err error, exposeInternal bool) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		msgs := make([]string, 0, len(validationErrs))
		for _, fe := range validationErrs {
			msgs = append(msgs, fmt.Sprintf("%s failed on %s", fe.Field(), fe.Tag()))
		}
		return NewAppError(http.StatusBadRequest, "Invalid input data. "+strings.Join(msgs, ". "), err)
	}

	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		return NewAppError(http.StatusRequestEntityTooLarge, ErrMsgBodyTooLarge, err)
	}

	switch {
	case mongo.IsDuplicateKeyError(err):
		msg := "Duplicate field value. Please use another value!"
		if m := dupKeyValue.FindStringSubmatch(err.Error()); m != nil {
			msg = fmt.Sprintf("Duplicate field value: %s. Please use another value!", strings.TrimSpace(m[1]))
		}
		return NewAppError(http.StatusConflict, msg, err)
	case errors.Is(err, primitive.ErrInvalidHex):
		return NewAppError(http.StatusBadRequest, ErrMsgInvalidID, err)
	case errors.Is(err, jwt.ErrTokenExpired):
		return NewAppError(http.StatusUnauthorized, ErrMsgExpiredToken, err)
	case errors.Is(err, jwt.ErrTokenMalformed),
		errors.Is(err, jwt.ErrTokenSignatureInvalid),
		errors.Is(err, jwt.ErrTokenUnverifiable),
		errors.Is(err, jwt.ErrTokenInvalidClaims):
		return NewAppError(http.StatusUnauthorized, ErrMsgInvalidToken, err)
	}

	if exposeInternal {
		return NewAppError(http.StatusInternalServerError, err.Error(), err)
	}
	return NewInternalError(err)
}

// HandleError writes the error envelope for err and aborts the chain.
// Server errors are attached to the context so the request logger records
// them with the request id.
func HandleError(c *gin.Context, err error) {
	appErr := ToAppError(err, gin.Mode() != gin.ReleaseMode)
	if appErr.StatusCode >= http.StatusInternalServerError {
		_ = c.Error(err)
	}
	c.AbortWithStatusJSON(appErr.StatusCode, Response{
		Status:  appErr.Status(),
		Message: appErr.Message,
	})
}
