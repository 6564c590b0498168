package utils

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

func TestToAppError(t *testing.T) {
	_, hexErr := primitive.ObjectIDFromHex("nope")
	dupErr := mongo.WriteException{WriteErrors: []mongo.WriteError{{
		Code:    11000,
		Message: `E11000 duplicate key error collection: tourbook.tours index: name_1 dup key: { name: "The Forest Hiker" }`,
	}}}

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantMsg    string
	}{
		{"app error", NewNotFoundError("No tour found with that ID"), 404, "No tour found with that ID"},
		{"wrapped app error", fmt.Errorf("service: %w", NewForbiddenError("nope")), 403, "nope"},
		{"invalid id", hexErr, 400, ErrMsgInvalidID},
		{"duplicate key", dupErr, 409, "Duplicate field value: The Forest Hiker. Please use another value!"},
		{"body too large", &http.MaxBytesError{Limit: 10}, 413, ErrMsgBodyTooLarge},
		{"unknown", errors.New("boom"), 500, ErrMsgInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			appErr := ToAppError(tt.err, false)
			assert.Equal(t, tt.wantStatus, appErr.StatusCode)
			assert.Equal(t, tt.wantMsg, appErr.Message)
		})
	}
}

func TestToAppError_ExposeInternal(t *testing.T) {
	appErr := ToAppError(errors.New("boom"), true)
	assert.Equal(t, 500, appErr.StatusCode)
	assert.Equal(t, "boom", appErr.Message)
	assert.Equal(t, StatusError, appErr.Status())
}

func TestHandleError_WritesEnvelope(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	HandleError(c, NewBadRequestError("Please provide email and password!"))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.True(t, c.IsAborted())

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "fail", body["status"])
	assert.Equal(t, "Please provide email and password!", body["message"])
	assert.Empty(t, c.Errors)
}

func TestHandleError_RecordsServerErrors(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	HandleError(c, errors.New("db down"))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	require.Len(t, c.Errors, 1)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "error", body["status"])
}
