package utils

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const testSecret = "test-secret-that-is-long-enough"

func TestGenerateAndValidateToken(t *testing.T) {
	id := primitive.NewObjectID()

	token, err := GenerateToken(id, testSecret, time.Hour)
	require.NoError(t, err)

	claims, err := ValidateToken(token, testSecret)
	require.NoError(t, err)

	got, err := claims.UserID()
	require.NoError(t, err)
	assert.Equal(t, id, got)
	assert.InDelta(t, time.Now().Unix(), claims.IssuedAtUnix(), 2)
	assert.InDelta(t, time.Now().Add(time.Hour).Unix(), claims.ExpiresAt.Unix(), 2)
}

func TestValidateToken_WrongSecret(t *testing.T) {
	token, err := GenerateToken(primitive.NewObjectID(), testSecret, time.Hour)
	require.NoError(t, err)

	_, err = ValidateToken(token, "another-secret")
	require.Error(t, err)
	assert.True(t, errors.Is(err, jwt.ErrTokenSignatureInvalid))
}

func TestValidateToken_Expired(t *testing.T) {
	token, err := generateTokenAt(primitive.NewObjectID(), testSecret, time.Minute, time.Now().Add(-time.Hour))
	require.NoError(t, err)

	_, err = ValidateToken(token, testSecret)
	require.Error(t, err)
	assert.True(t, errors.Is(err, jwt.ErrTokenExpired))

	appErr := ToAppError(err, false)
	assert.Equal(t, 401, appErr.StatusCode)
	assert.Equal(t, ErrMsgExpiredToken, appErr.Message)
}

func TestValidateToken_Malformed(t *testing.T) {
	_, err := ValidateToken("not-a-token", testSecret)
	require.Error(t, err)
	assert.Equal(t, 401, ToAppError(err, false).StatusCode)
}

func TestValidateToken_RejectsOtherAlgorithms(t *testing.T) {
	claims := &Claims{
		ID: primitive.NewObjectID().Hex(),
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)

	_, err = ValidateToken(token, testSecret)
	assert.Error(t, err)
}
