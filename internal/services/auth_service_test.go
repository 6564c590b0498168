package services

import (
	"context"
	"errors"
	"net/http"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"tourbook/internal/mocks"
	"tourbook/internal/models"
	"tourbook/internal/utils"
	"tourbook/internal/validators"
	"tourbook/pkg/logger"
)

const testSecret = "test-secret-that-is-long-enough"

type authFixture struct {
	svc    *authService
	users  *mocks.UserRepository
	sender *mocks.EmailSender
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	users := mocks.NewUserRepository()
	sender := &mocks.EmailSender{}
	svc := NewAuthService(users, NewEmailService(sender), AuthConfig{
		JWTSecret:    testSecret,
		JWTExpiresIn: time.Hour,
		BcryptCost:   bcrypt.MinCost,
		BaseURL:      "http://localhost:3000",
	}, logger.NewNop())
	return &authFixture{svc: svc.(*authService), users: users, sender: sender}
}

func (f *authFixture) signup(t *testing.T, email, password string) *AuthResult {
	t.Helper()
	result, err := f.svc.Signup(context.Background(), &validators.SignupRequest{
		Name:            "Test User",
		Email:           email,
		Password:        password,
		PasswordConfirm: password,
	})
	require.NoError(t, err)
	return result
}

func requireStatus(t *testing.T, err error, status int) *utils.AppError {
	t.Helper()
	require.Error(t, err)
	var appErr *utils.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %T: %v", err, err)
	assert.Equal(t, status, appErr.StatusCode)
	return appErr
}

func TestSignup(t *testing.T) {
	f := newAuthFixture(t)

	result, err := f.svc.Signup(context.Background(), &validators.SignupRequest{
		Name:            "  Laura Wilson ",
		Email:           "Laura@Example.com",
		Role:            "admin",
		Password:        "pass1234",
		PasswordConfirm: "pass1234",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, result.Token)
	assert.Equal(t, "Laura Wilson", result.User.Name)
	assert.Equal(t, "laura@example.com", result.User.Email)
	assert.Equal(t, models.RoleUser, result.User.Role, "role is not taken from the request by default")
	assert.Equal(t, models.DefaultUserPhoto, result.User.Photo)
	assert.NotEqual(t, "pass1234", result.User.Password)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(result.User.Password), []byte("pass1234")))

	claims, err := utils.ValidateToken(result.Token, testSecret)
	require.NoError(t, err)
	assert.Equal(t, result.User.ID.Hex(), claims.ID)

	require.Len(t, f.sender.Sent, 1)
	assert.Equal(t, "laura@example.com", f.sender.Last().To)
}

func TestSignup_RoleAllowedWhenConfigured(t *testing.T) {
	f := newAuthFixture(t)
	f.svc.config.AllowRoleOnSignup = true

	result, err := f.svc.Signup(context.Background(), &validators.SignupRequest{
		Name: "Guide", Email: "guide@example.com", Role: "guide",
		Password: "pass1234", PasswordConfirm: "pass1234",
	})
	require.NoError(t, err)
	assert.Equal(t, models.RoleGuide, result.User.Role)
}

func TestSignup_Validation(t *testing.T) {
	f := newAuthFixture(t)

	_, err := f.svc.Signup(context.Background(), &validators.SignupRequest{
		Name: "Bob", Email: "bob@example.com",
		Password: "pass1234", PasswordConfirm: "pass9999",
	})
	appErr := requireStatus(t, err, http.StatusBadRequest)
	assert.Contains(t, appErr.Message, "Passwords are not the same!")
}

func TestSignup_WelcomeEmailFailureIsNotFatal(t *testing.T) {
	f := newAuthFixture(t)
	f.sender.Err = errors.New("smtp down")

	result := f.signup(t, "quiet@example.com", "pass1234")
	assert.NotEmpty(t, result.Token)
}

func TestSignup_DuplicateEmail(t *testing.T) {
	f := newAuthFixture(t)
	f.signup(t, "dup@example.com", "pass1234")

	_, err := f.svc.Signup(context.Background(), &validators.SignupRequest{
		Name: "Other", Email: "dup@example.com",
		Password: "pass1234", PasswordConfirm: "pass1234",
	})
	require.Error(t, err)
	assert.Equal(t, http.StatusConflict, utils.ToAppError(err, false).StatusCode)
}

func TestLogin(t *testing.T) {
	f := newAuthFixture(t)
	f.signup(t, "login@example.com", "pass1234")

	t.Run("correct credentials", func(t *testing.T) {
		result, err := f.svc.Login(context.Background(), &validators.LoginRequest{Email: "login@example.com", Password: "pass1234"})
		require.NoError(t, err)
		assert.NotEmpty(t, result.Token)
	})

	t.Run("wrong password", func(t *testing.T) {
		result, err := f.svc.Login(context.Background(), &validators.LoginRequest{Email: "login@example.com", Password: "wrong-pass"})
		assert.Nil(t, result)
		requireStatus(t, err, http.StatusUnauthorized)
	})

	t.Run("unknown email", func(t *testing.T) {
		_, err := f.svc.Login(context.Background(), &validators.LoginRequest{Email: "nobody@example.com", Password: "pass1234"})
		requireStatus(t, err, http.StatusUnauthorized)
	})

	t.Run("missing fields", func(t *testing.T) {
		_, err := f.svc.Login(context.Background(), &validators.LoginRequest{Email: "login@example.com"})
		appErr := requireStatus(t, err, http.StatusBadRequest)
		assert.Equal(t, "Please provide an email and password!", appErr.Message)
	})
}

func TestAuthenticate_PasswordChangedAfterToken(t *testing.T) {
	f := newAuthFixture(t)
	result := f.signup(t, "auth@example.com", "pass1234")
	ctx := context.Background()

	user, err := f.svc.Authenticate(ctx, result.Token)
	require.NoError(t, err)
	assert.Equal(t, result.User.ID, user.ID)

	// A password change after the token was issued invalidates it.
	later := time.Now().Add(time.Hour)
	require.NoError(t, f.users.UpdatePassword(ctx, user.ID, user.Password, later))
	_, err = f.svc.Authenticate(ctx, result.Token)
	appErr := requireStatus(t, err, http.StatusUnauthorized)
	assert.Equal(t, utils.ErrMsgPasswordChanged, appErr.Message)

	// A change before the token was issued does not.
	earlier := time.Now().Add(-time.Hour)
	require.NoError(t, f.users.UpdatePassword(ctx, user.ID, user.Password, earlier))
	_, err = f.svc.Authenticate(ctx, result.Token)
	assert.NoError(t, err)
}

func TestAuthenticate_UserGone(t *testing.T) {
	f := newAuthFixture(t)
	result := f.signup(t, "gone@example.com", "pass1234")
	require.NoError(t, f.users.Deactivate(context.Background(), result.User.ID))

	_, err := f.svc.Authenticate(context.Background(), result.Token)
	appErr := requireStatus(t, err, http.StatusUnauthorized)
	assert.Equal(t, utils.ErrMsgUserGone, appErr.Message)
}

func TestAuthenticate_InvalidToken(t *testing.T) {
	f := newAuthFixture(t)
	_, err := f.svc.Authenticate(context.Background(), "not-a-token")
	require.Error(t, err)
	assert.Equal(t, http.StatusUnauthorized, utils.ToAppError(err, false).StatusCode)
}

var resetTokenPattern = regexp.MustCompile(`reset-password/([0-9a-f]{64})`)

func TestForgotAndResetPassword(t *testing.T) {
	f := newAuthFixture(t)
	signed := f.signup(t, "reset@example.com", "pass1234")
	ctx := context.Background()

	err := f.svc.ForgotPassword(ctx, &validators.ForgotPasswordRequest{Email: "reset@example.com"})
	require.NoError(t, err)

	msg := f.sender.Last()
	require.NotNil(t, msg)
	assert.Contains(t, msg.Text, "http://localhost:3000/api/v1/users/reset-password/")
	m := resetTokenPattern.FindStringSubmatch(msg.Text)
	require.Len(t, m, 2)
	plain := m[1]

	stored := f.users.Stored(signed.User.ID)
	assert.Equal(t, utils.HashToken(plain), stored.PasswordResetToken, "only the hash is stored")
	require.NotNil(t, stored.PasswordResetExpires)

	result, err := f.svc.ResetPassword(ctx, plain, &validators.ResetPasswordRequest{
		Password: "newpass123", PasswordConfirm: "newpass123",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, result.Token)

	stored = f.users.Stored(signed.User.ID)
	assert.Empty(t, stored.PasswordResetToken)
	assert.Nil(t, stored.PasswordResetExpires)
	require.NotNil(t, stored.PasswordChangedAt)

	_, err = f.svc.Login(ctx, &validators.LoginRequest{Email: "reset@example.com", Password: "newpass123"})
	assert.NoError(t, err)

	// The token is single use.
	_, err = f.svc.ResetPassword(ctx, plain, &validators.ResetPasswordRequest{
		Password: "another123", PasswordConfirm: "another123",
	})
	appErr := requireStatus(t, err, http.StatusBadRequest)
	assert.Equal(t, utils.ErrMsgInvalidResetToken, appErr.Message)
}

func TestResetPassword_Expired(t *testing.T) {
	f := newAuthFixture(t)
	f.signup(t, "late@example.com", "pass1234")
	ctx := context.Background()

	require.NoError(t, f.svc.ForgotPassword(ctx, &validators.ForgotPasswordRequest{Email: "late@example.com"}))
	plain := resetTokenPattern.FindStringSubmatch(f.sender.Last().Text)[1]

	f.svc.now = func() time.Time { return time.Now().Add(11 * time.Minute) }
	_, err := f.svc.ResetPassword(ctx, plain, &validators.ResetPasswordRequest{
		Password: "newpass123", PasswordConfirm: "newpass123",
	})
	requireStatus(t, err, http.StatusBadRequest)
}

func TestForgotPassword_DeliveryFailureRollsBack(t *testing.T) {
	f := newAuthFixture(t)
	signed := f.signup(t, "nomail@example.com", "pass1234")
	f.sender.Err = errors.New("smtp down")

	err := f.svc.ForgotPassword(context.Background(), &validators.ForgotPasswordRequest{Email: "nomail@example.com"})
	requireStatus(t, err, http.StatusInternalServerError)

	assert.Equal(t, 1, f.users.ClearResetCalls)
	stored := f.users.Stored(signed.User.ID)
	assert.Empty(t, stored.PasswordResetToken)
	assert.Nil(t, stored.PasswordResetExpires)
}

func TestForgotPassword_UnknownEmail(t *testing.T) {
	f := newAuthFixture(t)
	err := f.svc.ForgotPassword(context.Background(), &validators.ForgotPasswordRequest{Email: "ghost@example.com"})
	requireStatus(t, err, http.StatusNotFound)
}

func TestUpdatePassword(t *testing.T) {
	f := newAuthFixture(t)
	signed := f.signup(t, "update@example.com", "pass1234")
	ctx := context.Background()

	_, err := f.svc.UpdatePassword(ctx, signed.User, &validators.UpdatePasswordRequest{
		PasswordCurrent: "wrong-pass", Password: "newpass123", PasswordConfirm: "newpass123",
	})
	requireStatus(t, err, http.StatusUnauthorized)

	result, err := f.svc.UpdatePassword(ctx, signed.User, &validators.UpdatePasswordRequest{
		PasswordCurrent: "pass1234", Password: "newpass123", PasswordConfirm: "newpass123",
	})
	require.NoError(t, err)

	// The fresh token survives the backdated passwordChangedAt.
	_, err = f.svc.Authenticate(ctx, result.Token)
	assert.NoError(t, err)
}
