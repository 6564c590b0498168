package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"

	"tourbook/internal/models"
	"tourbook/internal/repositories/interfaces"
	"tourbook/internal/utils"
	"tourbook/internal/validators"
	"tourbook/pkg/logger"
)

type AuthService interface {
	// Authentication
	Signup(ctx context.Context, request *validators.SignupRequest) (*AuthResult, error)
	Login(ctx context.Context, request *validators.LoginRequest) (*AuthResult, error)
	Authenticate(ctx context.Context, token string) (*models.User, error)

	// Password management
	ForgotPassword(ctx context.Context, request *validators.ForgotPasswordRequest) error
	ResetPassword(ctx context.Context, token string, request *validators.ResetPasswordRequest) (*AuthResult, error)
	UpdatePassword(ctx context.Context, user *models.User, request *validators.UpdatePasswordRequest) (*AuthResult, error)
}

type AuthResult struct {
	Token string
	User  *models.User
}

type AuthConfig struct {
	JWTSecret         string
	JWTExpiresIn      time.Duration
	BcryptCost        int
	PasswordResetTTL  time.Duration
	BaseURL           string
	AllowRoleOnSignup bool
}

type authService struct {
	userRepo     interfaces.UserRepository
	emailService EmailService
	config       AuthConfig
	logger       *logger.Logger
	now          func() time.Time
}

func NewAuthService(
	userRepo interfaces.UserRepository,
	emailService EmailService,
	config AuthConfig,
	logger *logger.Logger,
) AuthService {
	if config.BcryptCost == 0 {
		config.BcryptCost = 12
	}
	if config.PasswordResetTTL == 0 {
		config.PasswordResetTTL = utils.DefaultResetTokenTTL
	}
	return &authService{
		userRepo:     userRepo,
		emailService: emailService,
		config:       config,
		logger:       logger,
		now:          time.Now,
	}
}

func (s *authService) Signup(ctx context.Context, request *validators.SignupRequest) (*AuthResult, error) {
	if errs := validators.ValidateSignup(request); len(errs) > 0 {
		return nil, utils.NewValidationError(errs.Message())
	}

	hash, err := s.hashPassword(request.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	role := models.RoleUser
	if request.Role != "" && s.config.AllowRoleOnSignup {
		role = models.Role(request.Role)
	}
	photo := request.Photo
	if photo == "" {
		photo = models.DefaultUserPhoto
	}

	user := &models.User{
		Name:      request.Name,
		Email:     request.Email,
		Photo:     photo,
		Role:      role,
		Password:  hash,
		Active:    true,
		CreatedAt: s.now(),
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.LogUserAction(user.ID, "signup", map[string]interface{}{"role": string(user.Role)})

	if err := s.emailService.SendWelcome(ctx, user, s.config.BaseURL+"/me"); err != nil {
		s.logger.WithError(err).WithUserID(user.ID).Warn("Failed to send welcome email")
	}

	return s.issue(user)
}

func (s *authService) Login(ctx context.Context, request *validators.LoginRequest) (*AuthResult, error) {
	email := strings.ToLower(strings.TrimSpace(request.Email))
	if email == "" || request.Password == "" {
		return nil, utils.NewBadRequestError("Please provide an email and password!")
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil && !errors.Is(err, interfaces.ErrNotFound) {
		return nil, err
	}
	if user == nil || !s.checkPassword(request.Password, user.Password) {
		s.logger.LogSecurityEvent("login_failed", "medium", map[string]interface{}{"email": email})
		return nil, utils.NewUnauthenticatedError("Invalid email or password")
	}

	return s.issue(user)
}

// Authenticate verifies a bearer token and returns its still-valid owner.
func (s *authService) Authenticate(ctx context.Context, token string) (*models.User, error) {
	claims, err := utils.ValidateToken(token, s.config.JWTSecret)
	if err != nil {
		return nil, err
	}

	userID, err := claims.UserID()
	if err != nil {
		return nil, utils.NewUnauthenticatedError(utils.ErrMsgInvalidToken)
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, utils.NewUnauthenticatedError(utils.ErrMsgUserGone)
		}
		return nil, err
	}

	if user.ChangedPasswordAfter(claims.IssuedAtUnix()) {
		return nil, utils.NewUnauthenticatedError(utils.ErrMsgPasswordChanged)
	}

	return user, nil
}

// ForgotPassword stores a hashed reset token and emails the plain one. If the
// email cannot be sent the token is cleared again.
func (s *authService) ForgotPassword(ctx context.Context, request *validators.ForgotPasswordRequest) error {
	if errs := validators.ValidateForgotPassword(request); len(errs) > 0 {
		return utils.NewValidationError(errs.Message())
	}

	user, err := s.userRepo.GetByEmail(ctx, request.Email)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return utils.NewNotFoundError("There is no user with that email address.")
		}
		return err
	}

	plain, hashed, err := utils.NewPasswordResetToken()
	if err != nil {
		return fmt.Errorf("failed to generate reset token: %w", err)
	}

	expires := s.now().Add(s.config.PasswordResetTTL)
	if err := s.userRepo.SetPasswordResetToken(ctx, user.ID, hashed, expires); err != nil {
		return err
	}

	resetURL := fmt.Sprintf("%s/api/v1/users/reset-password/%s", strings.TrimRight(s.config.BaseURL, "/"), plain)
	if sendErr := s.emailService.SendPasswordReset(ctx, user, resetURL, s.config.PasswordResetTTL); sendErr != nil {
		if err := s.userRepo.ClearPasswordResetToken(ctx, user.ID); err != nil {
			s.logger.WithError(err).WithUserID(user.ID).Error("Failed to clear password reset token")
		}
		return utils.NewDeliveryError("There was an error sending the email. Try again later!", sendErr)
	}

	s.logger.LogUserAction(user.ID, "password_reset_requested", nil)
	return nil
}

func (s *authService) ResetPassword(ctx context.Context, token string, request *validators.ResetPasswordRequest) (*AuthResult, error) {
	user, err := s.userRepo.GetByResetToken(ctx, utils.HashToken(token), s.now())
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, utils.NewBadRequestError(utils.ErrMsgInvalidResetToken)
		}
		return nil, err
	}

	if errs := validators.ValidateResetPassword(request); len(errs) > 0 {
		return nil, utils.NewValidationError(errs.Message())
	}

	if err := s.setPassword(ctx, user, request.Password); err != nil {
		return nil, err
	}

	s.logger.LogUserAction(user.ID, "password_reset", nil)
	return s.issue(user)
}

func (s *authService) UpdatePassword(ctx context.Context, user *models.User, request *validators.UpdatePasswordRequest) (*AuthResult, error) {
	if errs := validators.ValidatePasswordUpdate(request); len(errs) > 0 {
		return nil, utils.NewValidationError(errs.Message())
	}

	if !s.checkPassword(request.PasswordCurrent, user.Password) {
		s.logger.LogSecurityEvent("password_update_rejected", "medium", map[string]interface{}{"user_id": user.ID.Hex()})
		return nil, utils.NewUnauthenticatedError("Your current password is wrong.")
	}

	if err := s.setPassword(ctx, user, request.Password); err != nil {
		return nil, err
	}

	s.logger.LogUserAction(user.ID, "password_updated", nil)
	return s.issue(user)
}

// setPassword stores a new hash. passwordChangedAt is backdated one second so
// a token issued right after the change is not rejected.
func (s *authService) setPassword(ctx context.Context, user *models.User, password string) error {
	hash, err := s.hashPassword(password)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	changedAt := s.now().Add(-time.Second)
	if err := s.userRepo.UpdatePassword(ctx, user.ID, hash, changedAt); err != nil {
		return err
	}

	user.Password = hash
	user.PasswordChangedAt = &changedAt
	user.PasswordResetToken = ""
	user.PasswordResetExpires = nil
	return nil
}

func (s *authService) issue(user *models.User) (*AuthResult, error) {
	token, err := s.generateToken(user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}
	return &AuthResult{Token: token, User: user}, nil
}

func (s *authService) generateToken(userID primitive.ObjectID) (string, error) {
	return utils.GenerateToken(userID, s.config.JWTSecret, s.config.JWTExpiresIn)
}

func (s *authService) hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.config.BcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func (s *authService) checkPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
