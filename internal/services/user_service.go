package services

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"tourbook/internal/models"
	"tourbook/internal/repositories/interfaces"
	"tourbook/internal/utils"
	"tourbook/internal/validators"
	"tourbook/pkg/logger"
	"tourbook/pkg/storage"
)

const errMsgUserNotFound = "No user found with that ID"

type UserService interface {
	// Self service
	UpdateMe(ctx context.Context, user *models.User, request *validators.UpdateMeRequest) (*models.User, error)
	UpdatePhoto(ctx context.Context, user *models.User, photo io.Reader) (*models.User, error)
	DeleteMe(ctx context.Context, user *models.User) error

	// Administration
	GetUser(ctx context.Context, id string) (*models.User, error)
	ListUsers(ctx context.Context, query url.Values) ([]*models.User, error)
	UpdateUser(ctx context.Context, id string, request *validators.UpdateUserRequest) (*models.User, error)
	DeleteUser(ctx context.Context, id string) error
}

type userService struct {
	userRepo   interfaces.UserRepository
	storage    storage.StorageProvider
	logger     *logger.Logger
	maxResults int
	now        func() time.Time
}

func NewUserService(
	userRepo interfaces.UserRepository,
	storageProvider storage.StorageProvider,
	logger *logger.Logger,
	maxResults int,
) UserService {
	return &userService{
		userRepo:   userRepo,
		storage:    storageProvider,
		logger:     logger,
		maxResults: maxResults,
		now:        time.Now,
	}
}

func (s *userService) UpdateMe(ctx context.Context, user *models.User, request *validators.UpdateMeRequest) (*models.User, error) {
	if request.Password != "" || request.PasswordConfirm != "" {
		return nil, utils.NewBadRequestError("This route is not for password updates. Please use /update-password.")
	}
	if errs := validators.ValidateUpdateMe(request); len(errs) > 0 {
		return nil, utils.NewValidationError(errs.Message())
	}

	updates := bson.M{}
	if request.Name != nil {
		updates["name"] = *request.Name
	}
	if request.Email != nil {
		updates["email"] = *request.Email
	}

	updated, err := s.userRepo.Update(ctx, user.ID, updates)
	if err != nil {
		return nil, notFoundAs(err, errMsgUserNotFound)
	}

	s.logger.LogUserAction(user.ID, "profile_updated", nil)
	return updated, nil
}

// UpdatePhoto stores a square JPEG of the uploaded image and records its key.
func (s *userService) UpdatePhoto(ctx context.Context, user *models.User, photo io.Reader) (*models.User, error) {
	key := fmt.Sprintf("users/user-%s-%d.jpeg", user.ID.Hex(), s.now().UnixMilli())
	stored, err := storeImage(ctx, s.storage, key, photo, utils.UserPhotoSize, utils.UserPhotoSize)
	if err != nil {
		return nil, err
	}

	updated, err := s.userRepo.Update(ctx, user.ID, bson.M{"photo": stored})
	if err != nil {
		if delErr := s.storage.Delete(ctx, stored); delErr != nil {
			s.logger.WithError(delErr).WithUserID(user.ID).Warn("Failed to delete orphaned photo")
		}
		return nil, notFoundAs(err, errMsgUserNotFound)
	}

	if previous := user.Photo; previous != "" && previous != models.DefaultUserPhoto && previous != stored {
		if err := s.storage.Delete(ctx, previous); err != nil {
			s.logger.WithError(err).WithUserID(user.ID).Warn("Failed to delete previous photo")
		}
	}

	s.logger.LogUserAction(user.ID, "photo_updated", map[string]interface{}{"photo": stored})
	return updated, nil
}

// DeleteMe deactivates the account; the document is kept.
func (s *userService) DeleteMe(ctx context.Context, user *models.User) error {
	if err := s.userRepo.Deactivate(ctx, user.ID); err != nil {
		return notFoundAs(err, errMsgUserNotFound)
	}
	s.logger.LogUserAction(user.ID, "account_deactivated", nil)
	return nil
}

func (s *userService) GetUser(ctx context.Context, id string) (*models.User, error) {
	userID, err := parseID(id)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, notFoundAs(err, errMsgUserNotFound)
	}
	return user, nil
}

func (s *userService) ListUsers(ctx context.Context, query url.Values) ([]*models.User, error) {
	features := utils.NewAPIFeatures(query, s.maxResults).
		Filter().
		Sort().
		LimitFields().
		Paginate()

	return s.userRepo.List(ctx, features)
}

// UpdateUser is the admin update. Passwords cannot be changed here.
func (s *userService) UpdateUser(ctx context.Context, id string, request *validators.UpdateUserRequest) (*models.User, error) {
	userID, err := parseID(id)
	if err != nil {
		return nil, err
	}
	if errs := validators.ValidateUserUpdate(request); len(errs) > 0 {
		return nil, utils.NewValidationError(errs.Message())
	}

	updates := bson.M{}
	if request.Name != nil {
		updates["name"] = *request.Name
	}
	if request.Email != nil {
		updates["email"] = *request.Email
	}
	if request.Photo != nil {
		updates["photo"] = *request.Photo
	}
	if request.Role != nil {
		updates["role"] = *request.Role
	}
	if request.Active != nil {
		updates["active"] = *request.Active
	}

	user, err := s.userRepo.AdminUpdate(ctx, userID, updates)
	if err != nil {
		return nil, notFoundAs(err, errMsgUserNotFound)
	}

	s.logger.WithUserID(userID).WithField("fields", len(updates)).Info("User updated by admin")
	return user, nil
}

func (s *userService) DeleteUser(ctx context.Context, id string) error {
	userID, err := parseID(id)
	if err != nil {
		return err
	}

	if err := s.userRepo.Delete(ctx, userID); err != nil {
		return notFoundAs(err, errMsgUserNotFound)
	}

	s.logger.WithUserID(userID).Info("User deleted by admin")
	return nil
}
