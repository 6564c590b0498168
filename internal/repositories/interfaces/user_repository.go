package interfaces

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"tourbook/internal/models"
	"tourbook/internal/utils"
)

// UserRepository only ever returns active users. AdminUpdate is the one
// exception: it also matches deactivated accounts so they can be restored.
type UserRepository interface {
	// Basic CRUD operations
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	List(ctx context.Context, features *utils.APIFeatures) ([]*models.User, error)
	Update(ctx context.Context, id primitive.ObjectID, updates bson.M) (*models.User, error)
	AdminUpdate(ctx context.Context, id primitive.ObjectID, updates bson.M) (*models.User, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	Deactivate(ctx context.Context, id primitive.ObjectID) error

	// Authentication operations
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByResetToken(ctx context.Context, hashedToken string, now time.Time) (*models.User, error)
	SetPasswordResetToken(ctx context.Context, id primitive.ObjectID, hashedToken string, expires time.Time) error
	ClearPasswordResetToken(ctx context.Context, id primitive.ObjectID) error
	UpdatePassword(ctx context.Context, id primitive.ObjectID, passwordHash string, changedAt time.Time) error

	// Population
	GetSummaries(ctx context.Context, ids []primitive.ObjectID) ([]*models.UserSummary, error)

	InsertMany(ctx context.Context, users []*models.User) error
	DeleteAll(ctx context.Context) (int64, error)
}
