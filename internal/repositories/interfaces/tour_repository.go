package interfaces

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"tourbook/internal/models"
	"tourbook/internal/utils"
)

type TourRepository interface {
	// Basic CRUD operations
	Create(ctx context.Context, tour *models.Tour) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Tour, error)
	GetBySlug(ctx context.Context, slug string) (*models.Tour, error)
	List(ctx context.Context, features *utils.APIFeatures) ([]*models.Tour, error)
	Update(ctx context.Context, id primitive.ObjectID, updates bson.M) (*models.Tour, error)
	Delete(ctx context.Context, id primitive.ObjectID) error

	UpdateRatings(ctx context.Context, id primitive.ObjectID, average float64, quantity int) error

	// Aggregations
	Stats(ctx context.Context) ([]*models.TourStats, error)
	MonthlyPlan(ctx context.Context, year int) ([]*models.MonthlyPlan, error)
	Within(ctx context.Context, lat, lng, radiusRadians float64) ([]*models.Tour, error)
	Distances(ctx context.Context, lat, lng, multiplier float64) ([]*models.TourDistance, error)

	// Bulk operations for seeding
	InsertMany(ctx context.Context, tours []*models.Tour) error
	DeleteAll(ctx context.Context) (int64, error)
}
