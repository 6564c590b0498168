package interfaces

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"tourbook/internal/models"
	"tourbook/internal/utils"
)

type ReviewRepository interface {
	Create(ctx context.Context, review *models.Review) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Review, error)
	List(ctx context.Context, base bson.M, features *utils.APIFeatures) ([]*models.Review, error)
	ListByTour(ctx context.Context, tourID primitive.ObjectID) ([]*models.Review, error)
	Update(ctx context.Context, id primitive.ObjectID, updates bson.M) (*models.Review, error)
	Delete(ctx context.Context, id primitive.ObjectID) error

	// CalcRatingStats returns the review count and mean rating for a tour.
	// A tour without reviews yields a zero Quantity.
	CalcRatingStats(ctx context.Context, tourID primitive.ObjectID) (*models.RatingStats, error)

	InsertMany(ctx context.Context, reviews []*models.Review) error
	DeleteAll(ctx context.Context) (int64, error)
}
