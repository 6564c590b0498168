package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"tourbook/internal/models"
	"tourbook/internal/repositories/interfaces"
	"tourbook/internal/utils"
	"tourbook/pkg/database"
)

type reviewRepository struct {
	collection *mongo.Collection
	users      *mongo.Collection
}

func NewReviewRepository(db *mongo.Database) interfaces.ReviewRepository {
	return &reviewRepository{
		collection: db.Collection(database.ReviewsCollection),
		users:      db.Collection(database.UsersCollection),
	}
}

func (r *reviewRepository) Create(ctx context.Context, review *models.Review) error {
	if review.ID.IsZero() {
		review.ID = primitive.NewObjectID()
	}
	if review.CreatedAt.IsZero() {
		review.CreatedAt = time.Now()
	}

	if _, err := r.collection.InsertOne(ctx, review); err != nil {
		return fmt.Errorf("failed to create review: %w", err)
	}
	return r.populateAuthors(ctx, []*models.Review{review})
}

func (r *reviewRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Review, error) {
	var review models.Review
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&review); err != nil {
		return nil, notFound(err, "get review")
	}
	if err := r.populateAuthors(ctx, []*models.Review{&review}); err != nil {
		return nil, err
	}
	return &review, nil
}

func (r *reviewRepository) List(ctx context.Context, base bson.M, features *utils.APIFeatures) ([]*models.Review, error) {
	cursor, err := r.collection.Find(ctx, features.FilterDocument(base), features.FindOptions())
	if err != nil {
		return nil, fmt.Errorf("failed to list reviews: %w", err)
	}

	reviews, err := decodeAll[models.Review](ctx, cursor)
	if err != nil {
		return nil, err
	}
	return reviews, r.populateAuthors(ctx, reviews)
}

func (r *reviewRepository) ListByTour(ctx context.Context, tourID primitive.ObjectID) ([]*models.Review, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})

	cursor, err := r.collection.Find(ctx, bson.M{"tour": tourID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list tour reviews: %w", err)
	}

	reviews, err := decodeAll[models.Review](ctx, cursor)
	if err != nil {
		return nil, err
	}
	return reviews, r.populateAuthors(ctx, reviews)
}

func (r *reviewRepository) Update(ctx context.Context, id primitive.ObjectID, updates bson.M) (*models.Review, error) {
	change := bson.M{"$inc": bson.M{utils.VersionField: 1}}
	if len(updates) > 0 {
		change["$set"] = updates
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var review models.Review
	if err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, change, opts).Decode(&review); err != nil {
		return nil, notFound(err, "update review")
	}
	if err := r.populateAuthors(ctx, []*models.Review{&review}); err != nil {
		return nil, err
	}
	return &review, nil
}

func (r *reviewRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete review: %w", err)
	}
	if result.DeletedCount == 0 {
		return interfaces.ErrNotFound
	}
	return nil
}

func (r *reviewRepository) CalcRatingStats(ctx context.Context, tourID primitive.ObjectID) (*models.RatingStats, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"tour": tourID}}},
		{{Key: "$group", Value: bson.M{
			"_id":       "$tour",
			"nRating":   bson.M{"$sum": 1},
			"avgRating": bson.M{"$avg": "$rating"},
		}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate ratings: %w", err)
	}

	stats, err := decodeAll[models.RatingStats](ctx, cursor)
	if err != nil {
		return nil, err
	}
	if len(stats) == 0 {
		return &models.RatingStats{}, nil
	}
	return stats[0], nil
}

func (r *reviewRepository) InsertMany(ctx context.Context, reviews []*models.Review) error {
	if len(reviews) == 0 {
		return nil
	}
	if _, err := r.collection.InsertMany(ctx, toInterfaces(reviews)); err != nil {
		return fmt.Errorf("failed to insert reviews: %w", err)
	}
	return nil
}

func (r *reviewRepository) DeleteAll(ctx context.Context) (int64, error) {
	result, err := r.collection.DeleteMany(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to delete reviews: %w", err)
	}
	return result.DeletedCount, nil
}

// populateAuthors loads {name, photo} of each review's author in one query.
func (r *reviewRepository) populateAuthors(ctx context.Context, reviews []*models.Review) error {
	if len(reviews) == 0 {
		return nil
	}

	seen := make(map[primitive.ObjectID]bool, len(reviews))
	ids := make([]primitive.ObjectID, 0, len(reviews))
	for _, rv := range reviews {
		if !rv.User.IsZero() && !seen[rv.User] {
			seen[rv.User] = true
			ids = append(ids, rv.User)
		}
	}
	if len(ids) == 0 {
		return nil
	}

	opts := options.Find().SetProjection(bson.M{"name": 1, "photo": 1})
	cursor, err := r.users.Find(ctx, bson.M{"_id": bson.M{"$in": ids}, "active": bson.M{"$ne": false}}, opts)
	if err != nil {
		return fmt.Errorf("failed to populate review authors: %w", err)
	}

	authors, err := decodeAll[models.UserSummary](ctx, cursor)
	if err != nil {
		return err
	}

	byID := make(map[primitive.ObjectID]*models.UserSummary, len(authors))
	for _, a := range authors {
		byID[a.ID] = a
	}
	for _, rv := range reviews {
		rv.Author = byID[rv.User]
	}
	return nil
}
