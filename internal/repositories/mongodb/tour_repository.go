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

type tourRepository struct {
	collection *mongo.Collection
}

func NewTourRepository(db *mongo.Database) interfaces.TourRepository {
	return &tourRepository{
		collection: db.Collection(database.ToursCollection),
	}
}

// notSecret hides secret tours from every read.
func notSecret() bson.M {
	return bson.M{"secretTour": bson.M{"$ne": true}}
}

func (r *tourRepository) Create(ctx context.Context, tour *models.Tour) error {
	if tour.ID.IsZero() {
		tour.ID = primitive.NewObjectID()
	}
	if tour.CreatedAt.IsZero() {
		tour.CreatedAt = time.Now()
	}

	if _, err := r.collection.InsertOne(ctx, tour); err != nil {
		return fmt.Errorf("failed to create tour: %w", err)
	}
	return nil
}

func (r *tourRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Tour, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *tourRepository) GetBySlug(ctx context.Context, slug string) (*models.Tour, error) {
	return r.findOne(ctx, bson.M{"slug": slug})
}

func (r *tourRepository) findOne(ctx context.Context, filter bson.M) (*models.Tour, error) {
	filter["secretTour"] = bson.M{"$ne": true}

	var tour models.Tour
	if err := r.collection.FindOne(ctx, filter).Decode(&tour); err != nil {
		return nil, notFound(err, "get tour")
	}
	return &tour, nil
}

func (r *tourRepository) List(ctx context.Context, features *utils.APIFeatures) ([]*models.Tour, error) {
	cursor, err := r.collection.Find(ctx, features.FilterDocument(notSecret()), features.FindOptions())
	if err != nil {
		return nil, fmt.Errorf("failed to list tours: %w", err)
	}
	return decodeAll[models.Tour](ctx, cursor)
}

func (r *tourRepository) Update(ctx context.Context, id primitive.ObjectID, updates bson.M) (*models.Tour, error) {
	change := bson.M{"$inc": bson.M{utils.VersionField: 1}}
	if len(updates) > 0 {
		change["$set"] = updates
	}

	filter := bson.M{"_id": id, "secretTour": bson.M{"$ne": true}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var tour models.Tour
	if err := r.collection.FindOneAndUpdate(ctx, filter, change, opts).Decode(&tour); err != nil {
		return nil, notFound(err, "update tour")
	}
	return &tour, nil
}

func (r *tourRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id, "secretTour": bson.M{"$ne": true}})
	if err != nil {
		return fmt.Errorf("failed to delete tour: %w", err)
	}
	if result.DeletedCount == 0 {
		return interfaces.ErrNotFound
	}
	return nil
}

// UpdateRatings stores recomputed aggregates. Secret tours are included so
// their figures stay correct.
func (r *tourRepository) UpdateRatings(ctx context.Context, id primitive.ObjectID, average float64, quantity int) error {
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$set": bson.M{
			"ratingsAverage":  average,
			"ratingsQuantity": quantity,
		},
	})
	if err != nil {
		return fmt.Errorf("failed to update tour ratings: %w", err)
	}
	return nil
}

func (r *tourRepository) Stats(ctx context.Context) ([]*models.TourStats, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"ratingsAverage": bson.M{"$gte": 4.5},
			"secretTour":     bson.M{"$ne": true},
		}}},
		{{Key: "$group", Value: bson.M{
			"_id":        bson.M{"$toUpper": "$difficulty"},
			"numTours":   bson.M{"$sum": 1},
			"numRatings": bson.M{"$sum": "$ratingsQuantity"},
			"avgRating":  bson.M{"$avg": "$ratingsAverage"},
			"avgPrice":   bson.M{"$avg": "$price"},
			"minPrice":   bson.M{"$min": "$price"},
			"maxPrice":   bson.M{"$max": "$price"},
		}}},
		{{Key: "$sort", Value: bson.M{"avgPrice": 1}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate tour stats: %w", err)
	}
	return decodeAll[models.TourStats](ctx, cursor)
}

func (r *tourRepository) MonthlyPlan(ctx context.Context, year int) ([]*models.MonthlyPlan, error) {
	start, end := models.StartDateRange(year)

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: notSecret()}},
		{{Key: "$unwind", Value: "$startDates"}},
		{{Key: "$match", Value: bson.M{
			"startDates": bson.M{"$gte": start, "$lte": end},
		}}},
		{{Key: "$group", Value: bson.M{
			"_id":           bson.M{"$month": "$startDates"},
			"numTourStarts": bson.M{"$sum": 1},
			"tours":         bson.M{"$push": "$name"},
		}}},
		{{Key: "$addFields", Value: bson.M{"month": "$_id"}}},
		{{Key: "$project", Value: bson.M{"_id": 0}}},
		{{Key: "$sort", Value: bson.M{"month": 1}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate monthly plan: %w", err)
	}
	return decodeAll[models.MonthlyPlan](ctx, cursor)
}

func (r *tourRepository) Within(ctx context.Context, lat, lng, radiusRadians float64) ([]*models.Tour, error) {
	filter := bson.M{
		"startLocation": bson.M{
			"$geoWithin": bson.M{
				"$centerSphere": bson.A{bson.A{lng, lat}, radiusRadians},
			},
		},
		"secretTour": bson.M{"$ne": true},
	}

	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to find tours within radius: %w", err)
	}
	return decodeAll[models.Tour](ctx, cursor)
}

func (r *tourRepository) Distances(ctx context.Context, lat, lng, multiplier float64) ([]*models.TourDistance, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$geoNear", Value: bson.M{
			"near": bson.M{
				"type":        models.GeoJSONPoint,
				"coordinates": bson.A{lng, lat},
			},
			"distanceField":      "distance",
			"distanceMultiplier": multiplier,
			"query":              notSecret(),
		}}},
		{{Key: "$project", Value: bson.M{"distance": 1, "name": 1}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to compute tour distances: %w", err)
	}
	return decodeAll[models.TourDistance](ctx, cursor)
}

func (r *tourRepository) InsertMany(ctx context.Context, tours []*models.Tour) error {
	if len(tours) == 0 {
		return nil
	}
	if _, err := r.collection.InsertMany(ctx, toInterfaces(tours)); err != nil {
		return fmt.Errorf("failed to insert tours: %w", err)
	}
	return nil
}

func (r *tourRepository) DeleteAll(ctx context.Context) (int64, error) {
	result, err := r.collection.DeleteMany(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to delete tours: %w", err)
	}
	return result.DeletedCount, nil
}
