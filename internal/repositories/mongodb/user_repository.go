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

type userRepository struct {
	collection *mongo.Collection
}

func NewUserRepository(db *mongo.Database) interfaces.UserRepository {
	return &userRepository{
		collection: db.Collection(database.UsersCollection),
	}
}

// active matches users that have not deactivated their account. Documents
// written before the flag existed count as active.
func active(filter bson.M) bson.M {
	filter["active"] = bson.M{"$ne": false}
	return filter
}

// Basic CRUD operations
func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}

	if _, err := r.collection.InsertOne(ctx, user); err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	return r.findOne(ctx, active(bson.M{"_id": id}))
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.findOne(ctx, active(bson.M{"email": email}))
}

func (r *userRepository) GetByResetToken(ctx context.Context, hashedToken string, now time.Time) (*models.User, error) {
	return r.findOne(ctx, active(bson.M{
		"passwordResetToken":   hashedToken,
		"passwordResetExpires": bson.M{"$gt": now},
	}))
}

func (r *userRepository) findOne(ctx context.Context, filter bson.M) (*models.User, error) {
	var user models.User
	if err := r.collection.FindOne(ctx, filter).Decode(&user); err != nil {
		return nil, notFound(err, "get user")
	}
	return &user, nil
}

func (r *userRepository) List(ctx context.Context, features *utils.APIFeatures) ([]*models.User, error) {
	filter := features.FilterDocument(active(bson.M{}))

	cursor, err := r.collection.Find(ctx, filter, features.FindOptions())
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return decodeAll[models.User](ctx, cursor)
}

func (r *userRepository) Update(ctx context.Context, id primitive.ObjectID, updates bson.M) (*models.User, error) {
	return r.findOneAndUpdate(ctx, id, updates, nil)
}

// AdminUpdate skips the active filter so an admin can reactivate a user.
func (r *userRepository) AdminUpdate(ctx context.Context, id primitive.ObjectID, updates bson.M) (*models.User, error) {
	return r.updateOne(ctx, bson.M{"_id": id}, updates, nil)
}

func (r *userRepository) findOneAndUpdate(ctx context.Context, id primitive.ObjectID, set, unset bson.M) (*models.User, error) {
	return r.updateOne(ctx, active(bson.M{"_id": id}), set, unset)
}

func (r *userRepository) updateOne(ctx context.Context, filter, set, unset bson.M) (*models.User, error) {
	change := bson.M{"$inc": bson.M{utils.VersionField: 1}}
	if len(set) > 0 {
		change["$set"] = set
	}
	if len(unset) > 0 {
		change["$unset"] = unset
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var user models.User
	if err := r.collection.FindOneAndUpdate(ctx, filter, change, opts).Decode(&user); err != nil {
		return nil, notFound(err, "update user")
	}
	return &user, nil
}

func (r *userRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if result.DeletedCount == 0 {
		return interfaces.ErrNotFound
	}
	return nil
}

// Deactivate is the self-service soft delete.
func (r *userRepository) Deactivate(ctx context.Context, id primitive.ObjectID) error {
	_, err := r.findOneAndUpdate(ctx, id, bson.M{"active": false}, nil)
	return err
}

// Authentication operations
func (r *userRepository) SetPasswordResetToken(ctx context.Context, id primitive.ObjectID, hashedToken string, expires time.Time) error {
	_, err := r.findOneAndUpdate(ctx, id, bson.M{
		"passwordResetToken":   hashedToken,
		"passwordResetExpires": expires,
	}, nil)
	return err
}

func (r *userRepository) ClearPasswordResetToken(ctx context.Context, id primitive.ObjectID) error {
	_, err := r.findOneAndUpdate(ctx, id, nil, bson.M{
		"passwordResetToken":   "",
		"passwordResetExpires": "",
	})
	return err
}

func (r *userRepository) UpdatePassword(ctx context.Context, id primitive.ObjectID, passwordHash string, changedAt time.Time) error {
	_, err := r.findOneAndUpdate(ctx, id, bson.M{
		"password":          passwordHash,
		"passwordChangedAt": changedAt,
	}, bson.M{
		"passwordResetToken":   "",
		"passwordResetExpires": "",
	})
	return err
}

func (r *userRepository) GetSummaries(ctx context.Context, ids []primitive.ObjectID) ([]*models.UserSummary, error) {
	if len(ids) == 0 {
		return []*models.UserSummary{}, nil
	}

	opts := options.Find().SetProjection(bson.M{"name": 1, "email": 1, "photo": 1, "role": 1})
	cursor, err := r.collection.Find(ctx, active(bson.M{"_id": bson.M{"$in": ids}}), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to get user summaries: %w", err)
	}
	return decodeAll[models.UserSummary](ctx, cursor)
}

func (r *userRepository) InsertMany(ctx context.Context, users []*models.User) error {
	if len(users) == 0 {
		return nil
	}
	if _, err := r.collection.InsertMany(ctx, toInterfaces(users)); err != nil {
		return fmt.Errorf("failed to insert users: %w", err)
	}
	return nil
}

func (r *userRepository) DeleteAll(ctx context.Context) (int64, error) {
	result, err := r.collection.DeleteMany(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to delete users: %w", err)
	}
	return result.DeletedCount, nil
}
