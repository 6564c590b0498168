package mocks

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"tourbook/internal/models"
	"tourbook/internal/repositories/interfaces"
	"tourbook/internal/utils"
)

// ReviewRepository implements interfaces.ReviewRepository in memory. It
// enforces the {tour, user} unique index and evaluates the tour condition
// of a List base filter.
type ReviewRepository struct {
	mu      sync.Mutex
	Reviews map[primitive.ObjectID]*models.Review

	Err      error
	StatsErr error
}

var _ interfaces.ReviewRepository = (*ReviewRepository)(nil)

func NewReviewRepository() *ReviewRepository {
	return &ReviewRepository{Reviews: make(map[primitive.ObjectID]*models.Review)}
}

func (m *ReviewRepository) Create(ctx context.Context, review *models.Review) error {
	if m.Err != nil {
		return m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, r := range m.Reviews {
		if r.Tour == review.Tour && r.User == review.User {
			return duplicateKeyError("tour_1_user_1", bson.M{"tour": review.Tour.Hex(), "user": review.User.Hex()})
		}
	}
	if review.ID.IsZero() {
		review.ID = primitive.NewObjectID()
	}
	if review.CreatedAt.IsZero() {
		review.CreatedAt = time.Now()
	}
	m.Reviews[review.ID] = clone(review)
	return nil
}

func (m *ReviewRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Review, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.Reviews[id]
	if !ok {
		return nil, interfaces.ErrNotFound
	}
	return clone(r), nil
}

func (m *ReviewRepository) List(ctx context.Context, base bson.M, features *utils.APIFeatures) ([]*models.Review, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	tourID, _ := base["tour"].(primitive.ObjectID)
	return page(m.filter(tourID), features.Skip(), features.Limit()), nil
}

func (m *ReviewRepository) ListByTour(ctx context.Context, tourID primitive.ObjectID) ([]*models.Review, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return m.filter(tourID), nil
}

// filter returns reviews of tourID, or all reviews for a zero id, newest
// first.
func (m *ReviewRepository) filter(tourID primitive.ObjectID) []*models.Review {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]*models.Review, 0, len(m.Reviews))
	for _, r := range m.Reviews {
		if tourID.IsZero() || r.Tour == tourID {
			out = append(out, clone(r))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (m *ReviewRepository) Update(ctx context.Context, id primitive.ObjectID, updates bson.M) (*models.Review, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.Reviews[id]
	if !ok {
		return nil, interfaces.ErrNotFound
	}
	updated, err := applySet(r, updates)
	if err != nil {
		return nil, err
	}
	updated.Version++
	m.Reviews[id] = updated
	return clone(updated), nil
}

func (m *ReviewRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	if m.Err != nil {
		return m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.Reviews[id]; !ok {
		return interfaces.ErrNotFound
	}
	delete(m.Reviews, id)
	return nil
}

func (m *ReviewRepository) CalcRatingStats(ctx context.Context, tourID primitive.ObjectID) (*models.RatingStats, error) {
	if m.StatsErr != nil {
		return nil, m.StatsErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	stats := &models.RatingStats{}
	sum := 0
	for _, r := range m.Reviews {
		if r.Tour == tourID {
			stats.Quantity++
			sum += r.Rating
		}
	}
	if stats.Quantity > 0 {
		stats.Average = float64(sum) / float64(stats.Quantity)
	}
	return stats, nil
}

func (m *ReviewRepository) InsertMany(ctx context.Context, reviews []*models.Review) error {
	for _, r := range reviews {
		if err := m.Create(ctx, r); err != nil {
			return err
		}
	}
	return nil
}

func (m *ReviewRepository) DeleteAll(ctx context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := int64(len(m.Reviews))
	m.Reviews = make(map[primitive.ObjectID]*models.Review)
	return n, nil
}
