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

// TourRepository implements interfaces.TourRepository in memory. Filters
// built by APIFeatures are not evaluated; List honours skip and limit only.
type TourRepository struct {
	mu    sync.Mutex
	Tours map[primitive.ObjectID]*models.Tour

	// Canned aggregation results.
	StatsResult       []*models.TourStats
	MonthlyPlanResult []*models.MonthlyPlan
	WithinResult      []*models.Tour
	DistancesResult   []*models.TourDistance

	Err error

	StatsCalls       int
	UpdateRatingsLog []RatingsUpdate
	LastWithin       struct{ Lat, Lng, Radius float64 }
	LastDistances    struct{ Lat, Lng, Multiplier float64 }
}

type RatingsUpdate struct {
	TourID   primitive.ObjectID
	Average  float64
	Quantity int
}

var _ interfaces.TourRepository = (*TourRepository)(nil)

func NewTourRepository() *TourRepository {
	return &TourRepository{Tours: make(map[primitive.ObjectID]*models.Tour)}
}

// Seed stores tours as-is, assigning ids where missing.
func (m *TourRepository) Seed(tours ...*models.Tour) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range tours {
		if t.ID.IsZero() {
			t.ID = primitive.NewObjectID()
		}
		m.Tours[t.ID] = clone(t)
	}
}

func (m *TourRepository) Create(ctx context.Context, tour *models.Tour) error {
	if m.Err != nil {
		return m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, t := range m.Tours {
		if t.Name == tour.Name {
			return duplicateKeyError("name_1", bson.M{"name": tour.Name})
		}
	}
	if tour.ID.IsZero() {
		tour.ID = primitive.NewObjectID()
	}
	if tour.CreatedAt.IsZero() {
		tour.CreatedAt = time.Now()
	}
	m.Tours[tour.ID] = clone(tour)
	return nil
}

func (m *TourRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Tour, error) {
	return m.find(func(t *models.Tour) bool { return t.ID == id })
}

func (m *TourRepository) GetBySlug(ctx context.Context, slug string) (*models.Tour, error) {
	return m.find(func(t *models.Tour) bool { return t.Slug == slug })
}

func (m *TourRepository) find(match func(*models.Tour) bool) (*models.Tour, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, t := range m.Tours {
		if !t.SecretTour && match(t) {
			return clone(t), nil
		}
	}
	return nil, interfaces.ErrNotFound
}

func (m *TourRepository) List(ctx context.Context, features *utils.APIFeatures) ([]*models.Tour, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]*models.Tour, 0, len(m.Tours))
	for _, t := range m.Tours {
		if !t.SecretTour {
			out = append(out, clone(t))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return page(out, features.Skip(), features.Limit()), nil
}

func (m *TourRepository) Update(ctx context.Context, id primitive.ObjectID, updates bson.M) (*models.Tour, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.Tours[id]
	if !ok || t.SecretTour {
		return nil, interfaces.ErrNotFound
	}
	updated, err := applySet(t, updates)
	if err != nil {
		return nil, err
	}
	updated.Version++
	m.Tours[id] = updated
	return clone(updated), nil
}

func (m *TourRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	if m.Err != nil {
		return m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.Tours[id]
	if !ok || t.SecretTour {
		return interfaces.ErrNotFound
	}
	delete(m.Tours, id)
	return nil
}

func (m *TourRepository) UpdateRatings(ctx context.Context, id primitive.ObjectID, average float64, quantity int) error {
	if m.Err != nil {
		return m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	m.UpdateRatingsLog = append(m.UpdateRatingsLog, RatingsUpdate{TourID: id, Average: average, Quantity: quantity})
	if t, ok := m.Tours[id]; ok {
		t.RatingsAverage = average
		t.RatingsQuantity = quantity
	}
	return nil
}

func (m *TourRepository) Stats(ctx context.Context) ([]*models.TourStats, error) {
	m.mu.Lock()
	m.StatsCalls++
	m.mu.Unlock()
	return m.StatsResult, m.Err
}

func (m *TourRepository) MonthlyPlan(ctx context.Context, year int) ([]*models.MonthlyPlan, error) {
	return m.MonthlyPlanResult, m.Err
}

func (m *TourRepository) Within(ctx context.Context, lat, lng, radiusRadians float64) ([]*models.Tour, error) {
	m.mu.Lock()
	m.LastWithin.Lat, m.LastWithin.Lng, m.LastWithin.Radius = lat, lng, radiusRadians
	m.mu.Unlock()
	return m.WithinResult, m.Err
}

func (m *TourRepository) Distances(ctx context.Context, lat, lng, multiplier float64) ([]*models.TourDistance, error) {
	m.mu.Lock()
	m.LastDistances.Lat, m.LastDistances.Lng, m.LastDistances.Multiplier = lat, lng, multiplier
	m.mu.Unlock()
	return m.DistancesResult, m.Err
}

func (m *TourRepository) InsertMany(ctx context.Context, tours []*models.Tour) error {
	for _, t := range tours {
		if err := m.Create(ctx, t); err != nil {
			return err
		}
	}
	return nil
}

func (m *TourRepository) DeleteAll(ctx context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := int64(len(m.Tours))
	m.Tours = make(map[primitive.ObjectID]*models.Tour)
	return n, nil
}
