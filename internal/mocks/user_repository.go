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

// UserRepository implements interfaces.UserRepository in memory. Like the
// MongoDB implementation it hides inactive users from every read.
type UserRepository struct {
	mu    sync.Mutex
	Users map[primitive.ObjectID]*models.User

	Err error
	// ClearResetErr fails ClearPasswordResetToken only.
	ClearResetErr error

	ClearResetCalls int
}

var _ interfaces.UserRepository = (*UserRepository)(nil)

func NewUserRepository() *UserRepository {
	return &UserRepository{Users: make(map[primitive.ObjectID]*models.User)}
}

// Seed stores users as-is, assigning ids where missing.
func (m *UserRepository) Seed(users ...*models.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range users {
		if u.ID.IsZero() {
			u.ID = primitive.NewObjectID()
		}
		m.Users[u.ID] = clone(u)
	}
}

// Stored returns the raw stored document, including inactive users.
func (m *UserRepository) Stored(id primitive.ObjectID) *models.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.Users[id]; ok {
		return clone(u)
	}
	return nil
}

func (m *UserRepository) Create(ctx context.Context, user *models.User) error {
	if m.Err != nil {
		return m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.Users {
		if u.Email == user.Email {
			return duplicateKeyError("email_1", bson.M{"email": user.Email})
		}
	}
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}
	m.Users[user.ID] = clone(user)
	return nil
}

func (m *UserRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	return m.find(func(u *models.User) bool { return u.ID == id })
}

func (m *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return m.find(func(u *models.User) bool { return u.Email == email })
}

func (m *UserRepository) GetByResetToken(ctx context.Context, hashedToken string, now time.Time) (*models.User, error) {
	return m.find(func(u *models.User) bool {
		return hashedToken != "" &&
			u.PasswordResetToken == hashedToken &&
			u.PasswordResetExpires != nil &&
			u.PasswordResetExpires.After(now)
	})
}

func (m *UserRepository) find(match func(*models.User) bool) (*models.User, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.Users {
		if u.Active && match(u) {
			return clone(u), nil
		}
	}
	return nil, interfaces.ErrNotFound
}

func (m *UserRepository) List(ctx context.Context, features *utils.APIFeatures) ([]*models.User, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]*models.User, 0, len(m.Users))
	for _, u := range m.Users {
		if u.Active {
			out = append(out, clone(u))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return page(out, features.Skip(), features.Limit()), nil
}

func (m *UserRepository) Update(ctx context.Context, id primitive.ObjectID, updates bson.M) (*models.User, error) {
	return m.update(id, func(u *models.User) (*models.User, error) { return applySet(u, updates) })
}

// AdminUpdate also matches deactivated users.
func (m *UserRepository) AdminUpdate(ctx context.Context, id primitive.ObjectID, updates bson.M) (*models.User, error) {
	return m.apply(id, true, func(u *models.User) (*models.User, error) { return applySet(u, updates) })
}

func (m *UserRepository) update(id primitive.ObjectID, fn func(*models.User) (*models.User, error)) (*models.User, error) {
	return m.apply(id, false, fn)
}

func (m *UserRepository) apply(id primitive.ObjectID, inactive bool, fn func(*models.User) (*models.User, error)) (*models.User, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.Users[id]
	if !ok || (!u.Active && !inactive) {
		return nil, interfaces.ErrNotFound
	}
	updated, err := fn(clone(u))
	if err != nil {
		return nil, err
	}
	updated.Version++
	m.Users[id] = updated
	return clone(updated), nil
}

func (m *UserRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	if m.Err != nil {
		return m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.Users[id]; !ok {
		return interfaces.ErrNotFound
	}
	delete(m.Users, id)
	return nil
}

func (m *UserRepository) Deactivate(ctx context.Context, id primitive.ObjectID) error {
	_, err := m.update(id, func(u *models.User) (*models.User, error) {
		u.Active = false
		return u, nil
	})
	return err
}

func (m *UserRepository) SetPasswordResetToken(ctx context.Context, id primitive.ObjectID, hashedToken string, expires time.Time) error {
	_, err := m.update(id, func(u *models.User) (*models.User, error) {
		u.PasswordResetToken = hashedToken
		u.PasswordResetExpires = &expires
		return u, nil
	})
	return err
}

func (m *UserRepository) ClearPasswordResetToken(ctx context.Context, id primitive.ObjectID) error {
	m.mu.Lock()
	m.ClearResetCalls++
	m.mu.Unlock()
	if m.ClearResetErr != nil {
		return m.ClearResetErr
	}

	_, err := m.update(id, func(u *models.User) (*models.User, error) {
		u.PasswordResetToken = ""
		u.PasswordResetExpires = nil
		return u, nil
	})
	return err
}

func (m *UserRepository) UpdatePassword(ctx context.Context, id primitive.ObjectID, passwordHash string, changedAt time.Time) error {
	_, err := m.update(id, func(u *models.User) (*models.User, error) {
		u.Password = passwordHash
		u.PasswordChangedAt = &changedAt
		u.PasswordResetToken = ""
		u.PasswordResetExpires = nil
		return u, nil
	})
	return err
}

func (m *UserRepository) GetSummaries(ctx context.Context, ids []primitive.ObjectID) ([]*models.UserSummary, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]*models.UserSummary, 0, len(ids))
	for _, id := range ids {
		if u, ok := m.Users[id]; ok && u.Active {
			out = append(out, u.Summary())
		}
	}
	return out, nil
}

func (m *UserRepository) InsertMany(ctx context.Context, users []*models.User) error {
	for _, u := range users {
		if err := m.Create(ctx, u); err != nil {
			return err
		}
	}
	return nil
}

func (m *UserRepository) DeleteAll(ctx context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := int64(len(m.Users))
	m.Users = make(map[primitive.ObjectID]*models.User)
	return n, nil
}
