package services

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"tourbook/internal/mocks"
	"tourbook/internal/models"
	"tourbook/internal/validators"
	"tourbook/pkg/logger"
)

func newUserFixture(t *testing.T) (*userService, *mocks.UserRepository, *mocks.Storage) {
	t.Helper()
	users := mocks.NewUserRepository()
	store := mocks.NewStorage()
	svc := NewUserService(users, store, logger.NewNop(), 100)
	return svc.(*userService), users, store
}

func strPtr(s string) *string { return &s }

func TestUpdateMe(t *testing.T) {
	svc, users, _ := newUserFixture(t)
	me := &models.User{Name: "Jonas", Email: "jonas@example.com", Role: models.RoleUser, Active: true}
	users.Seed(me)
	ctx := context.Background()

	updated, err := svc.UpdateMe(ctx, me, &validators.UpdateMeRequest{Name: strPtr("Jonas S"), Email: strPtr(" JS@Example.com ")})
	require.NoError(t, err)
	assert.Equal(t, "Jonas S", updated.Name)
	assert.Equal(t, "js@example.com", updated.Email)
	assert.Equal(t, models.RoleUser, updated.Role)

	_, err = svc.UpdateMe(ctx, me, &validators.UpdateMeRequest{Password: "newpass123"})
	appErr := requireStatus(t, err, http.StatusBadRequest)
	assert.Contains(t, appErr.Message, "/update-password")

	_, err = svc.UpdateMe(ctx, me, &validators.UpdateMeRequest{Email: strPtr("not-an-email")})
	requireStatus(t, err, http.StatusBadRequest)
}

func TestUpdatePhoto(t *testing.T) {
	svc, users, store := newUserFixture(t)
	me := &models.User{Name: "Jonas", Email: "jonas@example.com", Photo: "users/old.jpeg", Active: true}
	users.Seed(me)

	updated, err := svc.UpdatePhoto(context.Background(), me, bytes.NewReader(testPNG(t, 30, 20)))
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(updated.Photo, "users/user-"+me.ID.Hex()+"-"))
	assert.True(t, strings.HasSuffix(updated.Photo, ".jpeg"))
	assert.Contains(t, store.Files, updated.Photo)
	assert.Equal(t, []string{"users/old.jpeg"}, store.Deleted)
}

func TestUpdatePhoto_RemovesUploadWhenSaveFails(t *testing.T) {
	svc, users, store := newUserFixture(t)
	me := &models.User{Name: "Jonas", Email: "jonas@example.com", Photo: "users/old.jpeg", Active: true}
	users.Seed(me)
	users.Err = errors.New("db down")

	_, err := svc.UpdatePhoto(context.Background(), me, bytes.NewReader(testPNG(t, 30, 20)))
	require.Error(t, err)

	assert.Empty(t, store.Files)
	require.Len(t, store.Deleted, 1)
	assert.True(t, strings.HasPrefix(store.Deleted[0], "users/user-"+me.ID.Hex()+"-"))
}

func TestDeleteMe_Deactivates(t *testing.T) {
	svc, users, _ := newUserFixture(t)
	me := &models.User{Name: "Jonas", Email: "jonas@example.com", Active: true}
	users.Seed(me)
	ctx := context.Background()

	require.NoError(t, svc.DeleteMe(ctx, me))

	stored := users.Stored(me.ID)
	require.NotNil(t, stored, "the document is kept")
	assert.False(t, stored.Active)

	_, err := svc.GetUser(ctx, me.ID.Hex())
	requireStatus(t, err, http.StatusNotFound)
}

func TestAdminUserOperations(t *testing.T) {
	svc, users, _ := newUserFixture(t)
	a := &models.User{Name: "Aarav", Email: "aarav@example.com", Role: models.RoleUser, Active: true}
	b := &models.User{Name: "Beth", Email: "beth@example.com", Role: models.RoleGuide, Active: true}
	users.Seed(a, b)
	ctx := context.Background()

	list, err := svc.ListUsers(ctx, url.Values{})
	require.NoError(t, err)
	assert.Len(t, list, 2)

	updated, err := svc.UpdateUser(ctx, a.ID.Hex(), &validators.UpdateUserRequest{Role: strPtr("lead-guide")})
	require.NoError(t, err)
	assert.Equal(t, models.RoleLeadGuide, updated.Role)

	_, err = svc.UpdateUser(ctx, a.ID.Hex(), &validators.UpdateUserRequest{Role: strPtr("emperor")})
	requireStatus(t, err, http.StatusBadRequest)

	// Deactivated accounts can be restored by an admin.
	require.NoError(t, users.Deactivate(ctx, a.ID))
	_, err = svc.GetUser(ctx, a.ID.Hex())
	requireStatus(t, err, http.StatusNotFound)
	reactivated := true
	restored, err := svc.UpdateUser(ctx, a.ID.Hex(), &validators.UpdateUserRequest{Active: &reactivated})
	require.NoError(t, err)
	assert.True(t, restored.Active)
	_, err = svc.GetUser(ctx, a.ID.Hex())
	require.NoError(t, err)

	require.NoError(t, svc.DeleteUser(ctx, b.ID.Hex()))
	assert.Nil(t, users.Stored(b.ID))

	err = svc.DeleteUser(ctx, primitive.NewObjectID().Hex())
	requireStatus(t, err, http.StatusNotFound)
}
