package services

import (
	"context"
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"tourbook/internal/mocks"
	"tourbook/internal/models"
	"tourbook/internal/utils"
	"tourbook/internal/validators"
	"tourbook/pkg/logger"
)

type reviewFixture struct {
	svc     *reviewService
	reviews *mocks.ReviewRepository
	tours   *mocks.TourRepository
	cache   *mocks.CacheStore
}

func newReviewFixture(t *testing.T) *reviewFixture {
	t.Helper()
	reviews := mocks.NewReviewRepository()
	tours := mocks.NewTourRepository()
	store := mocks.NewCacheStore()
	log := logger.NewNop()
	svc := NewReviewService(reviews, tours, NewCacheService(store, log, 0), log, 100)
	return &reviewFixture{svc: svc.(*reviewService), reviews: reviews, tours: tours, cache: store}
}

func (f *reviewFixture) tour(name string) *models.Tour {
	t := &models.Tour{Name: name, Slug: utils.Slugify(name), RatingsAverage: models.DefaultRatingsAverage}
	f.tours.Seed(t)
	return t
}

func newUser(role models.Role) *models.User {
	return &models.User{ID: primitive.NewObjectID(), Name: string(role), Role: role, Active: true}
}

func (f *reviewFixture) review(t *testing.T, author *models.User, tour *models.Tour, rating int) *models.Review {
	t.Helper()
	r, err := f.svc.CreateReview(context.Background(), author, "", &validators.CreateReviewRequest{
		Review: "Great tour", Rating: rating, Tour: tour.ID.Hex(),
	})
	require.NoError(t, err)
	return r
}

func (f *reviewFixture) ratings(t *testing.T, tour *models.Tour) (float64, int) {
	t.Helper()
	stored := f.tours.Tours[tour.ID]
	require.NotNil(t, stored)
	return stored.RatingsAverage, stored.RatingsQuantity
}

func TestCreateReview_RecomputesExactMean(t *testing.T) {
	f := newReviewFixture(t)
	tour := f.tour("The Forest Hiker")

	f.review(t, newUser(models.RoleUser), tour, 4)
	avg, qty := f.ratings(t, tour)
	assert.Equal(t, 4.0, avg)
	assert.Equal(t, 1, qty)

	f.review(t, newUser(models.RoleUser), tour, 5)
	f.review(t, newUser(models.RoleUser), tour, 5)
	avg, qty = f.ratings(t, tour)
	assert.InDelta(t, 14.0/3.0, avg, 1e-9)
	assert.Equal(t, 3, qty)
}

func TestDeleteLastReview_ResetsDefaults(t *testing.T) {
	f := newReviewFixture(t)
	tour := f.tour("The Sea Explorer")
	author := newUser(models.RoleUser)
	r := f.review(t, author, tour, 2)

	require.NoError(t, f.svc.DeleteReview(context.Background(), author, r.ID.Hex()))

	avg, qty := f.ratings(t, tour)
	assert.Equal(t, models.DefaultRatingsAverage, avg)
	assert.Equal(t, 0, qty)
}

func TestCreateReview_TourFromRoute(t *testing.T) {
	f := newReviewFixture(t)
	tour := f.tour("The Snow Adventurer")
	author := newUser(models.RoleUser)

	r, err := f.svc.CreateReview(context.Background(), author, tour.ID.Hex(), &validators.CreateReviewRequest{
		Review: "Cold but fun", Rating: 3,
	})
	require.NoError(t, err)
	assert.Equal(t, tour.ID, r.Tour)
	assert.Equal(t, author.ID, r.User)
}

func TestCreateReview_Errors(t *testing.T) {
	f := newReviewFixture(t)
	tour := f.tour("The City Wanderer")
	author := newUser(models.RoleUser)
	ctx := context.Background()

	_, err := f.svc.CreateReview(ctx, author, "", &validators.CreateReviewRequest{Review: "No tour", Rating: 3})
	appErr := requireStatus(t, err, http.StatusBadRequest)
	assert.Contains(t, appErr.Message, "Review must belong to a tour.")

	_, err = f.svc.CreateReview(ctx, author, "", &validators.CreateReviewRequest{Review: "Bad", Rating: 6, Tour: tour.ID.Hex()})
	requireStatus(t, err, http.StatusBadRequest)

	_, err = f.svc.CreateReview(ctx, author, "", &validators.CreateReviewRequest{
		Review: "Unknown", Rating: 3, Tour: primitive.NewObjectID().Hex(),
	})
	requireStatus(t, err, http.StatusNotFound)

	f.review(t, author, tour, 4)
	_, err = f.svc.CreateReview(ctx, author, "", &validators.CreateReviewRequest{Review: "Again", Rating: 5, Tour: tour.ID.Hex()})
	require.Error(t, err)
	assert.Equal(t, http.StatusConflict, utils.ToAppError(err, false).StatusCode)
}

func TestUpdateReview_OwnershipAndRecompute(t *testing.T) {
	f := newReviewFixture(t)
	tour := f.tour("The Park Camper")
	author := newUser(models.RoleUser)
	r := f.review(t, author, tour, 2)
	ctx := context.Background()
	rating := 4

	_, err := f.svc.UpdateReview(ctx, newUser(models.RoleUser), r.ID.Hex(), &validators.UpdateReviewRequest{Rating: &rating})
	requireStatus(t, err, http.StatusForbidden)

	updated, err := f.svc.UpdateReview(ctx, author, r.ID.Hex(), &validators.UpdateReviewRequest{Rating: &rating})
	require.NoError(t, err)
	assert.Equal(t, 4, updated.Rating)
	avg, _ := f.ratings(t, tour)
	assert.Equal(t, 4.0, avg)

	five := 5
	_, err = f.svc.UpdateReview(ctx, newUser(models.RoleAdmin), r.ID.Hex(), &validators.UpdateReviewRequest{Rating: &five})
	require.NoError(t, err, "admins may edit any review")
}

func TestUpdateReview_MoveRecomputesBothTours(t *testing.T) {
	f := newReviewFixture(t)
	from := f.tour("The Wine Taster")
	to := f.tour("The Star Gazer")
	author := newUser(models.RoleUser)
	r := f.review(t, author, from, 3)

	target := to.ID.Hex()
	_, err := f.svc.UpdateReview(context.Background(), author, r.ID.Hex(), &validators.UpdateReviewRequest{Tour: &target})
	require.NoError(t, err)

	avg, qty := f.ratings(t, from)
	assert.Equal(t, models.DefaultRatingsAverage, avg)
	assert.Equal(t, 0, qty)
	avg, qty = f.ratings(t, to)
	assert.Equal(t, 3.0, avg)
	assert.Equal(t, 1, qty)
}

func TestDeleteReview_Errors(t *testing.T) {
	f := newReviewFixture(t)
	tour := f.tour("The Northern Lights")
	r := f.review(t, newUser(models.RoleUser), tour, 5)
	ctx := context.Background()

	err := f.svc.DeleteReview(ctx, newUser(models.RoleUser), r.ID.Hex())
	requireStatus(t, err, http.StatusForbidden)

	err = f.svc.DeleteReview(ctx, newUser(models.RoleAdmin), primitive.NewObjectID().Hex())
	requireStatus(t, err, http.StatusNotFound)

	err = f.svc.DeleteReview(ctx, newUser(models.RoleAdmin), "not-an-id")
	appErr := requireStatus(t, err, http.StatusBadRequest)
	assert.Equal(t, utils.ErrMsgInvalidID, appErr.Message)
}

func TestListReviews_ByTour(t *testing.T) {
	f := newReviewFixture(t)
	a := f.tour("The Sports Lover")
	b := f.tour("The Sea Explorer")
	f.review(t, newUser(models.RoleUser), a, 5)
	f.review(t, newUser(models.RoleUser), a, 4)
	f.review(t, newUser(models.RoleUser), b, 3)
	ctx := context.Background()

	all, err := f.svc.ListReviews(ctx, "", url.Values{})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	forA, err := f.svc.ListReviews(ctx, a.ID.Hex(), url.Values{})
	require.NoError(t, err)
	assert.Len(t, forA, 2)

	limited, err := f.svc.ListReviews(ctx, "", url.Values{"limit": {"1"}, "page": {"2"}})
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestReviewWrites_InvalidateTourStats(t *testing.T) {
	f := newReviewFixture(t)
	tour := f.tour("The Desert Runner")
	ctx := context.Background()

	require.NoError(t, f.cache.Set(ctx, tourStatsCacheKey, []string{"stale"}, 0))
	require.NoError(t, f.cache.Set(ctx, "tours:monthly-plan:2021", []string{"stale"}, 0))

	f.review(t, newUser(models.RoleUser), tour, 5)

	assert.False(t, f.cache.Has(tourStatsCacheKey))
	assert.False(t, f.cache.Has("tours:monthly-plan:2021"))
}
