package services

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"io"
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"tourbook/internal/mocks"
	"tourbook/internal/models"
	"tourbook/internal/utils"
	"tourbook/internal/validators"
	"tourbook/pkg/logger"
	"tourbook/pkg/maps"
)

type tourFixture struct {
	svc      *tourService
	tours    *mocks.TourRepository
	reviews  *mocks.ReviewRepository
	users    *mocks.UserRepository
	cache    *mocks.CacheStore
	storage  *mocks.Storage
	geocoder *mocks.Geocoder
}

func newTourFixture(t *testing.T) *tourFixture {
	t.Helper()
	f := &tourFixture{
		tours:    mocks.NewTourRepository(),
		reviews:  mocks.NewReviewRepository(),
		users:    mocks.NewUserRepository(),
		cache:    mocks.NewCacheStore(),
		storage:  mocks.NewStorage(),
		geocoder: &mocks.Geocoder{Results: map[string]*maps.GeocodeResult{}},
	}
	log := logger.NewNop()
	svc := NewTourService(f.tours, f.reviews, f.users, NewCacheService(f.cache, log, 0), f.storage, f.geocoder, log, 100)
	f.svc = svc.(*tourService)
	return f
}

func createTourRequest(name string) *validators.CreateTourRequest {
	return &validators.CreateTourRequest{
		Name:         name,
		Duration:     7,
		MaxGroupSize: 10,
		Difficulty:   "medium",
		Price:        497,
		Summary:      "Exploring the jaw-dropping US east coast by foot and by boat",
		ImageCover:   "tour-2-cover.jpg",
	}
}

func TestCreateTour(t *testing.T) {
	f := newTourFixture(t)
	guide := &models.User{Name: "Lisa", Email: "lisa@example.com", Role: models.RoleGuide, Active: true}
	f.users.Seed(guide)

	req := createTourRequest("The Sea Explorer")
	req.Guides = []string{guide.ID.Hex()}
	req.StartLocation = &models.Location{Coordinates: []float64{-80.185942, 25.774772}, Address: "Miami, USA"}

	tour, err := f.svc.CreateTour(context.Background(), req)
	require.NoError(t, err)

	assert.False(t, tour.ID.IsZero())
	assert.Equal(t, "the-sea-explorer", tour.Slug)
	assert.Equal(t, models.DefaultRatingsAverage, tour.RatingsAverage)
	assert.Equal(t, 0, tour.RatingsQuantity)
	assert.Equal(t, []primitive.ObjectID{guide.ID}, tour.Guides)
	require.NotNil(t, tour.StartLocation)
	assert.Equal(t, models.GeoJSONPoint, tour.StartLocation.Type)
	assert.Equal(t, 1.0, tour.DurationWeeks())
	assert.Zero(t, f.geocoder.Calls)
}

func TestCreateTour_Validation(t *testing.T) {
	f := newTourFixture(t)

	short := createTourRequest("Short")
	_, err := f.svc.CreateTour(context.Background(), short)
	requireStatus(t, err, http.StatusBadRequest)

	discounted := createTourRequest("The Discount Tour")
	d := 600.0
	discounted.PriceDiscount = &d
	_, err = f.svc.CreateTour(context.Background(), discounted)
	appErr := requireStatus(t, err, http.StatusBadRequest)
	assert.Contains(t, appErr.Message, "Discount price (600) should be below regular price")
}

func TestCreateTour_GeocodesStartAddress(t *testing.T) {
	f := newTourFixture(t)
	f.geocoder.Results["Banff, CAN"] = &maps.GeocodeResult{Latitude: 51.417611, Longitude: -116.214531}

	req := createTourRequest("The Forest Hiker")
	req.StartLocation = &models.Location{Address: "Banff, CAN"}

	tour, err := f.svc.CreateTour(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, []float64{-116.214531, 51.417611}, tour.StartLocation.Coordinates)
	assert.Equal(t, 1, f.geocoder.Calls)

	unknown := createTourRequest("The Lost Wanderer")
	unknown.StartLocation = &models.Location{Address: "Nowhere"}
	_, err = f.svc.CreateTour(context.Background(), unknown)
	requireStatus(t, err, http.StatusBadRequest)
}

func TestGetTour_ByIDOrSlugWithPopulation(t *testing.T) {
	f := newTourFixture(t)
	guide := &models.User{Name: "Steve", Email: "steve@example.com", Role: models.RoleLeadGuide, Active: true}
	f.users.Seed(guide)
	tour := &models.Tour{Name: "The Snow Adventurer", Slug: "the-snow-adventurer", Guides: []primitive.ObjectID{guide.ID}}
	f.tours.Seed(tour)
	require.NoError(t, f.reviews.Create(context.Background(), &models.Review{
		Review: "Brilliant", Rating: 5, Tour: tour.ID, User: primitive.NewObjectID(),
	}))

	for _, key := range []string{tour.ID.Hex(), "the-snow-adventurer"} {
		got, err := f.svc.GetTour(context.Background(), key)
		require.NoError(t, err, key)
		assert.Equal(t, tour.ID, got.ID)
		require.Len(t, got.GuideDetails, 1)
		assert.Equal(t, "Steve", got.GuideDetails[0].Name)
		assert.Len(t, got.Reviews, 1)
	}

	_, err := f.svc.GetTour(context.Background(), "no-such-tour")
	requireStatus(t, err, http.StatusNotFound)
}

func TestGetTour_SecretIsHidden(t *testing.T) {
	f := newTourFixture(t)
	secret := &models.Tour{Name: "The Secret Tour", Slug: "the-secret-tour", SecretTour: true}
	f.tours.Seed(secret)

	_, err := f.svc.GetTour(context.Background(), secret.ID.Hex())
	requireStatus(t, err, http.StatusNotFound)

	list, err := f.svc.ListTours(context.Background(), url.Values{})
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestUpdateTour_DiscountCheckedAgainstMergedDocument(t *testing.T) {
	f := newTourFixture(t)
	discount := 200.0
	tour := &models.Tour{Name: "The Park Camper", Slug: "the-park-camper", Price: 500, PriceDiscount: &discount}
	f.tours.Seed(tour)
	ctx := context.Background()

	lowPrice := 150.0
	_, err := f.svc.UpdateTour(ctx, tour.ID.Hex(), &validators.UpdateTourRequest{Price: &lowPrice})
	requireStatus(t, err, http.StatusBadRequest)

	highDiscount := 700.0
	_, err = f.svc.UpdateTour(ctx, tour.ID.Hex(), &validators.UpdateTourRequest{PriceDiscount: &highDiscount})
	requireStatus(t, err, http.StatusBadRequest)

	price := 997.0
	updated, err := f.svc.UpdateTour(ctx, tour.ID.Hex(), &validators.UpdateTourRequest{Price: &price, PriceDiscount: &highDiscount})
	require.NoError(t, err)
	assert.Equal(t, 997.0, updated.Price)
	assert.Equal(t, 700.0, *updated.PriceDiscount)
	assert.Equal(t, 1, updated.Version)
}

func TestUpdateTour_RenameChangesSlug(t *testing.T) {
	f := newTourFixture(t)
	tour := &models.Tour{Name: "The Park Camper", Slug: "the-park-camper", Price: 500}
	f.tours.Seed(tour)

	name := "The Lake Camper"
	updated, err := f.svc.UpdateTour(context.Background(), tour.ID.Hex(), &validators.UpdateTourRequest{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "The Lake Camper", updated.Name)
	assert.Equal(t, "the-lake-camper", updated.Slug)
}

func TestUpdateAndDeleteTour_NotFound(t *testing.T) {
	f := newTourFixture(t)
	ctx := context.Background()
	missing := primitive.NewObjectID().Hex()
	price := 10.0

	_, err := f.svc.UpdateTour(ctx, missing, &validators.UpdateTourRequest{Price: &price})
	requireStatus(t, err, http.StatusNotFound)

	err = f.svc.DeleteTour(ctx, missing)
	requireStatus(t, err, http.StatusNotFound)

	err = f.svc.DeleteTour(ctx, "123")
	requireStatus(t, err, http.StatusBadRequest)
}

func TestGetTourStats_Cached(t *testing.T) {
	f := newTourFixture(t)
	f.tours.StatsResult = []*models.TourStats{{Difficulty: "easy", NumTours: 2, AvgPrice: 400}}
	ctx := context.Background()

	first, err := f.svc.GetTourStats(ctx)
	require.NoError(t, err)
	second, err := f.svc.GetTourStats(ctx)
	require.NoError(t, err)

	assert.Equal(t, 1, f.tours.StatsCalls)
	assert.Equal(t, first[0].NumTours, second[0].NumTours)

	// Writes drop the cached aggregates.
	_, err = f.svc.CreateTour(ctx, createTourRequest("The City Wanderer"))
	require.NoError(t, err)
	_, err = f.svc.GetTourStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, f.tours.StatsCalls)
}

func TestGetMonthlyPlan(t *testing.T) {
	f := newTourFixture(t)
	f.tours.MonthlyPlanResult = []*models.MonthlyPlan{{Month: 7, NumTourStarts: 3, Tours: []string{"A", "B", "C"}}}

	plan, err := f.svc.GetMonthlyPlan(context.Background(), 2021)
	require.NoError(t, err)
	require.Len(t, plan, 1)
	assert.True(t, f.cache.Has("tours:monthly-plan:2021"))

	_, err = f.svc.GetMonthlyPlan(context.Background(), 0)
	requireStatus(t, err, http.StatusBadRequest)
}

func TestGeoQueries(t *testing.T) {
	f := newTourFixture(t)
	ctx := context.Background()

	_, err := f.svc.GetToursWithin(ctx, 3963.2, "34.111745,-118.113491", "mi")
	require.NoError(t, err)
	assert.Equal(t, 34.111745, f.tours.LastWithin.Lat)
	assert.Equal(t, -118.113491, f.tours.LastWithin.Lng)
	assert.InDelta(t, 1.0, f.tours.LastWithin.Radius, 1e-9)

	_, err = f.svc.GetDistances(ctx, "34.111745,-118.113491", "km")
	require.NoError(t, err)
	assert.Equal(t, 0.001, f.tours.LastDistances.Multiplier)

	_, err = f.svc.GetDistances(ctx, "34.1,-118.1", "yards")
	requireStatus(t, err, http.StatusBadRequest)

	_, err = f.svc.GetToursWithin(ctx, 100, "north", "mi")
	requireStatus(t, err, http.StatusBadRequest)
}

func testPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 120, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestUpdateTourImages(t *testing.T) {
	f := newTourFixture(t)
	tour := &models.Tour{Name: "The Star Gazer", Slug: "the-star-gazer", Price: 100}
	f.tours.Seed(tour)
	img := testPNG(t, 60, 40)

	updated, err := f.svc.UpdateTourImages(context.Background(), tour.ID.Hex(),
		bytes.NewReader(img), []io.Reader{bytes.NewReader(img), bytes.NewReader(img)})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(updated.ImageCover, "tours/tour-"+tour.ID.Hex()))
	assert.True(t, strings.HasSuffix(updated.ImageCover, "-cover.jpeg"))
	assert.Len(t, updated.Images, 2)
	assert.Len(t, f.storage.Files, 3)

	stored := f.storage.Files[updated.ImageCover]
	decoded, format, err := image.Decode(bytes.NewReader(stored))
	require.NoError(t, err)
	assert.Equal(t, "jpeg", format)
	assert.Equal(t, utils.TourCoverWidth, decoded.Bounds().Dx())
	assert.Equal(t, utils.TourCoverHeight, decoded.Bounds().Dy())
}

func TestUpdateTourImages_RejectsNonImages(t *testing.T) {
	f := newTourFixture(t)
	tour := &models.Tour{Name: "The Star Gazer", Slug: "the-star-gazer", Price: 100}
	f.tours.Seed(tour)

	_, err := f.svc.UpdateTourImages(context.Background(), tour.ID.Hex(), strings.NewReader("plain text"), nil)
	requireStatus(t, err, http.StatusBadRequest)

	_, err = f.svc.UpdateTourImages(context.Background(), tour.ID.Hex(), nil, nil)
	requireStatus(t, err, http.StatusBadRequest)
}

func TestUpdateTourImages_RemovesUploadsOnFailure(t *testing.T) {
	f := newTourFixture(t)
	tour := &models.Tour{Name: "The Star Gazer", Slug: "the-star-gazer", Price: 100}
	f.tours.Seed(tour)
	img := testPNG(t, 60, 40)

	_, err := f.svc.UpdateTourImages(context.Background(), tour.ID.Hex(),
		bytes.NewReader(img), []io.Reader{bytes.NewReader(img), strings.NewReader("plain text")})
	requireStatus(t, err, http.StatusBadRequest)
	assert.Empty(t, f.storage.Files)
	assert.Len(t, f.storage.Deleted, 2)
}
