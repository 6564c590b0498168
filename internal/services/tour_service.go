package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"tourbook/internal/models"
	"tourbook/internal/repositories/interfaces"
	"tourbook/internal/utils"
	"tourbook/internal/validators"
	"tourbook/pkg/cache"
	"tourbook/pkg/logger"
	"tourbook/pkg/maps"
	"tourbook/pkg/storage"
)

const errMsgTourNotFound = "No tour found with that ID"

type TourService interface {
	CreateTour(ctx context.Context, request *validators.CreateTourRequest) (*models.Tour, error)
	GetTour(ctx context.Context, idOrSlug string) (*models.Tour, error)
	ListTours(ctx context.Context, query url.Values) ([]*models.Tour, error)
	UpdateTour(ctx context.Context, id string, request *validators.UpdateTourRequest) (*models.Tour, error)
	DeleteTour(ctx context.Context, id string) error

	// Images
	UpdateTourImages(ctx context.Context, id string, cover io.Reader, images []io.Reader) (*models.Tour, error)

	// Aggregations
	GetTourStats(ctx context.Context) ([]*models.TourStats, error)
	GetMonthlyPlan(ctx context.Context, year int) ([]*models.MonthlyPlan, error)
	GetToursWithin(ctx context.Context, distance float64, latlng, unit string) ([]*models.Tour, error)
	GetDistances(ctx context.Context, latlng, unit string) ([]*models.TourDistance, error)
}

type tourService struct {
	tourRepo     interfaces.TourRepository
	reviewRepo   interfaces.ReviewRepository
	userRepo     interfaces.UserRepository
	cacheService CacheService
	storage      storage.StorageProvider
	geocoder     maps.Geocoder
	logger       *logger.Logger
	maxResults   int
	now          func() time.Time
}

// NewTourService builds the tour service. geocoder may be nil, in which case
// start locations must carry coordinates.
func NewTourService(
	tourRepo interfaces.TourRepository,
	reviewRepo interfaces.ReviewRepository,
	userRepo interfaces.UserRepository,
	cacheService CacheService,
	storageProvider storage.StorageProvider,
	geocoder maps.Geocoder,
	logger *logger.Logger,
	maxResults int,
) TourService {
	return &tourService{
		tourRepo:     tourRepo,
		reviewRepo:   reviewRepo,
		userRepo:     userRepo,
		cacheService: cacheService,
		storage:      storageProvider,
		geocoder:     geocoder,
		logger:       logger,
		maxResults:   maxResults,
		now:          time.Now,
	}
}

func (s *tourService) CreateTour(ctx context.Context, request *validators.CreateTourRequest) (*models.Tour, error) {
	if errs := validators.ValidateTourCreate(request); len(errs) > 0 {
		return nil, utils.NewValidationError(errs.Message())
	}

	guides, err := objectIDs(request.Guides)
	if err != nil {
		return nil, err
	}

	ratingsAverage := models.DefaultRatingsAverage
	if request.RatingsAverage != nil {
		ratingsAverage = *request.RatingsAverage
	}

	tour := &models.Tour{
		Name:           request.Name,
		Slug:           utils.Slugify(request.Name),
		Duration:       request.Duration,
		MaxGroupSize:   request.MaxGroupSize,
		Difficulty:     models.Difficulty(request.Difficulty),
		RatingsAverage: ratingsAverage,
		Price:          request.Price,
		PriceDiscount:  request.PriceDiscount,
		Summary:        request.Summary,
		Description:    request.Description,
		ImageCover:     request.ImageCover,
		Images:         nonNil(request.Images),
		CreatedAt:      s.now(),
		StartDates:     nonNil(request.StartDates),
		SecretTour:     request.SecretTour,
		Locations:      normalizeLocations(request.Locations),
		Guides:         guides,
	}

	if request.StartLocation != nil {
		if tour.StartLocation, err = s.resolveStartLocation(ctx, *request.StartLocation); err != nil {
			return nil, err
		}
	}

	if err := s.tourRepo.Create(ctx, tour); err != nil {
		return nil, err
	}

	invalidateTourAggregates(ctx, s.cacheService, s.logger)
	s.logger.WithTourID(tour.ID).WithField("slug", tour.Slug).Info("Tour created")
	return tour, nil
}

// GetTour accepts either an ObjectID or a slug and populates guides and
// reviews.
func (s *tourService) GetTour(ctx context.Context, idOrSlug string) (*models.Tour, error) {
	var (
		tour *models.Tour
		err  error
	)
	if validators.IsValidObjectID(idOrSlug) {
		id, _ := primitive.ObjectIDFromHex(idOrSlug)
		tour, err = s.tourRepo.GetByID(ctx, id)
	} else {
		tour, err = s.tourRepo.GetBySlug(ctx, idOrSlug)
	}
	if err != nil {
		return nil, notFoundAs(err, errMsgTourNotFound)
	}

	guides, err := s.userRepo.GetSummaries(ctx, tour.Guides)
	if err != nil {
		return nil, err
	}
	tour.GuideDetails = guides

	reviews, err := s.reviewRepo.ListByTour(ctx, tour.ID)
	if err != nil {
		return nil, err
	}
	tour.Reviews = reviews

	return tour, nil
}

func (s *tourService) ListTours(ctx context.Context, query url.Values) ([]*models.Tour, error) {
	features := utils.NewAPIFeatures(query, s.maxResults).
		Filter().
		Sort().
		LimitFields().
		Paginate()

	return s.tourRepo.List(ctx, features)
}

func (s *tourService) UpdateTour(ctx context.Context, id string, request *validators.UpdateTourRequest) (*models.Tour, error) {
	tourID, err := parseID(id)
	if err != nil {
		return nil, err
	}

	if errs := validators.ValidateTourUpdate(request); len(errs) > 0 {
		return nil, utils.NewValidationError(errs.Message())
	}

	existing, err := s.tourRepo.GetByID(ctx, tourID)
	if err != nil {
		return nil, notFoundAs(err, errMsgTourNotFound)
	}

	price := existing.Price
	if request.Price != nil {
		price = *request.Price
	}
	discount := existing.PriceDiscount
	if request.PriceDiscount != nil {
		discount = request.PriceDiscount
	}
	if errs := validators.ValidatePriceDiscount(price, discount); len(errs) > 0 {
		return nil, utils.NewValidationError(errs.Message())
	}

	updates, err := s.buildTourUpdates(ctx, existing, request)
	if err != nil {
		return nil, err
	}

	tour, err := s.tourRepo.Update(ctx, tourID, updates)
	if err != nil {
		return nil, notFoundAs(err, errMsgTourNotFound)
	}

	invalidateTourAggregates(ctx, s.cacheService, s.logger)
	s.logger.WithTourID(tour.ID).WithField("fields", len(updates)).Info("Tour updated")
	return tour, nil
}

func (s *tourService) buildTourUpdates(ctx context.Context, existing *models.Tour, request *validators.UpdateTourRequest) (bson.M, error) {
	updates := bson.M{}

	if request.Name != nil && *request.Name != existing.Name {
		updates["name"] = *request.Name
		updates["slug"] = utils.Slugify(*request.Name)
	}
	if request.Duration != nil {
		updates["duration"] = *request.Duration
	}
	if request.MaxGroupSize != nil {
		updates["maxGroupSize"] = *request.MaxGroupSize
	}
	if request.Difficulty != nil {
		updates["difficulty"] = *request.Difficulty
	}
	if request.RatingsAverage != nil {
		updates["ratingsAverage"] = *request.RatingsAverage
	}
	if request.Price != nil {
		updates["price"] = *request.Price
	}
	if request.PriceDiscount != nil {
		updates["priceDiscount"] = *request.PriceDiscount
	}
	if request.Summary != nil {
		updates["summary"] = *request.Summary
	}
	if request.Description != nil {
		updates["description"] = *request.Description
	}
	if request.ImageCover != nil {
		updates["imageCover"] = *request.ImageCover
	}
	if request.Images != nil {
		updates["images"] = nonNil(*request.Images)
	}
	if request.StartDates != nil {
		updates["startDates"] = nonNil(*request.StartDates)
	}
	if request.SecretTour != nil {
		updates["secretTour"] = *request.SecretTour
	}
	if request.Locations != nil {
		updates["locations"] = normalizeLocations(*request.Locations)
	}
	if request.Guides != nil {
		guides, err := objectIDs(*request.Guides)
		if err != nil {
			return nil, err
		}
		updates["guides"] = guides
	}
	if request.StartLocation != nil {
		location, err := s.resolveStartLocation(ctx, *request.StartLocation)
		if err != nil {
			return nil, err
		}
		updates["startLocation"] = location
	}

	return updates, nil
}

func (s *tourService) DeleteTour(ctx context.Context, id string) error {
	tourID, err := parseID(id)
	if err != nil {
		return err
	}

	if err := s.tourRepo.Delete(ctx, tourID); err != nil {
		return notFoundAs(err, errMsgTourNotFound)
	}

	invalidateTourAggregates(ctx, s.cacheService, s.logger)
	s.logger.WithTourID(tourID).Info("Tour deleted")
	return nil
}

// UpdateTourImages stores a resized cover and gallery images. Either part may
// be absent.
func (s *tourService) UpdateTourImages(ctx context.Context, id string, cover io.Reader, images []io.Reader) (*models.Tour, error) {
	tourID, err := parseID(id)
	if err != nil {
		return nil, err
	}
	if cover == nil && len(images) == 0 {
		return nil, utils.NewBadRequestError("Please upload a cover image or tour images.")
	}

	if _, err := s.tourRepo.GetByID(ctx, tourID); err != nil {
		return nil, notFoundAs(err, errMsgTourNotFound)
	}

	ts := s.now().UnixMilli()
	updates := bson.M{}
	var uploaded []string

	if cover != nil {
		key := fmt.Sprintf("tours/tour-%s-%d-cover.jpeg", tourID.Hex(), ts)
		stored, err := storeImage(ctx, s.storage, key, cover, utils.TourCoverWidth, utils.TourCoverHeight)
		if err != nil {
			return nil, err
		}
		uploaded = append(uploaded, stored)
		updates["imageCover"] = stored
	}

	if len(images) > 0 {
		keys := make([]string, 0, len(images))
		for i, img := range images {
			key := fmt.Sprintf("tours/tour-%s-%d-%d.jpeg", tourID.Hex(), ts, i+1)
			stored, err := storeImage(ctx, s.storage, key, img, utils.TourCoverWidth, utils.TourCoverHeight)
			if err != nil {
				s.discardImages(ctx, tourID, uploaded)
				return nil, err
			}
			uploaded = append(uploaded, stored)
			keys = append(keys, stored)
		}
		updates["images"] = keys
	}

	tour, err := s.tourRepo.Update(ctx, tourID, updates)
	if err != nil {
		s.discardImages(ctx, tourID, uploaded)
		return nil, notFoundAs(err, errMsgTourNotFound)
	}

	s.logger.WithTourID(tourID).Info("Tour images updated")
	return tour, nil
}

// discardImages removes uploads that never made it onto the tour document.
func (s *tourService) discardImages(ctx context.Context, tourID primitive.ObjectID, keys []string) {
	for _, key := range keys {
		if err := s.storage.Delete(ctx, key); err != nil {
			s.logger.WithError(err).WithTourID(tourID).Warn("Failed to delete orphaned tour image")
		}
	}
}

func (s *tourService) GetTourStats(ctx context.Context) ([]*models.TourStats, error) {
	var stats []*models.TourStats
	if err := s.cacheService.Get(ctx, tourStatsCacheKey, &stats); err == nil {
		return stats, nil
	}

	stats, err := s.tourRepo.Stats(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.cacheService.Set(ctx, tourStatsCacheKey, stats, tourAggregatesTTL); err != nil {
		s.logger.WithError(err).Warn("Failed to cache tour stats")
	}
	return stats, nil
}

func (s *tourService) GetMonthlyPlan(ctx context.Context, year int) ([]*models.MonthlyPlan, error) {
	if year < 1970 || year > 9999 {
		return nil, utils.NewBadRequestError(fmt.Sprintf("Invalid year: %d", year))
	}

	key := fmt.Sprintf(tourMonthlyPlanCacheKey, year)
	var plan []*models.MonthlyPlan
	if err := s.cacheService.Get(ctx, key, &plan); err == nil {
		return plan, nil
	} else if !errors.Is(err, cache.ErrCacheMiss) {
		s.logger.WithError(err).Debug("Monthly plan cache unavailable")
	}

	plan, err := s.tourRepo.MonthlyPlan(ctx, year)
	if err != nil {
		return nil, err
	}

	if err := s.cacheService.Set(ctx, key, plan, tourAggregatesTTL); err != nil {
		s.logger.WithError(err).Warn("Failed to cache monthly plan")
	}
	return plan, nil
}

func (s *tourService) GetToursWithin(ctx context.Context, distance float64, latlng, unit string) ([]*models.Tour, error) {
	lat, lng, err := utils.ParseLatLng(latlng)
	if err != nil {
		return nil, err
	}
	u, err := utils.ParseDistanceUnit(unit)
	if err != nil {
		return nil, err
	}
	if distance <= 0 {
		return nil, utils.NewBadRequestError("Please provide a positive distance.")
	}

	return s.tourRepo.Within(ctx, lat, lng, u.RadiusInRadians(distance))
}

func (s *tourService) GetDistances(ctx context.Context, latlng, unit string) ([]*models.TourDistance, error) {
	lat, lng, err := utils.ParseLatLng(latlng)
	if err != nil {
		return nil, err
	}
	u, err := utils.ParseDistanceUnit(unit)
	if err != nil {
		return nil, err
	}

	return s.tourRepo.Distances(ctx, lat, lng, u.MetersMultiplier())
}

// resolveStartLocation makes loc a valid GeoJSON point, geocoding its address
// when it has no coordinates.
func (s *tourService) resolveStartLocation(ctx context.Context, loc models.Location) (*models.Location, error) {
	if loc.HasCoordinates() {
		loc.Type = models.GeoJSONPoint
		return &loc, nil
	}

	if loc.Address == "" || s.geocoder == nil {
		return nil, utils.NewValidationError("Invalid input data. Start location needs coordinates or a resolvable address.")
	}

	result, err := s.geocoder.Geocode(ctx, loc.Address)
	if err != nil {
		if errors.Is(err, maps.ErrNoResults) {
			return nil, utils.NewBadRequestError(fmt.Sprintf("Could not find a location for address: %s", loc.Address))
		}
		return nil, fmt.Errorf("failed to geocode start location: %w", err)
	}

	loc.Type = models.GeoJSONPoint
	loc.Coordinates = []float64{result.Longitude, result.Latitude}
	s.logger.WithField("address", loc.Address).Debug("Start location geocoded")
	return &loc, nil
}

func normalizeLocations(locations []models.Location) []models.Location {
	out := make([]models.Location, 0, len(locations))
	for _, loc := range locations {
		if loc.HasCoordinates() {
			loc.Type = models.GeoJSONPoint
		}
		out = append(out, loc)
	}
	return out
}

func objectIDs(hexes []string) ([]primitive.ObjectID, error) {
	ids := make([]primitive.ObjectID, 0, len(hexes))
	for _, h := range hexes {
		id, err := parseID(h)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
