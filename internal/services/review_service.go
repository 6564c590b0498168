package services

import (
	"context"
	"net/url"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"tourbook/internal/models"
	"tourbook/internal/repositories/interfaces"
	"tourbook/internal/utils"
	"tourbook/internal/validators"
	"tourbook/pkg/logger"
)

const errMsgReviewNotFound = "No review found with that ID"

type ReviewService interface {
	CreateReview(ctx context.Context, author *models.User, tourID string, request *validators.CreateReviewRequest) (*models.Review, error)
	GetReview(ctx context.Context, id string) (*models.Review, error)
	ListReviews(ctx context.Context, tourID string, query url.Values) ([]*models.Review, error)
	UpdateReview(ctx context.Context, actor *models.User, id string, request *validators.UpdateReviewRequest) (*models.Review, error)
	DeleteReview(ctx context.Context, actor *models.User, id string) error

	// RecalculateRatings recomputes a tour's ratingsQuantity and
	// ratingsAverage from its reviews.
	RecalculateRatings(ctx context.Context, tourID primitive.ObjectID) error
}

type reviewService struct {
	reviewRepo   interfaces.ReviewRepository
	tourRepo     interfaces.TourRepository
	cacheService CacheService
	logger       *logger.Logger
	maxResults   int
	now          func() time.Time
}

func NewReviewService(
	reviewRepo interfaces.ReviewRepository,
	tourRepo interfaces.TourRepository,
	cacheService CacheService,
	logger *logger.Logger,
	maxResults int,
) ReviewService {
	return &reviewService{
		reviewRepo:   reviewRepo,
		tourRepo:     tourRepo,
		cacheService: cacheService,
		logger:       logger,
		maxResults:   maxResults,
		now:          time.Now,
	}
}

// CreateReview takes the tour from the request body, falling back to tourID
// from a nested route. The author is always the authenticated user.
func (s *reviewService) CreateReview(ctx context.Context, author *models.User, tourID string, request *validators.CreateReviewRequest) (*models.Review, error) {
	if request.Tour == "" {
		request.Tour = tourID
	}
	if errs := validators.ValidateReviewCreate(request); len(errs) > 0 {
		return nil, utils.NewValidationError(errs.Message())
	}

	tid, err := parseID(request.Tour)
	if err != nil {
		return nil, err
	}
	if _, err := s.tourRepo.GetByID(ctx, tid); err != nil {
		return nil, notFoundAs(err, errMsgTourNotFound)
	}

	review := &models.Review{
		Review:    request.Review,
		Rating:    request.Rating,
		CreatedAt: s.now(),
		Tour:      tid,
		User:      author.ID,
	}
	if err := s.reviewRepo.Create(ctx, review); err != nil {
		return nil, err
	}

	s.recalculate(ctx, tid)
	s.logger.LogUserAction(author.ID, "review_created", map[string]interface{}{
		"review_id": review.ID.Hex(),
		"tour_id":   tid.Hex(),
		"rating":    review.Rating,
	})
	return review, nil
}

func (s *reviewService) GetReview(ctx context.Context, id string) (*models.Review, error) {
	reviewID, err := parseID(id)
	if err != nil {
		return nil, err
	}

	review, err := s.reviewRepo.GetByID(ctx, reviewID)
	if err != nil {
		return nil, notFoundAs(err, errMsgReviewNotFound)
	}
	return review, nil
}

// ListReviews lists all reviews, or only those of tourID when it is set.
func (s *reviewService) ListReviews(ctx context.Context, tourID string, query url.Values) ([]*models.Review, error) {
	base := bson.M{}
	if tourID != "" {
		tid, err := parseID(tourID)
		if err != nil {
			return nil, err
		}
		base["tour"] = tid
	}

	features := utils.NewAPIFeatures(query, s.maxResults).
		Filter().
		Sort().
		LimitFields().
		Paginate()

	return s.reviewRepo.List(ctx, base, features)
}

func (s *reviewService) UpdateReview(ctx context.Context, actor *models.User, id string, request *validators.UpdateReviewRequest) (*models.Review, error) {
	existing, err := s.authorized(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	if errs := validators.ValidateReviewUpdate(request); len(errs) > 0 {
		return nil, utils.NewValidationError(errs.Message())
	}

	updates := bson.M{}
	if request.Review != nil {
		updates["review"] = *request.Review
	}
	if request.Rating != nil {
		updates["rating"] = *request.Rating
	}

	newTour := existing.Tour
	if request.Tour != nil {
		if newTour, err = parseID(*request.Tour); err != nil {
			return nil, err
		}
		if newTour != existing.Tour {
			if _, err := s.tourRepo.GetByID(ctx, newTour); err != nil {
				return nil, notFoundAs(err, errMsgTourNotFound)
			}
			updates["tour"] = newTour
		}
	}

	review, err := s.reviewRepo.Update(ctx, existing.ID, updates)
	if err != nil {
		return nil, notFoundAs(err, errMsgReviewNotFound)
	}

	s.recalculate(ctx, newTour)
	if newTour != existing.Tour {
		s.recalculate(ctx, existing.Tour)
	}

	s.logger.LogUserAction(actor.ID, "review_updated", map[string]interface{}{"review_id": review.ID.Hex()})
	return review, nil
}

func (s *reviewService) DeleteReview(ctx context.Context, actor *models.User, id string) error {
	existing, err := s.authorized(ctx, actor, id)
	if err != nil {
		return err
	}

	if err := s.reviewRepo.Delete(ctx, existing.ID); err != nil {
		return notFoundAs(err, errMsgReviewNotFound)
	}

	s.recalculate(ctx, existing.Tour)
	s.logger.LogUserAction(actor.ID, "review_deleted", map[string]interface{}{"review_id": existing.ID.Hex()})
	return nil
}

func (s *reviewService) RecalculateRatings(ctx context.Context, tourID primitive.ObjectID) error {
	stats, err := s.reviewRepo.CalcRatingStats(ctx, tourID)
	if err != nil {
		return err
	}

	average, quantity := models.DefaultRatingsAverage, 0
	if stats.Quantity > 0 {
		average, quantity = stats.Average, stats.Quantity
	}

	if err := s.tourRepo.UpdateRatings(ctx, tourID, average, quantity); err != nil {
		return err
	}

	invalidateTourAggregates(ctx, s.cacheService, s.logger)
	return nil
}

// recalculate runs after the review write has succeeded, so a failure is
// logged rather than returned.
func (s *reviewService) recalculate(ctx context.Context, tourID primitive.ObjectID) {
	if err := s.RecalculateRatings(ctx, tourID); err != nil {
		s.logger.WithError(err).WithTourID(tourID).Error("Failed to recalculate tour ratings")
	}
}

// authorized loads a review and checks that actor may modify it: admins may
// modify any review, everyone else only their own.
func (s *reviewService) authorized(ctx context.Context, actor *models.User, id string) (*models.Review, error) {
	reviewID, err := parseID(id)
	if err != nil {
		return nil, err
	}

	review, err := s.reviewRepo.GetByID(ctx, reviewID)
	if err != nil {
		return nil, notFoundAs(err, errMsgReviewNotFound)
	}

	if actor.Role != models.RoleAdmin && review.User != actor.ID {
		s.logger.LogSecurityEvent("review_modification_denied", "low", map[string]interface{}{
			"user_id":   actor.ID.Hex(),
			"review_id": review.ID.Hex(),
		})
		return nil, utils.NewForbiddenError("You can only modify your own reviews")
	}
	return review, nil
}
