package main

import (
	"context"
	"fmt"

	"tourbook/internal/repositories/interfaces"
	"tourbook/pkg/logger"
)

type seeder struct {
	tours   interfaces.TourRepository
	users   interfaces.UserRepository
	reviews interfaces.ReviewRepository
	logger  *logger.Logger
}

// importAll inserts users first so reviews and guides resolve, and reviews
// last. Tour ratings are imported as given.
func (s *seeder) importAll(ctx context.Context, data *dataSet) error {
	if err := s.users.InsertMany(ctx, data.Users); err != nil {
		return err
	}
	if err := s.tours.InsertMany(ctx, data.Tours); err != nil {
		return err
	}
	if err := s.reviews.InsertMany(ctx, data.Reviews); err != nil {
		return err
	}
	s.logger.WithFields(map[string]interface{}{
		"tours":   len(data.Tours),
		"users":   len(data.Users),
		"reviews": len(data.Reviews),
	}).Info("Imported data set")
	return nil
}

func (s *seeder) deleteAll(ctx context.Context) error {
	counts := make(map[string]interface{}, 3)

	n, err := s.reviews.DeleteAll(ctx)
	if err != nil {
		return fmt.Errorf("reviews: %w", err)
	}
	counts["reviews"] = n

	if n, err = s.tours.DeleteAll(ctx); err != nil {
		return fmt.Errorf("tours: %w", err)
	}
	counts["tours"] = n

	if n, err = s.users.DeleteAll(ctx); err != nil {
		return fmt.Errorf("users: %w", err)
	}
	counts["users"] = n

	s.logger.WithFields(counts).Info("Deleted data set")
	return nil
}
