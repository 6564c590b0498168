package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"tourbook/pkg/cache"
	"tourbook/pkg/logger"
)

// Cache keys for tour aggregates. Any write that can change a tour's price,
// difficulty, start dates or ratings invalidates them.
const (
	tourStatsCacheKey       = "tours:stats"
	tourMonthlyPlanCacheKey = "tours:monthly-plan:%d"
	tourAggregatesTTL       = 10 * time.Minute
)

type CacheService interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	DeletePattern(ctx context.Context, pattern string) error
}

// CacheStore is the subset of pkg/cache.RedisCache the service needs.
type CacheStore interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	DeletePattern(ctx context.Context, pattern string) error
}

type cacheService struct {
	store      CacheStore
	logger     *logger.Logger
	defaultTTL time.Duration
}

// NewCacheService wraps store. A nil store yields a cache that always misses.
func NewCacheService(store CacheStore, logger *logger.Logger, defaultTTL time.Duration) CacheService {
	return &cacheService{
		store:      store,
		logger:     logger,
		defaultTTL: defaultTTL,
	}
}

func (s *cacheService) Get(ctx context.Context, key string, dest interface{}) error {
	if s.store == nil {
		return cache.ErrCacheMiss
	}
	if err := s.store.Get(ctx, key, dest); err != nil {
		if !errors.Is(err, cache.ErrCacheMiss) {
			s.logger.WithError(err).WithField("cache_key", key).Warn("Cache read failed")
		}
		return err
	}

	s.logger.WithField("cache_key", key).Debug("Cache hit")
	return nil
}

func (s *cacheService) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	if s.store == nil {
		return nil
	}
	if expiration == 0 {
		expiration = s.defaultTTL
	}
	if err := s.store.Set(ctx, key, value, expiration); err != nil {
		return fmt.Errorf("failed to set cache key %s: %w", key, err)
	}
	return nil
}

func (s *cacheService) Delete(ctx context.Context, keys ...string) error {
	if s.store == nil {
		return nil
	}
	if err := s.store.Delete(ctx, keys...); err != nil {
		return fmt.Errorf("failed to delete cache keys: %w", err)
	}
	s.logger.WithField("cache_keys", keys).Debug("Cache keys deleted")
	return nil
}

func (s *cacheService) DeletePattern(ctx context.Context, pattern string) error {
	if s.store == nil {
		return nil
	}
	if err := s.store.DeletePattern(ctx, pattern); err != nil {
		return fmt.Errorf("failed to delete cache pattern %s: %w", pattern, err)
	}
	return nil
}

// invalidateTourAggregates drops cached stats and monthly plans. Failures are
// logged; the entries expire on their own.
func invalidateTourAggregates(ctx context.Context, c CacheService, log *logger.Logger) {
	if err := c.Delete(ctx, tourStatsCacheKey); err != nil {
		log.WithError(err).Warn("Failed to invalidate tour stats cache")
	}
	if err := c.DeletePattern(ctx, "tours:monthly-plan:*"); err != nil {
		log.WithError(err).Warn("Failed to invalidate monthly plan cache")
	}
}
