// Package core provides the service-layer contracts and shared business logic
// for the taskdog task service.
package core

import (
	"bytes"
	"context"
	"time"
)

// CacheRepository defines the interface for caching operations.
// This follows the hexagonal architecture pattern where the core defines interfaces
// and the data layer provides implementations.
type CacheRepository interface {
	// Set stores a value in the cache with the given key and TTL.
	// If TTL is 0, the key will not expire.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Get retrieves a value from the cache by key.
	// Returns nil if the key doesn't exist or has expired.
	Get(ctx context.Context, key string) ([]byte, error)

	// Delete removes a key from the cache.
	// Returns true if the key was deleted, false if it didn't exist.
	Delete(ctx context.Context, key string) (bool, error)

	// Exists checks if a key exists in the cache.
	Exists(ctx context.Context, key string) (bool, error)

	// SetTTL updates the TTL for an existing key.
	// Returns true if the key exists and TTL was updated.
	SetTTL(ctx context.Context, key string, ttl time.Duration) (bool, error)

	// SetIfNotExists atomically sets a key only if it doesn't already exist.
	// Returns true if the key was set, false if it already existed.
	// This is how the schedule optimizer takes its cross-instance run lock.
	SetIfNotExists(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error)

	// Health checks the health of the cache connection.
	Health(ctx context.Context) error
}

// ganttViewCacheKey stores the rendered gantt payload for the default
// (unfiltered) task list view. Filtered views are computed per request.
const ganttViewCacheKey = "taskdog:gantt:default"

// GanttCacheService caches the rendered gantt payload across instances.
// The gantt endpoint is read far more often than tasks change, so the last
// rendered payload is kept in the cache and every task write invalidates it.
type GanttCacheService struct {
	cache CacheRepository
	ttl   time.Duration
}

// GanttCacheConfig holds configuration for gantt payload caching.
type GanttCacheConfig struct {
	TTL time.Duration `json:"ttl"`
}

// DefaultGanttCacheConfig returns a GanttCacheConfig with sensible defaults.
func DefaultGanttCacheConfig() GanttCacheConfig {
	return GanttCacheConfig{
		TTL: 5 * time.Minute,
	}
}

// NewGanttCacheService creates a new GanttCacheService.
func NewGanttCacheService(cache CacheRepository, cfg GanttCacheConfig) *GanttCacheService {
	return &GanttCacheService{
		cache: cache,
		ttl:   cfg.TTL,
	}
}

// CacheView stores the rendered gantt payload. An identical payload is not
// rewritten, so repeated renders of an unchanged schedule keep the TTL.
func (s *GanttCacheService) CacheView(ctx context.Context, payload []byte) error {
	if len(payload) == 0 {
		return nil // Nothing to cache
	}

	cached, err := s.cache.Get(ctx, ganttViewCacheKey)
	if err != nil {
		return err
	}
	if len(cached) > 0 && bytes.Equal(cached, payload) {
		return nil
	}

	return s.cache.Set(ctx, ganttViewCacheKey, payload, s.ttl)
}

// GetCachedView retrieves the cached gantt payload.
// Returns nil if not cached.
func (s *GanttCacheService) GetCachedView(ctx context.Context) ([]byte, error) {
	return s.cache.Get(ctx, ganttViewCacheKey)
}

// InvalidateView removes the cached gantt payload.
// This should be called after any task write.
func (s *GanttCacheService) InvalidateView(ctx context.Context) error {
	_, err := s.cache.Delete(ctx, ganttViewCacheKey)
	return err
}
