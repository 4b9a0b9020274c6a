package items

import (
	"context"
	"errors"
	"fmt"
	"time"

	"simpleapp/itemsvc/pkg/apperr"
	"simpleapp/itemsvc/pkg/config"
	"simpleapp/itemsvc/pkg/telemetry/logging"
	"simpleapp/itemsvc/pkg/telemetry/performance"
)

const qualifier = "items.Service"

// Log messages of the item service.
const (
	LogItemCreated   = "Item created successfully"
	LogItemRetrieved = "Item retrieved successfully"
	LogItemUpdated   = "Item updated successfully"
	LogItemDeleted   = "Item deleted successfully"
	LogItemNotFound  = "Item not found"
)

// Service implements the item operations. Every operation runs under the
// performance guard with the service threshold.
type Service struct {
	store     Store
	cache     *Cache
	guard     *performance.Guard
	logger    *logging.Logger
	threshold time.Duration
}

// NewService creates a service. cache may be nil.
func NewService(store Store, cache *Cache, guard *performance.Guard, logger *logging.Logger, threshold time.Duration) *Service {
	if threshold <= 0 {
		threshold = config.DefaultServiceThreshold
	}
	return &Service{
		store:     store,
		cache:     cache,
		guard:     guard,
		logger:    logger,
		threshold: threshold,
	}
}

// Create stores a new item.
func (s *Service) Create(ctx context.Context, in Input) (*Item, error) {
	return performance.Run(ctx, s.guard, qualifier, "Create", func(ctx context.Context) (*Item, error) {
		item, err := s.store.Create(ctx, in)
		if err != nil {
			return nil, err
		}
		s.logger.Info(ctx, LogItemCreated, map[string]any{"item_id": item.ID})
		return item, nil
	}, performance.WithThreshold(s.threshold))
}

// Get returns an item, from the cache when possible.
func (s *Service) Get(ctx context.Context, id int64) (*Item, error) {
	return performance.Run(ctx, s.guard, qualifier, "Get", func(ctx context.Context) (*Item, error) {
		if item, ok := s.cache.Get(id); ok {
			s.logger.Debug(ctx, "Item served from cache", map[string]any{"item_id": id})
			return item, nil
		}

		s.logger.Info(ctx, fmt.Sprintf("Getting item with item_id %d", id), nil)

		tracker := s.guard.NewTracker(s.threshold / 2)
		item, err := s.store.Get(ctx, id)
		tracker.CheckAndLog(ctx, "item store read", map[string]any{"item_id": id})
		if err != nil {
			return nil, s.notFound(ctx, id, err)
		}

		s.cache.Set(item)
		s.logger.Info(ctx, LogItemRetrieved, map[string]any{"item_id": item.ID})
		return item, nil
	}, performance.WithThreshold(s.threshold))
}

// Update replaces an item's fields.
func (s *Service) Update(ctx context.Context, id int64, in Input) (*Item, error) {
	return performance.Run(ctx, s.guard, qualifier, "Update", func(ctx context.Context) (*Item, error) {
		item, err := s.store.Update(ctx, id, in)
		if err != nil {
			return nil, s.notFound(ctx, id, err)
		}

		s.cache.Invalidate(id)
		s.logger.Info(ctx, LogItemUpdated, map[string]any{"item_id": item.ID})
		return item, nil
	}, performance.WithThreshold(s.threshold))
}

// Delete removes an item.
func (s *Service) Delete(ctx context.Context, id int64) error {
	_, err := performance.Run(ctx, s.guard, qualifier, "Delete", func(ctx context.Context) (struct{}, error) {
		if err := s.store.Delete(ctx, id); err != nil {
			return struct{}{}, s.notFound(ctx, id, err)
		}

		s.cache.Invalidate(id)
		s.logger.Info(ctx, LogItemDeleted, map[string]any{"item_id": id})
		return struct{}{}, nil
	}, performance.WithThreshold(s.threshold))
	return err
}

// notFound converts ErrNotFound to a logged 404. Other errors pass through.
func (s *Service) notFound(ctx context.Context, id int64, err error) error {
	if !errors.Is(err, ErrNotFound) {
		return err
	}
	s.logger.Error(ctx, LogItemNotFound, map[string]any{
		"error_code": CodeItemNotFound,
		"item_id":    id,
	})
	return apperr.Wrap(apperr.KindNotFound, err, fmt.Sprintf("Item %d not found", id))
}
