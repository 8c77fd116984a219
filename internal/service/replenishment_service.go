package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/andresuchdata/replenish/backend-go/internal/cache"
	"github.com/andresuchdata/replenish/backend-go/internal/domain"
	"github.com/andresuchdata/replenish/backend-go/internal/reorder"
)

// ReplenishmentService fronts the reorder calculator with a short-lived
// cache. Suggestions are advisory, so serving a slightly stale run is fine.
type ReplenishmentService struct {
	calculator *reorder.Calculator
	cache      cache.SuggestionCache
}

func NewReplenishmentService(calculator *reorder.Calculator, cacheImpl cache.SuggestionCache) *ReplenishmentService {
	if cacheImpl == nil {
		cacheImpl = cache.NewNoopSuggestionCache()
	}
	return &ReplenishmentService{calculator: calculator, cache: cacheImpl}
}

// Suggestions returns the reorder suggestions for a (store, supplier) pair
// at the requested service level, with missing-input warnings alongside.
func (s *ReplenishmentService) Suggestions(ctx context.Context, storeID, supplierID uuid.UUID, level domain.ServiceLevel) (*domain.SuggestionRun, error) {
	if run, ok, err := s.cache.Get(ctx, storeID, supplierID, level); err == nil && ok {
		return run, nil
	} else if err != nil {
		log.Warn().Err(err).Msg("replenishment: cache get failed")
	}

	run, err := s.calculator.Calculate(ctx, storeID, supplierID, level)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, run); err != nil {
		log.Warn().Err(err).Msg("replenishment: cache set failed")
	}

	return run, nil
}

// InvalidateStore drops cached runs for a store after its inventory moved.
func (s *ReplenishmentService) InvalidateStore(ctx context.Context, storeID uuid.UUID) {
	if err := s.cache.InvalidateStore(ctx, storeID); err != nil {
		log.Warn().Err(err).Msg("replenishment: cache invalidation failed")
	}
}
