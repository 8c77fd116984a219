package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/andresuchdata/replenish/backend-go/internal/config"
	"github.com/andresuchdata/replenish/backend-go/internal/domain"
)

const (
	suggestionKeyPrefix     = "reorder:suggestions"
	suggestionScanBatchSize = 100
)

// SuggestionCache memoizes calculator runs. Suggestions are advisory and
// rebuilt cheaply, so a stale or missing entry is never an error.
type SuggestionCache interface {
	Get(ctx context.Context, storeID, supplierID uuid.UUID, level domain.ServiceLevel) (*domain.SuggestionRun, bool, error)
	Set(ctx context.Context, run *domain.SuggestionRun) error
	InvalidateStore(ctx context.Context, storeID uuid.UUID) error
	InvalidateAll(ctx context.Context) error
}

type redisSuggestionCache struct {
	client *redis.Client
	ttl    time.Duration
}

type noopSuggestionCache struct{}

// NewSuggestionCache builds the redis-backed cache, or the noop cache when
// caching is disabled.
func NewSuggestionCache(cfg config.CacheConfig) (SuggestionCache, error) {
	if !cfg.Enabled {
		return &noopSuggestionCache{}, nil
	}

	client, err := NewRedisClient(cfg)
	if err != nil {
		return nil, err
	}

	return &redisSuggestionCache{
		client: client,
		ttl:    suggestionTTL(cfg),
	}, nil
}

func NewNoopSuggestionCache() SuggestionCache {
	return &noopSuggestionCache{}
}

func (c *redisSuggestionCache) Get(ctx context.Context, storeID, supplierID uuid.UUID, level domain.ServiceLevel) (*domain.SuggestionRun, bool, error) {
	key := buildSuggestionKey(storeID, supplierID, level)

	payload, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get failed: %w", err)
	}

	var run domain.SuggestionRun
	if err := json.Unmarshal(payload, &run); err != nil {
		return nil, false, fmt.Errorf("decode suggestion cache: %w", err)
	}

	return &run, true, nil
}

func (c *redisSuggestionCache) Set(ctx context.Context, run *domain.SuggestionRun) error {
	key := buildSuggestionKey(run.StoreID, run.SupplierID, run.ServiceLevel)
	payload, err := json.Marshal(run)
	if err != nil {
		return fmt.Errorf("encode suggestion cache: %w", err)
	}

	if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (c *redisSuggestionCache) InvalidateStore(ctx context.Context, storeID uuid.UUID) error {
	prefix := fmt.Sprintf("%s:%s", suggestionKeyPrefix, storeID)
	return deleteKeysWithPrefix(ctx, c.client, prefix, suggestionScanBatchSize)
}

func (c *redisSuggestionCache) InvalidateAll(ctx context.Context) error {
	return deleteKeysWithPrefix(ctx, c.client, suggestionKeyPrefix, suggestionScanBatchSize)
}

func (n *noopSuggestionCache) Get(ctx context.Context, storeID, supplierID uuid.UUID, level domain.ServiceLevel) (*domain.SuggestionRun, bool, error) {
	return nil, false, nil
}

func (n *noopSuggestionCache) Set(ctx context.Context, run *domain.SuggestionRun) error {
	return nil
}

func (n *noopSuggestionCache) InvalidateStore(ctx context.Context, storeID uuid.UUID) error {
	return nil
}

func (n *noopSuggestionCache) InvalidateAll(ctx context.Context) error {
	return nil
}

func buildSuggestionKey(storeID, supplierID uuid.UUID, level domain.ServiceLevel) string {
	return fmt.Sprintf("%s:%s:%s:%s", suggestionKeyPrefix, storeID, supplierID, level)
}
