package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"fraudlens/internal/models"

	"github.com/redis/go-redis/v9"
)

type EntityType string

const EntityStats EntityType = "stats"

// CacheService stores JSON values in Redis with a default TTL.
type CacheService struct {
	client *redis.Client
	ttl    time.Duration
}

func NewCacheService(client *redis.Client, defaultTTL time.Duration) *CacheService {
	return &CacheService{
		client: client,
		ttl:    defaultTTL,
	}
}

// Get decodes the value at key into dest. A missing key reports (false, nil).
func (s *CacheService) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	data, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, fmt.Errorf("failed to get cache value: %w", err)
	}

	if err := json.Unmarshal(data, dest); err != nil {
		return false, fmt.Errorf("failed to unmarshal cache value: %w", err)
	}
	return true, nil
}

// GenerateKey creates a standardized cache key
func GenerateKey(entity EntityType, keyType string, value interface{}) string {
	return fmt.Sprintf("%s:%s:%v", entity, keyType, value)
}

var (
	statsKey           = GenerateKey(EntityStats, "scope", "global")
	statsGenerationKey = GenerateKey(EntityStats, "generation", "global")
)

// GetAggregate returns the cached aggregate, reporting false on a miss.
func (s *CacheService) GetAggregate(ctx context.Context) (*models.AggregateStats, bool, error) {
	var stats models.AggregateStats
	found, err := s.Get(ctx, statsKey, &stats)
	if err != nil || !found {
		return nil, false, err
	}
	return &stats, true, nil
}

// AggregateGeneration returns the invalidation counter. Read it before
// computing an aggregate and pass it to SetAggregate.
func (s *CacheService) AggregateGeneration(ctx context.Context) (int64, error) {
	gen, err := s.client.Get(ctx, statsGenerationKey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read stats generation: %w", err)
	}
	return gen, nil
}

// SetAggregate caches stats for the default TTL, but only while the
// generation still equals generation. It reports false when an
// invalidation landed since the aggregate was read.
func (s *CacheService) SetAggregate(ctx context.Context, stats *models.AggregateStats, generation int64) (bool, error) {
	if stats == nil {
		return false, errors.New("cannot cache nil stats")
	}
	data, err := json.Marshal(stats)
	if err != nil {
		return false, fmt.Errorf("failed to marshal cache value: %w", err)
	}

	stored := false
	err = s.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, statsGenerationKey).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if current != generation {
			return nil
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, statsKey, data, s.ttl)
			return nil
		})
		if err != nil {
			return err
		}
		stored = true
		return nil
	}, statsGenerationKey)

	switch {
	case errors.Is(err, redis.TxFailedErr):
		return false, nil
	case err != nil:
		return false, fmt.Errorf("failed to set cache value: %w", err)
	}
	return stored, nil
}

// InvalidateAggregate bumps the generation and drops the cached aggregate
// after a new prediction is logged.
func (s *CacheService) InvalidateAggregate(ctx context.Context) error {
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, statsGenerationKey)
		pipe.Del(ctx, statsKey)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to invalidate stats: %w", err)
	}
	return nil
}

// Close closes the Redis client connection
func (s *CacheService) Close() error {
	return s.client.Close()
}
