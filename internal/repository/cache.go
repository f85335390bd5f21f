package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/koliko-eats/koliko-orders-service/internal/config"
	"github.com/koliko-eats/koliko-orders-service/internal/logging"
	"github.com/koliko-eats/koliko-orders-service/internal/models"
)

const (
	dishKeyPrefix   = "dish:"
	defaultCacheTTL = 5 * time.Minute
)

// CachedCatalogRepository is a read-through Redis cache in front of a
// CatalogRepository. Cache failures are logged and absorbed; the
// source of truth always answers.
type CachedCatalogRepository struct {
	source CatalogRepository
	client *redis.Client
	ttl    time.Duration
	logger *logging.Logger
}

func NewCachedCatalogRepository(source CatalogRepository, cfg config.RedisConfig) *CachedCatalogRepository {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ttl := cfg.TTL
	if ttl == 0 {
		ttl = defaultCacheTTL
	}

	return &CachedCatalogRepository{
		source: source,
		client: client,
		ttl:    ttl,
		logger: logging.NewLogger("catalog-cache"),
	}
}

// GetDishes serves cached dish snapshots and fetches misses from the
// source. The short TTL bounds how stale a quote's snapshot can be.
func (c *CachedCatalogRepository) GetDishes(ctx context.Context, ids []string) ([]models.DishCatalogEntry, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	hits, misses := c.lookup(ctx, ids)
	if len(misses) == 0 {
		return hits, nil
	}

	fresh, err := c.source.GetDishes(ctx, misses)
	if err != nil {
		return nil, err
	}
	c.store(ctx, fresh)

	return append(hits, fresh...), nil
}

func (c *CachedCatalogRepository) lookup(ctx context.Context, ids []string) (hits []models.DishCatalogEntry, misses []string) {
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = dishKeyPrefix + id
	}

	values, err := c.client.MGet(ctx, keys...).Result()
	if err != nil {
		c.logger.Warn("Cache read failed, falling through to source", logging.Fields{"error": err.Error()})
		return nil, ids
	}

	for i, v := range values {
		s, ok := v.(string)
		if !ok {
			misses = append(misses, ids[i])
			continue
		}
		var entry models.DishCatalogEntry
		if err := json.Unmarshal([]byte(s), &entry); err != nil {
			misses = append(misses, ids[i])
			continue
		}
		hits = append(hits, entry)
	}
	return hits, misses
}

func (c *CachedCatalogRepository) store(ctx context.Context, entries []models.DishCatalogEntry) {
	for _, entry := range entries {
		data, err := json.Marshal(entry)
		if err != nil {
			continue
		}
		if err := c.client.Set(ctx, dishKeyPrefix+entry.ID, data, c.ttl).Err(); err != nil {
			c.logger.Warn("Cache write failed", logging.Fields{
				"dish_id": entry.ID,
				"error":   err.Error(),
			})
			return
		}
	}
}

// Close releases the Redis connection.
func (c *CachedCatalogRepository) Close() error {
	return c.client.Close()
}
