package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mohamedkhairy/session-analytics/internal/config"
	"github.com/mohamedkhairy/session-analytics/pkg/logger"
	"github.com/redis/go-redis/v9"
)

const boundaryKeyPrefix = "session-records:"

// RedisBoundaryCache implements BoundaryCache on Redis. Values are the
// serialized flat record maps; entries have no TTL and live until an
// explicit invalidation.
type RedisBoundaryCache struct {
	client *redis.Client
}

// NewRedisBoundaryCache connects to Redis and verifies the connection.
func NewRedisBoundaryCache(cfg config.RedisConfig) (*RedisBoundaryCache, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logger.Info("Connected to Redis",
		logger.String("host", cfg.Host),
		logger.Int("port", cfg.Port),
	)

	return &RedisBoundaryCache{client: rdb}, nil
}

// GetSerialized returns the cached flat maps for an instrument, nil on miss.
func (c *RedisBoundaryCache) GetSerialized(ctx context.Context, instrument string) ([]map[string]interface{}, error) {
	data, err := c.client.Get(ctx, boundaryKeyPrefix+instrument).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read boundary cache: %w", err)
	}

	var records []map[string]interface{}
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to decode boundary cache entry: %w", err)
	}
	return records, nil
}

// PutSerialized replaces the cached flat maps for an instrument.
func (c *RedisBoundaryCache) PutSerialized(ctx context.Context, instrument string, records []map[string]interface{}) error {
	data, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("failed to encode boundary cache entry: %w", err)
	}
	// No TTL: entries are invalidated explicitly, never evicted by time.
	return c.client.Set(ctx, boundaryKeyPrefix+instrument, data, 0).Err()
}

// Invalidate drops one instrument's entry, or every entry when empty.
func (c *RedisBoundaryCache) Invalidate(ctx context.Context, instrument string) error {
	if instrument != "" {
		return c.client.Del(ctx, boundaryKeyPrefix+instrument).Err()
	}

	iter := c.client.Scan(ctx, 0, boundaryKeyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}

// Close closes the Redis connection.
func (c *RedisBoundaryCache) Close() error {
	return c.client.Close()
}
