package streetcache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"mxaddress/internal/address/models"
)

const (
	// Redis key prefix for neighborhood street lists
	streetsKeyPrefix = "mxaddress:streets:"

	DefaultTTL = 24 * time.Hour
)

// RedisCache is a Redis-backed street cache shared by every instance of the
// service. Entries expire after the configured TTL.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCache constructs a Redis-backed street cache. A non-positive ttl
// uses DefaultTTL.
func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisCache{client: client, ttl: ttl}
}

func (c *RedisCache) Get(ctx context.Context, key Key) ([]models.StreetSegment, bool, error) {
	raw, err := c.client.Get(ctx, streetsKeyPrefix+key.String()).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get streets %s: %w", key, err)
	}

	var segments []models.StreetSegment
	if err := json.Unmarshal(raw, &segments); err != nil {
		return nil, false, fmt.Errorf("decode streets %s: %w", key, err)
	}
	return segments, true, nil
}

func (c *RedisCache) Set(ctx context.Context, key Key, segments []models.StreetSegment) error {
	if segments == nil {
		segments = []models.StreetSegment{}
	}
	raw, err := json.Marshal(segments)
	if err != nil {
		return fmt.Errorf("encode streets %s: %w", key, err)
	}
	return c.client.Set(ctx, streetsKeyPrefix+key.String(), raw, c.ttl).Err()
}
