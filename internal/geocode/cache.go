// README: Redis-backed cache wrapping a resolver; keys round coordinates to ~11m cells.
package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"fieldmatch/internal/types"
)

const cacheKeyPrefix = "geocode:%.4f:%.4f"

// CachedResolver memoizes resolver results in Redis. Resolver errors are
// not cached; a cache failure falls through to the backend.
type CachedResolver struct {
	backend Resolver
	redis   *redis.Client
	ttl     time.Duration
}

func NewCachedResolver(backend Resolver, rdb *redis.Client, ttl time.Duration) *CachedResolver {
	return &CachedResolver{backend: backend, redis: rdb, ttl: ttl}
}

func (c *CachedResolver) Resolve(ctx context.Context, p types.Point) (Resolved, error) {
	key := fmt.Sprintf(cacheKeyPrefix, p.Lat, p.Lng)

	if val, err := c.redis.Get(ctx, key).Result(); err == nil {
		var cached Resolved
		if json.Unmarshal([]byte(val), &cached) == nil {
			return cached, nil
		}
	}

	resolved, err := c.backend.Resolve(ctx, p)
	if err != nil {
		return Resolved{}, err
	}

	if payload, err := json.Marshal(resolved); err == nil {
		_ = c.redis.Set(ctx, key, payload, c.ttl).Err()
	}
	return resolved, nil
}
