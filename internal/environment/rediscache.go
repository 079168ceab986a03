package environment

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/paulmach/orb"
	"go.uber.org/zap"

	"github.com/mansikatarey/Umbra/internal/types"
)

// Cache wraps a Provider with a Redis snapshot cache keyed by the requested
// region. Redis failures degrade to the inner provider and are only logged;
// the cache never turns a cacheable request into an error.
type Cache struct {
	inner  Provider
	rc     *redis.Client
	ttl    time.Duration
	logger *zap.SugaredLogger
}

func NewCache(inner Provider, rc *redis.Client, ttl time.Duration, logger *zap.SugaredLogger) *Cache {
	return &Cache{
		inner:  inner,
		rc:     rc,
		ttl:    ttl,
		logger: logger,
	}
}

func (c *Cache) Snapshot(ctx context.Context, region orb.Bound) (*types.EnvironmentSnapshot, error) {
	key := cacheKey(region)

	cached, err := c.rc.Get(ctx, key).Result()
	if err == nil {
		var snap types.EnvironmentSnapshot
		if err := json.Unmarshal([]byte(cached), &snap); err == nil {
			return &snap, nil
		}
		c.logger.Warnf("Error unmarshalling cached snapshot for %v: %v", key, err)
	} else if err != redis.Nil {
		c.logger.Errorf("Redis error fetching snapshot for %v: %v", key, err)
	}

	snap, err := c.inner.Snapshot(ctx, region)
	if err != nil {
		return nil, err
	}

	encoded, err := json.Marshal(snap)
	if err != nil {
		c.logger.Warnf("Error marshalling snapshot for %v: %v", key, err)
		return snap, nil
	}
	if err := c.rc.Set(ctx, key, encoded, c.ttl).Err(); err != nil {
		c.logger.Errorf("Redis error storing snapshot for %v: %v", key, err)
	}
	return snap, nil
}

// cacheKey quantizes the region to ~11m so nearby requests share entries.
func cacheKey(region orb.Bound) string {
	return fmt.Sprintf("env:%.4f:%.4f:%.4f:%.4f",
		region.Min.Lon(), region.Min.Lat(), region.Max.Lon(), region.Max.Lat())
}
