package geolib

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"
)

// DefaultRedisTimeout limits each redis call. Slow redis is the same as
// unavailable one: a miss.
const DefaultRedisTimeout = 250 * time.Millisecond

type redisCache struct {
	client    redis.Cmdable
	keyPrefix string
	timeout   time.Duration
	logger    Logger
	metrics   *Metrics
}

func (r redisCache) Get(ctx context.Context, key string, dst interface{}) bool {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	value, err := r.client.Get(ctx, r.keyPrefix+key).Bytes()

	switch {
	case errors.Is(err, redis.Nil):
		r.metrics.cacheRequest("redis", false)

		return false
	case err != nil:
		r.logger.CacheError(key, err)
		r.metrics.cacheRequest("redis", false)

		return false
	}

	if err := json.Unmarshal(value, dst); err != nil {
		r.logger.CacheError(key, err)
		r.metrics.cacheRequest("redis", false)

		return false
	}

	r.metrics.cacheRequest("redis", true)

	return true
}

func (r redisCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) {
	encoded, err := json.Marshal(value)
	if err != nil {
		r.logger.CacheError(key, err)

		return
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	if err := r.client.Set(ctx, r.keyPrefix+key, encoded, ttl).Err(); err != nil {
		r.logger.CacheError(key, err)
	}
}

// NewRedisCache returns a cache which is shared between several
// instances with a help of redis. All keys are prefixed with keyPrefix.
func NewRedisCache(client redis.Cmdable, keyPrefix string, logger Logger, metrics *Metrics) Cache {
	return redisCache{
		client:    client,
		keyPrefix: keyPrefix,
		timeout:   DefaultRedisTimeout,
		logger:    logger,
		metrics:   metrics,
	}
}
