package geolib

import (
	"context"
	"encoding/json"
	"time"

	"github.com/dgraph-io/ristretto"
)

const (
	// DefaultCacheTTL is a time period when cached values are valid.
	DefaultCacheTTL = time.Hour

	// DefaultCacheItems is a default capacity of in-memory cache.
	DefaultCacheItems = 100000
)

// Values are stored as JSON bytes, the same as in redis. Get always
// decodes a fresh copy.
type memoryCache struct {
	cache   *ristretto.Cache
	metrics *Metrics
}

func (m memoryCache) Get(_ context.Context, key string, dst interface{}) bool {
	value, ok := m.cache.Get(key)
	if !ok {
		m.metrics.cacheRequest("memory", false)

		return false
	}

	ok = json.Unmarshal(value.([]byte), dst) == nil

	m.metrics.cacheRequest("memory", ok)

	return ok
}

func (m memoryCache) Set(_ context.Context, key string, value interface{}, ttl time.Duration) {
	encoded, err := json.Marshal(value)
	if err != nil {
		return
	}

	// ristretto applies sets asynchronously, a following Get has to see
	// the value
	if m.cache.SetWithTTL(key, encoded, 1, ttl) {
		m.cache.Wait()
	}
}

// NewMemoryCache returns in-memory cache which can keep up to
// itemsCount values.
func NewMemoryCache(itemsCount uint, metrics *Metrics) Cache {
	if itemsCount == 0 {
		itemsCount = DefaultCacheItems
	}

	cacheConfig := &ristretto.Config{
		MaxCost:     int64(itemsCount),
		NumCounters: 10 * int64(itemsCount),
		Metrics:     false,
		BufferItems: 64,
	}

	cache, err := ristretto.NewCache(cacheConfig)
	if err != nil {
		panic(err)
	}

	return memoryCache{
		cache:   cache,
		metrics: metrics,
	}
}

type noopCache struct{}

func (noopCache) Get(context.Context, string, interface{}) bool {
	return false
}

func (noopCache) Set(context.Context, string, interface{}, time.Duration) {}

// NewNoopCache returns a cache which never stores anything.
func NewNoopCache() Cache {
	return noopCache{}
}
