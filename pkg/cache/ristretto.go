package cache

import (
	"time"

	"github.com/dgraph-io/ristretto"
	"go.uber.org/zap"
)

const getBufferSize = 64

// RistrettoCache backs Cache with a Ristretto store. Entries cost one
// unit each, so capacity is counted in items rather than bytes.
type RistrettoCache struct {
	cache  *ristretto.Cache
	logger *zap.Logger
}

// Options sizes the cache.
type Options struct {
	MaxItems int64
	Logger   *zap.Logger
}

// NewRistrettoCache creates a Ristretto-backed cache holding up to
// MaxItems entries.
func NewRistrettoCache(opts *Options) (*RistrettoCache, error) {
	maxItems := opts.MaxItems
	if maxItems <= 0 {
		maxItems = 1000
	}

	// Ristretto wants roughly 10x the item capacity in frequency counters.
	inner, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: maxItems * 10,
		MaxCost:     maxItems,
		BufferItems: getBufferSize,
		Metrics:     true,
	})
	if err != nil {
		return nil, err
	}

	return &RistrettoCache{
		cache:  inner,
		logger: opts.Logger,
	}, nil
}

func (r *RistrettoCache) Get(key string) (interface{}, bool) {
	value, found := r.cache.Get(key)
	if found {
		CacheHitsTotal.Inc()
	} else {
		CacheMissesTotal.Inc()
	}
	return value, found
}

func (r *RistrettoCache) Set(key string, value interface{}, ttl time.Duration) bool {
	ok := r.cache.SetWithTTL(key, value, 1, ttl)
	if ok {
		CacheSetsTotal.Inc()
		r.logger.Debug("cache-set", zap.String("key", key), zap.Duration("ttl", ttl))
	}
	return ok
}

func (r *RistrettoCache) Delete(key string) {
	r.cache.Del(key)
	CacheDeletesTotal.Inc()
}

func (r *RistrettoCache) Close() {
	r.cache.Close()
}

// Wait blocks until pending writes are applied. Used in tests, where a
// Set must be visible before the next Get.
func (r *RistrettoCache) Wait() {
	r.cache.Wait()
}
