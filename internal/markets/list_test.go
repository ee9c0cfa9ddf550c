package markets

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/mselser95/predict-account/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// countingFetcher counts upstream calls.
type countingFetcher struct {
	calls   int
	failure error
}

func (f *countingFetcher) GetOpenMarkets(ctx context.Context, limit int) ([]*types.Market, error) {
	f.calls++
	if f.failure != nil {
		return nil, f.failure
	}
	return []*types.Market{{ID: "m1"}, {ID: "m2"}}, nil
}

// mapCache is a TTL-less in-memory cache for tests.
type mapCache struct {
	mu sync.Mutex
	m  map[string]any
}

func newMapCache() *mapCache { return &mapCache{m: make(map[string]any)} }

func (c *mapCache) Get(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.m[key]
	return v, ok
}

func (c *mapCache) Set(key string, value any, ttl time.Duration) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.m[key] = value
	return true
}

func (c *mapCache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.m, key)
}

func (c *mapCache) Close() {}

func newTestLister(fetcher *countingFetcher) *Lister {
	return NewLister(&Config{
		Client: fetcher,
		Cache:  newMapCache(),
		TTL:    time.Minute,
		Limit:  50,
		Logger: zap.NewNop(),
	})
}

func TestList_CacheHitAvoidsRefetch(t *testing.T) {
	fetcher := &countingFetcher{}
	lister := newTestLister(fetcher)
	ctx := context.Background()

	first, err := lister.List(ctx)
	require.NoError(t, err)
	require.Len(t, first, 2)
	assert.Equal(t, 1, fetcher.calls)

	second, err := lister.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, fetcher.calls, "second call must be served from cache")
}

func TestList_InvalidateForcesRefetch(t *testing.T) {
	fetcher := &countingFetcher{}
	lister := newTestLister(fetcher)
	ctx := context.Background()

	_, err := lister.List(ctx)
	require.NoError(t, err)

	lister.Invalidate()

	_, err = lister.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, fetcher.calls)
}

func TestList_UpstreamErrorNotCached(t *testing.T) {
	fetcher := &countingFetcher{failure: errors.New("exchange down")}
	lister := newTestLister(fetcher)
	ctx := context.Background()

	_, err := lister.List(ctx)
	require.Error(t, err)

	fetcher.failure = nil
	markets, err := lister.List(ctx)
	require.NoError(t, err)
	assert.Len(t, markets, 2)
	assert.Equal(t, 2, fetcher.calls)
}
