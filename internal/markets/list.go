// Package markets serves the open-markets listing. The listing is the
// one read path allowed to cache: trade execution always re-fetches
// market metadata so fee rates and risk flags are never stale, but the
// browse listing tolerates a short TTL.
package markets

import (
	"context"
	"fmt"
	"time"

	"github.com/mselser95/predict-account/pkg/cache"
	"github.com/mselser95/predict-account/pkg/types"
	"go.uber.org/zap"
)

const cacheKey = "markets:open"

// Lister fetches open markets with a read-through cache.
type Lister struct {
	client Fetcher
	cache  cache.Cache
	ttl    time.Duration
	limit  int
	logger *zap.Logger
}

// Fetcher is the exchange surface the lister needs.
type Fetcher interface {
	GetOpenMarkets(ctx context.Context, limit int) ([]*types.Market, error)
}

// Config holds lister configuration.
type Config struct {
	Client Fetcher
	Cache  cache.Cache
	TTL    time.Duration
	Limit  int
	Logger *zap.Logger
}

func NewLister(cfg *Config) *Lister {
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	limit := cfg.Limit
	if limit <= 0 {
		limit = 50
	}

	return &Lister{
		client: cfg.Client,
		cache:  cfg.Cache,
		ttl:    ttl,
		limit:  limit,
		logger: cfg.Logger,
	}
}

// List returns open markets, served from cache within the TTL.
func (l *Lister) List(ctx context.Context) ([]*types.Market, error) {
	if cached, ok := l.cache.Get(cacheKey); ok {
		if markets, ok := cached.([]*types.Market); ok {
			ListCacheHitsTotal.Inc()
			l.logger.Debug("markets-cache-hit", zap.Int("count", len(markets)))
			return markets, nil
		}
	}

	markets, err := l.client.GetOpenMarkets(ctx, l.limit)
	if err != nil {
		ListFetchErrorsTotal.Inc()
		return nil, fmt.Errorf("list open markets: %w", err)
	}
	ListFetchesTotal.Inc()

	l.cache.Set(cacheKey, markets, l.ttl)
	l.logger.Debug("markets-cache-refreshed", zap.Int("count", len(markets)))
	return markets, nil
}

// Invalidate drops the cached listing.
func (l *Lister) Invalidate() {
	l.cache.Delete(cacheKey)
}
