package markets

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ListCacheHitsTotal tracks listings served from cache.
	ListCacheHitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "predict_markets_list_cache_hits_total",
		Help: "Total open-market listings served from cache",
	})

	// ListFetchesTotal tracks listings fetched from the exchange.
	ListFetchesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "predict_markets_list_fetches_total",
		Help: "Total open-market listings fetched from the exchange",
	})

	// ListFetchErrorsTotal tracks failed listing fetches.
	ListFetchErrorsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "predict_markets_list_fetch_errors_total",
		Help: "Total failed open-market listing fetches",
	})
)
