package executor

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// TradesTotal counts executed trades by terminal status.
	TradesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "predict_trades_total",
		Help: "Total number of trade executions, by terminal status",
	}, []string{"status"})

	// TradeDurationSeconds observes end-to-end execution latency.
	TradeDurationSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "predict_trade_duration_seconds",
		Help:    "Trade execution duration in seconds",
		Buckets: prometheus.DefBuckets,
	})
)
