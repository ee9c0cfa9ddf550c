package exchange

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

//nolint:gochecknoglobals // Prometheus metrics
var (
	// RequestsTotal tracks exchange API requests by endpoint and outcome.
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "predict_exchange_requests_total",
			Help: "Total number of exchange API requests",
		},
		[]string{"endpoint", "status"},
	)

	// RequestDurationSeconds tracks exchange API latency by endpoint.
	RequestDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "predict_exchange_request_duration_seconds",
			Help:    "Duration of exchange API requests",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)

	// SubmitAttemptsTotal tracks order submission attempts.
	SubmitAttemptsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "predict_exchange_submit_attempts_total",
		Help: "Total number of order submission attempts",
	})

	// SubmitRetriesTotal tracks order submissions retried after a
	// retryable failure.
	SubmitRetriesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "predict_exchange_submit_retries_total",
		Help: "Total number of order submission retries",
	})
)
