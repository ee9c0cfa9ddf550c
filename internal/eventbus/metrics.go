package eventbus

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// PublishedTotal counts events appended to each stream.
	PublishedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "predict_events_published_total",
		Help: "Total number of domain events published, by stream and type",
	}, []string{"stream", "type"})

	// PublishErrorsTotal counts swallowed publish failures.
	PublishErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "predict_events_publish_errors_total",
		Help: "Total number of event publish failures, by stream",
	}, []string{"stream"})

	// RelayedTotal counts events broadcast to subscribers.
	RelayedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "predict_relay_events_total",
		Help: "Total number of events relayed to subscribers, by stream",
	}, []string{"stream"})

	// ClientsConnected tracks the current websocket subscriber count.
	ClientsConnected = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "predict_ws_clients",
		Help: "Current number of connected websocket subscribers",
	})
)
