package eventbus

import (
	"context"
	"time"

	json "github.com/goccy/go-json"
	"github.com/mselser95/predict-account/pkg/types"
	"go.uber.org/zap"
)

// Publisher appends domain events to the streams. Appends are best-effort:
// errors are logged and counted but never returned, so a Redis outage can
// never fail a trade.
type Publisher struct {
	stream Stream
	logger *zap.Logger
}

func NewPublisher(stream Stream, logger *zap.Logger) *Publisher {
	return &Publisher{stream: stream, logger: logger}
}

// Publish appends one {type, platform, timestamp, data} entry to the named
// stream. The payload is serialized JSON, the timestamp RFC 3339 UTC.
func (p *Publisher) Publish(ctx context.Context, stream, eventType string, data map[string]any) {
	payload, err := json.Marshal(data)
	if err != nil {
		PublishErrorsTotal.WithLabelValues(stream).Inc()
		p.logger.Warn("event-marshal-failed",
			zap.String("stream", stream),
			zap.String("type", eventType),
			zap.Error(err))
		return
	}

	values := map[string]any{
		"type":      eventType,
		"platform":  types.EventPlatform,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"data":      string(payload),
	}

	if err := p.stream.Append(ctx, stream, values); err != nil {
		PublishErrorsTotal.WithLabelValues(stream).Inc()
		p.logger.Warn("event-publish-failed",
			zap.String("stream", stream),
			zap.String("type", eventType),
			zap.Error(err))
		return
	}

	PublishedTotal.WithLabelValues(stream, eventType).Inc()
	p.logger.Debug("event-published",
		zap.String("stream", stream),
		zap.String("type", eventType))
}

// PublishTrade appends a trade lifecycle event.
func (p *Publisher) PublishTrade(ctx context.Context, eventType string, data map[string]any) {
	p.Publish(ctx, types.StreamTradeEvents, eventType, data)
}

// PublishAccount appends an account lifecycle event.
func (p *Publisher) PublishAccount(ctx context.Context, eventType string, data map[string]any) {
	p.Publish(ctx, types.StreamAccountEvents, eventType, data)
}

// PublishFill appends a fill event.
func (p *Publisher) PublishFill(ctx context.Context, data map[string]any) {
	p.Publish(ctx, types.StreamFillEvents, types.EventFill, data)
}
