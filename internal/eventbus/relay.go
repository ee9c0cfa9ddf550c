package eventbus

import (
	"context"
	"time"

	json "github.com/goccy/go-json"
	"github.com/mselser95/predict-account/pkg/types"
	"go.uber.org/zap"
)

// relayStreams is the fixed set of streams the relay drains.
var relayStreams = []string{
	types.StreamTradeEvents,
	types.StreamAccountEvents,
	types.StreamFillEvents,
}

const (
	// initialCursor starts a fresh consumer at the beginning of the log.
	initialCursor = "0"

	readCount  = 64
	errorPause = time.Second

	// idlePause bounds the loop rate when Read returns empty without
	// blocking. Redis reads block server-side, so this only matters for
	// stream implementations that return immediately.
	idlePause = 50 * time.Millisecond
)

// Relay is the long-lived loop that reads new entries across the event
// streams and fans them out to connected subscribers. Cursors are saved
// after each delivered batch, so a restart resumes from the last durable
// position and redelivers at most the final in-flight batch.
type Relay struct {
	stream  Stream
	cursors CursorStore
	hub     Broadcaster
	logger  *zap.Logger
}

func NewRelay(stream Stream, cursors CursorStore, hub Broadcaster, logger *zap.Logger) *Relay {
	return &Relay{
		stream:  stream,
		cursors: cursors,
		hub:     hub,
		logger:  logger,
	}
}

// Run drains the streams until the context is cancelled. Read errors are
// logged and retried after a short pause, never fatal.
func (r *Relay) Run(ctx context.Context) error {
	cursors := make(map[string]string, len(relayStreams))
	for _, stream := range relayStreams {
		id, err := r.cursors.Load(ctx, stream)
		if err != nil {
			r.logger.Warn("relay-cursor-load-failed",
				zap.String("stream", stream),
				zap.Error(err))
			id = ""
		}
		if id == "" {
			id = initialCursor
		}
		cursors[stream] = id
	}

	r.logger.Info("relay-started", zap.Any("cursors", cursors))

	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		batches, err := r.stream.Read(ctx, cursors, readCount)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			r.logger.Warn("relay-read-failed", zap.Error(err))
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(errorPause):
			}
			continue
		}

		if len(batches) == 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(idlePause):
			}
			continue
		}

		for _, batch := range batches {
			for _, msg := range batch.Messages {
				r.deliver(batch.Stream, msg)
				cursors[batch.Stream] = msg.ID
			}

			if err := r.cursors.Save(ctx, batch.Stream, cursors[batch.Stream]); err != nil {
				r.logger.Warn("relay-cursor-save-failed",
					zap.String("stream", batch.Stream),
					zap.Error(err))
			}
		}
	}
}

// deliver parses one stream entry and broadcasts it. Parsing is tolerant:
// publishers may omit fields, so absent values get zero defaults rather
// than dropping the entry.
func (r *Relay) deliver(stream string, msg Message) {
	event := parseEvent(msg)

	payload, err := json.Marshal(map[string]any{
		"stream": stream,
		"event":  event,
	})
	if err != nil {
		r.logger.Warn("relay-marshal-failed",
			zap.String("stream", stream),
			zap.String("id", msg.ID),
			zap.Error(err))
		return
	}

	r.hub.Broadcast(payload)
	RelayedTotal.WithLabelValues(stream).Inc()
}

func parseEvent(msg Message) types.Event {
	event := types.Event{
		ID:        msg.ID,
		Timestamp: time.Now().UTC(),
		Data:      map[string]any{},
	}

	if s, ok := msg.Values["type"].(string); ok {
		event.Type = s
	}
	if s, ok := msg.Values["platform"].(string); ok {
		event.Platform = s
	}
	if s, ok := msg.Values["timestamp"].(string); ok {
		if t, err := time.Parse(time.RFC3339, s); err == nil {
			event.Timestamp = t
		}
	}
	if s, ok := msg.Values["data"].(string); ok {
		var data map[string]any
		if err := json.Unmarshal([]byte(s), &data); err == nil {
			event.Data = data
		}
	}

	return event
}
