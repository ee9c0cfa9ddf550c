// Package eventbus appends domain events to named append-only streams and
// relays them to live websocket subscribers. Publishing is best-effort: a
// failed append is logged and swallowed so event delivery can never fail
// the trade that triggered it. The relay delivers at-least-once; consumers
// that need exactly-once effects must deduplicate by event id.
package eventbus

import "context"

// Message is a single stream entry.
type Message struct {
	ID     string
	Values map[string]any
}

// StreamBatch groups the messages read from one stream.
type StreamBatch struct {
	Stream   string
	Messages []Message
}

// Stream is an append-only, cursor-addressable event log.
type Stream interface {
	// Append adds one entry to the named stream.
	Append(ctx context.Context, stream string, values map[string]any) error

	// Read returns entries after the given per-stream cursors. It blocks
	// up to the implementation's poll interval and returns an empty slice
	// when nothing new arrived.
	Read(ctx context.Context, cursors map[string]string, count int64) ([]StreamBatch, error)

	// Close releases the underlying connection.
	Close() error
}

// CursorStore persists per-stream relay cursors across restarts.
type CursorStore interface {
	// Load returns the saved cursor for a stream, or "" when none exists.
	Load(ctx context.Context, stream string) (string, error)

	// Save records the last delivered entry id for a stream.
	Save(ctx context.Context, stream, id string) error
}

// Broadcaster fans a serialized event out to connected subscribers.
type Broadcaster interface {
	Broadcast(data []byte)
}
