package eventbus

import "context"

// NullStream discards appends and reads nothing. Used when no Redis is
// configured: publishing stays best-effort, so trades proceed without an
// event log.
type NullStream struct{}

func NewNullStream() *NullStream { return &NullStream{} }

func (*NullStream) Append(ctx context.Context, stream string, values map[string]any) error {
	return nil
}

func (*NullStream) Read(ctx context.Context, cursors map[string]string, count int64) ([]StreamBatch, error) {
	return nil, nil
}

func (*NullStream) Close() error { return nil }

var _ Stream = (*NullStream)(nil)
