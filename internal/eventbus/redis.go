package eventbus

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// streamMaxLen bounds each stream via XADD MAXLEN ~.
	streamMaxLen int64 = 10000

	// readBlock is how long XRead blocks waiting for new entries. Must
	// stay below the client read timeout.
	readBlock = 5 * time.Second

	cursorKeyPrefix = "relay:cursor:"
)

// RedisStream implements Stream and CursorStore on a single Redis
// connection, using Streams for the event log and plain keys for cursors.
type RedisStream struct {
	rdb *redis.Client
}

// NewRedisStream connects to Redis and verifies the connection with a ping.
func NewRedisStream(addr, password string) (*RedisStream, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connect to redis %s: %w", addr, err)
	}

	return &RedisStream{rdb: rdb}, nil
}

// Append adds one entry with automatic approximate trimming.
func (s *RedisStream) Append(ctx context.Context, stream string, values map[string]any) error {
	args := &redis.XAddArgs{
		Stream: stream,
		MaxLen: streamMaxLen,
		Approx: true,
		Values: values,
	}
	if err := s.rdb.XAdd(ctx, args).Err(); err != nil {
		return fmt.Errorf("stream append %s: %w", stream, err)
	}
	return nil
}

// Read issues a blocking XREAD across all cursors at once. redis.Nil
// means the block timed out with nothing new, which is not an error.
func (s *RedisStream) Read(ctx context.Context, cursors map[string]string, count int64) ([]StreamBatch, error) {
	streams := make([]string, 0, len(cursors)*2)
	ids := make([]string, 0, len(cursors))
	for stream, id := range cursors {
		streams = append(streams, stream)
		ids = append(ids, id)
	}
	streams = append(streams, ids...)

	results, err := s.rdb.XRead(ctx, &redis.XReadArgs{
		Streams: streams,
		Count:   count,
		Block:   readBlock,
	}).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("stream read: %w", err)
	}

	batches := make([]StreamBatch, 0, len(results))
	for _, res := range results {
		batch := StreamBatch{Stream: res.Stream}
		for _, msg := range res.Messages {
			batch.Messages = append(batch.Messages, Message{ID: msg.ID, Values: msg.Values})
		}
		batches = append(batches, batch)
	}
	return batches, nil
}

// Load returns the saved cursor for a stream, or "" when none exists.
func (s *RedisStream) Load(ctx context.Context, stream string) (string, error) {
	id, err := s.rdb.Get(ctx, cursorKeyPrefix+stream).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", nil
		}
		return "", fmt.Errorf("load cursor %s: %w", stream, err)
	}
	return id, nil
}

// Save records the last delivered entry id for a stream.
func (s *RedisStream) Save(ctx context.Context, stream, id string) error {
	if err := s.rdb.Set(ctx, cursorKeyPrefix+stream, id, 0).Err(); err != nil {
		return fmt.Errorf("save cursor %s: %w", stream, err)
	}
	return nil
}

// Ping reports connection health, used by the readiness probe.
func (s *RedisStream) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}

func (s *RedisStream) Close() error {
	return s.rdb.Close()
}

var (
	_ Stream      = (*RedisStream)(nil)
	_ CursorStore = (*RedisStream)(nil)
)
