package publisher

import (
	"context"
	"encoding/base64"
	"fmt"
	"math/rand/v2"

	"github.com/redis/go-redis/v9"

	"sjsage522/listingwatch/pkg/errors"
)

// RedisPublisher spreads matches over a fixed set of Redis streams named
// <prefix>:0 to <prefix>:<count-1>. Each entry holds one field, named after
// the source, with the base64 encoded message.
type RedisPublisher struct {
	client          *redis.Client
	ctx             context.Context
	streamPrefix    string
	streamCount     int
	streamMaxLength int
}

// NewRedisPublisher creates a new Redis publisher. A stream count below one
// is read as a single stream.
func NewRedisPublisher(ctx context.Context, addr string, db int, streamPrefix string, streamCount int, streamMaxLength int) *RedisPublisher {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   db,
	})

	return &RedisPublisher{
		client:          client,
		ctx:             ctx,
		streamPrefix:    streamPrefix,
		streamCount:     max(streamCount, 1),
		streamMaxLength: streamMaxLength,
	}
}

// Streams returns the names of every stream the publisher writes to
func (p *RedisPublisher) Streams() []string {
	streams := make([]string, p.streamCount)
	for i := range streams {
		streams[i] = p.streamName(i)
	}
	return streams
}

func (p *RedisPublisher) streamName(shard int) string {
	return fmt.Sprintf("%s:%d", p.streamPrefix, shard)
}

// Publish appends the message to a randomly picked stream
func (p *RedisPublisher) Publish(key string, message []byte) error {
	return p.client.XAdd(p.ctx, &redis.XAddArgs{
		Stream: p.streamName(rand.IntN(p.streamCount)),
		Values: map[string]interface{}{
			key: base64.StdEncoding.EncodeToString(message),
		},
	}).Err()
}

// TrimStreams caps every stream at the configured maximum length. A stream
// that was never written to is left alone.
func (p *RedisPublisher) TrimStreams() error {
	for _, stream := range p.Streams() {
		if err := p.client.XTrimMaxLen(p.ctx, stream, int64(p.streamMaxLength)).Err(); err != nil {
			return errors.NewPublisher(stream, "failed to trim stream", err)
		}
	}
	return nil
}

// Ping checks the Redis connection
func (p *RedisPublisher) Ping() error {
	return p.client.Ping(p.ctx).Err()
}

// Close closes the Redis connection
func (p *RedisPublisher) Close() error {
	return p.client.Close()
}
