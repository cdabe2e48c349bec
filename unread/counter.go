// Package unread keeps a per-recipient unread notification counter in
// Redis. It is a cache in front of the durable notification store:
// incremented on fan-out, reset by mark-all-read, and safe to lose.
package unread

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

type Counter struct {
	client *redis.Client
	prefix string
}

// NewCounter connects to Redis and verifies the connection.
func NewCounter(redisURL string) (*Counter, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	return NewCounterWithClient(client), nil
}

// NewCounterWithClient wraps an existing Redis client.
func NewCounterWithClient(client *redis.Client) *Counter {
	return &Counter{client: client, prefix: "unread:"}
}

func (c *Counter) key(userID string) string {
	return c.prefix + userID
}

func (c *Counter) Incr(ctx context.Context, userID string) error {
	return c.client.Incr(ctx, c.key(userID)).Err()
}

// Reset clears the counter, called when the recipient marks all
// notifications read.
func (c *Counter) Reset(ctx context.Context, userID string) error {
	return c.client.Del(ctx, c.key(userID)).Err()
}

// Get returns the current unread count; a missing key counts as zero.
func (c *Counter) Get(ctx context.Context, userID string) (int64, error) {
	n, err := c.client.Get(ctx, c.key(userID)).Int64()
	if err == redis.Nil {
		return 0, nil
	}
	return n, err
}

func (c *Counter) Close() error {
	return c.client.Close()
}
