package monitor

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisCounter implements Counter on a fixed window: the key expires one
// window after its first increment, so the count resets on a window boundary
// rather than sliding. Good enough for advisory thresholds.
type RedisCounter struct {
	client *redis.Client
}

// NewRedisCounter creates a new RedisCounter
func NewRedisCounter(client *redis.Client) *RedisCounter {
	return &RedisCounter{client: client}
}

// Incr bumps the key and returns the count inside the current window.
func (c *RedisCounter) Incr(ctx context.Context, key string, window time.Duration) (int64, error) {
	pipe := c.client.TxPipeline()
	incr := pipe.Incr(ctx, key)
	// NX: only arm the expiry on the increment that created the key.
	pipe.ExpireNX(ctx, key, window)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("incr %s: %w", key, err)
	}
	return incr.Val(), nil
}
