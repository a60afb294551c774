package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/klauspost/compress/zstd"
	"github.com/redis/go-redis/v9"
)

// Composed order contexts run to tens of kilobytes of repetitive text per
// power per phase. They compress well, so blobs are stored zstd-compressed.

var (
	zstdEncoder, _ = zstd.NewWriter(nil)
	zstdDecoder, _ = zstd.NewReader(nil)
)

func contextKey(runID, phase, power string) string {
	return "run:" + runID + ":ctx:" + phase + ":" + power
}

// SetContext caches a composed context for one power in one phase.
func (c *Client) SetContext(ctx context.Context, runID, phase, power string, text string, ttl time.Duration) error {
	compressed := zstdEncoder.EncodeAll([]byte(text), nil)
	if err := c.rdb.Set(ctx, contextKey(runID, phase, power), compressed, ttl).Err(); err != nil {
		return fmt.Errorf("set context: %w", err)
	}
	return nil
}

// GetContext returns a cached context. The bool reports whether the key was
// present.
func (c *Client) GetContext(ctx context.Context, runID, phase, power string) (string, bool, error) {
	data, err := c.rdb.Get(ctx, contextKey(runID, phase, power)).Bytes()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get context: %w", err)
	}
	text, err := zstdDecoder.DecodeAll(data, nil)
	if err != nil {
		return "", false, fmt.Errorf("decompress context: %w", err)
	}
	return string(text), true, nil
}

// ClearRun removes every cached blob for a run, contexts and board states
// alike.
func (c *Client) ClearRun(ctx context.Context, runID string) error {
	var cursor uint64
	pattern := "run:" + runID + ":*"
	for {
		keys, next, err := c.rdb.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			return fmt.Errorf("scan run contexts: %w", err)
		}
		if len(keys) > 0 {
			if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
				return fmt.Errorf("delete run contexts: %w", err)
			}
		}
		cursor = next
		if cursor == 0 {
			return nil
		}
	}
}
