// Package redis implements the Redis-backed caches for run artifacts:
// composed order contexts and per-phase board snapshots.
package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Client wraps the Redis connection behind the cache operations. All blobs
// live under a run-scoped keyspace so a finished run can be swept in one
// pass.
type Client struct {
	rdb *redis.Client
}

// NewClient connects to the cache from a redis:// URL and verifies it is
// reachable before the run starts.
func NewClient(redisURL string) (*Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse cache URL: %w", err)
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("ping cache: %w", err)
	}
	return &Client{rdb: rdb}, nil
}

// NewClientFromPool wraps an existing redis.Client for use in tests.
func NewClientFromPool(rdb *redis.Client) *Client {
	return &Client{rdb: rdb}
}

// Close closes the Redis connection.
func (c *Client) Close() error {
	return c.rdb.Close()
}
