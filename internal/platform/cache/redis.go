// Package cache dials the Redis instance backing the filing report cache.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// dialTimeout bounds the startup ping so a missing Redis fails fast and
// the caller can fall back to uncached report builds.
const dialTimeout = 3 * time.Second

// New dials Redis at addr and verifies the connection. The pool is sized
// for the report cache workload: a few GET/SET/INCR round trips per
// filing request, no pipelines or scans.
func New(ctx context.Context, addr string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		PoolSize:     8,
		MinIdleConns: 2,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})

	ctx, cancel := context.WithTimeout(ctx, dialTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("platform/cache: ping %s: %w", addr, err)
	}
	return client, nil
}
