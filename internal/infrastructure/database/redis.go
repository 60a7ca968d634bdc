package database

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/coffeeisafruit/jv-matcher/internal/config"
)

// NewRedisClient opens the connection the oracle's CachingOracle wraps
// (§5's memoization requirement).
func NewRedisClient(cfg *config.RedisConfig) (*redis.Client, error) {
	// Short read/write timeouts on purpose: a slow or unreachable cache is
	// a fallback path (the oracle degrades to an uncached call), not a
	// failure worth blocking a scoring pass on.
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.GetAddr(),
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 5,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// Redis is an optional dependency (container.go logs a warning and
	// disables memoization on failure); the ping here still runs so that
	// failure decision is made once, at boot, instead of on every batch.
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return client, nil
}
