// Package redisclient wraps go-redis for the shared rate-limit counters.
package redisclient

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

type Client struct {
	redisdb *redis.Client
}

type Config struct {
	Addr     string
	Password string
	DB       int
}

func New(cfg Config) *Client {
	redisdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})

	return &Client{redisdb: redisdb}
}

// this ping function checks redis connectivity

func (c *Client) Ping(ctx context.Context) error {
	return c.redisdb.Ping(ctx).Err()
}

func (c *Client) Close() error {
	return c.redisdb.Close()
}

// Hit increments key and starts its expiry on the first hit of a window, so
// every API instance shares one fixed-window counter. Only INCR, PTTL and
// PEXPIRE are used, which every Redis version supports.
func (c *Client) Hit(ctx context.Context, key string, window time.Duration) (int, time.Time, error) {
	var (
		incr *redis.IntCmd
		ttl  *redis.DurationCmd
	)

	_, err := c.redisdb.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, key)
		ttl = pipe.PTTL(ctx, key)
		return nil
	})

	if err != nil {
		return 0, time.Time{}, fmt.Errorf("redis hit %s: %w", key, err)
	}

	remaining := ttl.Val()

	if needsExpiry(incr.Val(), remaining) {
		if err := c.redisdb.PExpire(ctx, key, window).Err(); err != nil {
			return 0, time.Time{}, fmt.Errorf("redis expire %s: %w", key, err)
		}
		remaining = window
	}

	return int(incr.Val()), time.Now().Add(remaining), nil
}

// needsExpiry is true for the first hit of a window, and for a counter left
// without a TTL when an earlier PEXPIRE never ran.
func needsExpiry(count int64, ttl time.Duration) bool {
	return count == 1 || ttl < 0
}
