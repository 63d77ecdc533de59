package redisclient

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"merchant-notification-service/pkg/config"
)

// Client wraps the go-redis client used for the candidate cache.
type Client struct {
	rdb *redis.Client
}

// New dials Redis and verifies the connection with a ping.
func New(cfg config.RedisConfig) (*Client, error) {
	opts := &redis.Options{
		Addr:         cfg.GetRedisAddr(),
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  orDefault(cfg.DialTimeout, 5*time.Second),
		ReadTimeout:  orDefault(cfg.ReadTimeout, 3*time.Second),
		WriteTimeout: orDefault(cfg.WriteTimeout, 3*time.Second),
		PoolSize:     10,
		MinIdleConns: cfg.MinIdleConns,
	}
	if cfg.PoolSize > 0 {
		opts.PoolSize = cfg.PoolSize
	}
	rdb := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), opts.DialTimeout)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping %s failed: %w", opts.Addr, err)
	}
	return &Client{rdb: rdb}, nil
}

// Raw returns the underlying *redis.Client.
func (c *Client) Raw() *redis.Client {
	return c.rdb
}

func (c *Client) Close() error {
	if c == nil || c.rdb == nil {
		return nil
	}
	return c.rdb.Close()
}

func orDefault(d, def time.Duration) time.Duration {
	if d > 0 {
		return d
	}
	return def
}
