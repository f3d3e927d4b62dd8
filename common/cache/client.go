package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/burakmert236/clubscore/common/config"
)

const connectTimeout = 5 * time.Second

// RedisClient owns the connection pool backing the live connection registry.
type RedisClient struct {
	client *redis.Client
	addr   string
}

func optionsFrom(cfg config.RedisConfig) *redis.Options {
	addr := cfg.Address
	if addr == "" {
		addr = "localhost:6379"
	}
	return &redis.Options{
		Addr:        addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: connectTimeout,
	}
}

// NewRedisClient fails fast when the server does not answer a PING.
func NewRedisClient(ctx context.Context, cfg config.RedisConfig) (*RedisClient, error) {
	opts := optionsFrom(cfg)
	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", opts.Addr, err)
	}

	return &RedisClient{client: client, addr: opts.Addr}, nil
}

func (r *RedisClient) Addr() string {
	return r.addr
}

func (r *RedisClient) Close() error {
	return r.client.Close()
}

func (r *RedisClient) GetClient() *redis.Client {
	return r.client
}
