package cache

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"resource-scheduler/core/config"
	"resource-scheduler/core/constants"
	"resource-scheduler/core/logger"
)

// Cache backs the one-time OAuth state tokens exchanged during the connect
// redirect flow. States are single-use and expire after ten minutes.
type Cache interface {
	SaveOAuthState(ctx context.Context, state string, payload string) error
	// ConsumeOAuthState returns the payload and deletes the state in one
	// step. Returns ("", nil) for an unknown or expired state.
	ConsumeOAuthState(ctx context.Context, state string) (string, error)
	Close() error
}

type redisCache struct {
	client *redis.Client
}

func NewCache(cfg config.RedisConfig) (Cache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	logger.Info("Cache initialized", "addr", cfg.Addr, "db", cfg.DB)
	return &redisCache{client: client}, nil
}

func (c *redisCache) SaveOAuthState(ctx context.Context, state string, payload string) error {
	key := constants.RedisKeyOAuthState + state
	return c.client.Set(ctx, key, payload, constants.OAuthStateTTL).Err()
}

func (c *redisCache) ConsumeOAuthState(ctx context.Context, state string) (string, error) {
	key := constants.RedisKeyOAuthState + state
	payload, err := c.client.GetDel(ctx, key).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return payload, nil
}

func (c *redisCache) Close() error {
	return c.client.Close()
}
