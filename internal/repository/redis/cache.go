package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Rrens/chatbot-pro/internal/domain"
	"github.com/redis/go-redis/v9"
)

const configCachePrefix = "chatbot:config:"

// ConfigCache caches public chatbot configs by lookup code
type ConfigCache struct {
	client *Client
	ttl    time.Duration
}

// NewConfigCache creates a new config cache
func NewConfigCache(client *Client, ttl time.Duration) *ConfigCache {
	return &ConfigCache{client: client, ttl: ttl}
}

func configKey(lookupCode string) string {
	return configCachePrefix + lookupCode
}

// Get returns the cached config, or nil on a cache miss
func (c *ConfigCache) Get(ctx context.Context, lookupCode string) (*domain.PublicConfig, error) {
	data, err := c.client.rdb.Get(ctx, configKey(lookupCode)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read cached config: %w", err)
	}

	var cfg domain.PublicConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// Set caches the config of a chatbot
func (c *ConfigCache) Set(ctx context.Context, lookupCode string, cfg *domain.PublicConfig) error {
	data, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	return c.client.rdb.Set(ctx, configKey(lookupCode), data, c.ttl).Err()
}

// Invalidate removes the cached config of a chatbot
func (c *ConfigCache) Invalidate(ctx context.Context, lookupCode string) error {
	return c.client.rdb.Del(ctx, configKey(lookupCode)).Err()
}
