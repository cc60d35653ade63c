// Package cache keeps a Redis copy of the settings singleton.
package cache

import (
	"context"
	"encoding/json"
	"time"

	"edwin/internal/admin/domain/model"

	"github.com/redis/go-redis/v9"
)

const settingsKey = "edwin:settings:global"

// DefaultTTL is how long a cached copy is trusted.
const DefaultTTL = 5 * time.Minute

// RedisSettingsCache implements repository.SettingsCache.
type RedisSettingsCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisSettingsCache(client *redis.Client, ttl time.Duration) *RedisSettingsCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisSettingsCache{client: client, ttl: ttl}
}

func (c *RedisSettingsCache) Get(ctx context.Context) (*model.GlobalSettings, bool, error) {
	raw, err := c.client.Get(ctx, settingsKey).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var s model.GlobalSettings
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, false, nil
	}
	s.ID = model.SettingsID
	return &s, true, nil
}

func (c *RedisSettingsCache) Set(ctx context.Context, s *model.GlobalSettings) error {
	raw, err := json.Marshal(s)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, settingsKey, raw, c.ttl).Err()
}

func (c *RedisSettingsCache) Invalidate(ctx context.Context) error {
	return c.client.Del(ctx, settingsKey).Err()
}
