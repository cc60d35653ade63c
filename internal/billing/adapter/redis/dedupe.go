// Package redis keeps webhook delivery state in Redis.
package redis

import (
	"context"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

const keyPrefix = "edwin:stripe:event:"

// EventDeduper implements repository.EventDeduper with SETNX.
type EventDeduper struct {
	client *goredis.Client
	ttl    time.Duration
}

func NewEventDeduper(client *goredis.Client, ttl time.Duration) *EventDeduper {
	return &EventDeduper{client: client, ttl: ttl}
}

func (d *EventDeduper) Claim(ctx context.Context, id string) (bool, error) {
	return d.client.SetNX(ctx, keyPrefix+id, time.Now().UTC().Format(time.RFC3339), d.ttl).Result()
}

func (d *EventDeduper) Release(ctx context.Context, id string) error {
	return d.client.Del(ctx, keyPrefix+id).Err()
}
