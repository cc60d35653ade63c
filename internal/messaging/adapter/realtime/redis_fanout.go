package realtime

import (
	"context"
	"encoding/json"
	"fmt"

	"edwin/internal/shared/logger"

	"github.com/redis/go-redis/v9"
)

// DefaultChannel carries socket events between API instances.
const DefaultChannel = "edwin:messages"

// RedisFanout relays socket events through Redis pub/sub so a socket on
// any instance receives events raised on any other.
type RedisFanout struct {
	client  *redis.Client
	channel string
	log     logger.Logger
}

// NewRedisFanout creates the fanout on channel.
func NewRedisFanout(client *redis.Client, channel string, log logger.Logger) *RedisFanout {
	if channel == "" {
		channel = DefaultChannel
	}
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &RedisFanout{client: client, channel: channel, log: log.WithComponent("messaging-fanout")}
}

// Publish sends event to every subscribed instance.
func (f *RedisFanout) Publish(ctx context.Context, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode %s event: %w", event.Type, err)
	}
	return f.client.Publish(ctx, f.channel, payload).Err()
}

// Run subscribes and hands each event to deliver until ctx is cancelled.
// ready, when non-nil, is closed once the subscription is confirmed.
func (f *RedisFanout) Run(ctx context.Context, deliver func(Event), ready chan<- struct{}) error {
	sub := f.client.Subscribe(ctx, f.channel)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", f.channel, err)
	}
	if ready != nil {
		close(ready)
	}

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			var event Event
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				f.log.Warnf("discarding malformed socket event: %v", err)
				continue
			}
			deliver(event)
		}
	}
}
