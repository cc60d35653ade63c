package eventbus

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"edwin/internal/shared/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventBus_SubscribePublish(t *testing.T) {
	bus := NewEventBus(nil)
	var got Event
	bus.Subscribe(EventTypeMessageCreated, func(ctx context.Context, event Event) error {
		got = event
		return nil
	})

	err := bus.Publish(context.Background(), NewBasicEventWithSource(EventTypeMessageCreated, "hello", "messaging"))
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "hello", got.Data())
	assert.Equal(t, "messaging", got.Source())
}

func TestEventBus_NoHandlers(t *testing.T) {
	bus := NewEventBus(logger.NewNopLogger())
	assert.NoError(t, bus.Publish(context.Background(), NewBasicEvent("nobody.listens", nil)))
}

func TestEventBus_AsyncPublish(t *testing.T) {
	bus := NewEventBusWithConfig(logger.NewNopLogger(), BusConfig{AsyncProcessing: true})
	ch := make(chan struct{}, 2)
	for i := 0; i < 2; i++ {
		bus.Subscribe(EventTypeMemberJoined, func(ctx context.Context, event Event) error {
			ch <- struct{}{}
			return nil
		})
	}
	require.NoError(t, bus.Publish(context.Background(), NewBasicEvent(EventTypeMemberJoined, nil)))
	assert.Len(t, ch, 2)
}

func TestEventBus_FailingHandlerDoesNotStopOthers(t *testing.T) {
	bus := NewEventBus(nil)
	var calls int32
	bus.Subscribe("ev", func(ctx context.Context, event Event) error {
		atomic.AddInt32(&calls, 1)
		return errors.New("nope")
	})
	bus.Subscribe("ev", func(ctx context.Context, event Event) error {
		atomic.AddInt32(&calls, 1)
		return nil
	})

	err := bus.Publish(context.Background(), NewBasicEvent("ev", nil))
	assert.EqualError(t, err, "nope")
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls), "handlers are never retried")
}

func TestEventBus_RecoversPanics(t *testing.T) {
	bus := NewEventBus(nil)
	bus.Subscribe("boom", func(ctx context.Context, event Event) error {
		panic("kaboom")
	})
	err := bus.Publish(context.Background(), NewBasicEvent("boom", nil))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "kaboom")
}

func TestEventBus_PublishAndForget(t *testing.T) {
	bus := NewEventBus(nil)
	done := make(chan Event, 1)
	bus.Subscribe(EventTypeSubscriptionUpdated, func(ctx context.Context, event Event) error {
		done <- event
		return ctx.Err()
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	bus.PublishAndForget(ctx, NewBasicEvent(EventTypeSubscriptionUpdated, 1))
	assert.Equal(t, 1, (<-done).Data())
}
