package eventbus

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"edwin/internal/shared/logger"
)

// Domain event types published across modules.
const (
	EventTypeMessageCreated      = "message.created"
	EventTypeMemberJoined        = "workspace.member_joined"
	EventTypeMemberRemoved       = "workspace.member_removed"
	EventTypeSubscriptionUpdated = "subscription.updated"
)

// Event is a domain event with an opaque payload.
type Event interface {
	Type() string
	Data() interface{}
	Timestamp() time.Time
	Source() string
}

// Handler reacts to one event.
type Handler func(ctx context.Context, event Event) error

// EventBusInterface is what publishing and subscribing modules depend on.
type EventBusInterface interface {
	Subscribe(eventType string, handler Handler)
	Publish(ctx context.Context, event Event) error
	PublishAndForget(ctx context.Context, event Event)
}

// BusConfig holds configuration for the event bus
type BusConfig struct {
	// AsyncProcessing runs the handlers of one event concurrently.
	AsyncProcessing bool
}

// EventBus is an in-process pub/sub. Delivery is at most once: a failing
// handler is logged and reported, never retried.
type EventBus struct {
	mu       sync.RWMutex
	handlers map[string][]Handler
	logger   logger.Logger
	config   BusConfig
}

// NewEventBus creates a bus that runs handlers one after another.
func NewEventBus(log logger.Logger) *EventBus {
	return NewEventBusWithConfig(log, BusConfig{})
}

// NewEventBusWithConfig creates a new event bus with custom configuration
func NewEventBusWithConfig(log logger.Logger, config BusConfig) *EventBus {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &EventBus{
		handlers: make(map[string][]Handler),
		logger:   log.WithComponent("eventbus"),
		config:   config,
	}
}

// Subscribe adds a handler for a specific event type
func (eb *EventBus) Subscribe(eventType string, handler Handler) {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	eb.handlers[eventType] = append(eb.handlers[eventType], handler)
	eb.logger.Debugf("Subscribed handler for event type: %s", eventType)
}

// Publish delivers event to every handler of its type and joins their
// errors. One failing handler does not stop the others.
func (eb *EventBus) Publish(ctx context.Context, event Event) error {
	eb.mu.RLock()
	handlers := eb.handlers[event.Type()]
	eb.mu.RUnlock()

	if len(handlers) == 0 {
		return nil
	}

	errs := make([]error, len(handlers))
	if !eb.config.AsyncProcessing {
		for i, h := range handlers {
			errs[i] = eb.run(ctx, event, h)
		}
		return errors.Join(errs...)
	}

	var wg sync.WaitGroup
	for i, h := range handlers {
		wg.Add(1)
		go func(i int, h Handler) {
			defer wg.Done()
			errs[i] = eb.run(ctx, event, h)
		}(i, h)
	}
	wg.Wait()
	return errors.Join(errs...)
}

// run calls h, turning a panic into an error.
func (eb *EventBus) run(ctx context.Context, event Event, h Handler) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler for %s panicked: %v", event.Type(), r)
		}
		if err != nil {
			eb.logger.WithContext(ctx).Errorf("event handler failed: %v", err)
		}
	}()
	return h(ctx, event)
}

// PublishAndForget publishes on a separate goroutine. The caller's context
// is detached so handlers outlive the request.
func (eb *EventBus) PublishAndForget(ctx context.Context, event Event) {
	ctx = context.WithoutCancel(ctx)
	go func() {
		_ = eb.Publish(ctx, event)
	}()
}

// BasicEvent implements the Event interface
type BasicEvent struct {
	eventType string
	data      interface{}
	timestamp time.Time
	source    string
}

// NewBasicEvent creates an event with an unknown source.
func NewBasicEvent(eventType string, data interface{}) Event {
	return NewBasicEventWithSource(eventType, data, "unknown")
}

// NewBasicEventWithSource creates a new basic event with source
func NewBasicEventWithSource(eventType string, data interface{}, source string) Event {
	return &BasicEvent{
		eventType: eventType,
		data:      data,
		timestamp: time.Now(),
		source:    source,
	}
}

func (e *BasicEvent) Type() string         { return e.eventType }
func (e *BasicEvent) Data() interface{}    { return e.data }
func (e *BasicEvent) Timestamp() time.Time { return e.timestamp }
func (e *BasicEvent) Source() string       { return e.source }
