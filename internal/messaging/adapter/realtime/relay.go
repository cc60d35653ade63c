package realtime

import (
	"context"

	"edwin/internal/messaging/domain/model"
	"edwin/internal/shared/eventbus"
	wsmodel "edwin/internal/workspace/domain/model"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Relay turns domain events into socket frames. With a fanout the frames
// go through Redis; without one they are delivered to this instance's hub.
type Relay struct {
	hub    *Hub
	fanout *RedisFanout
}

// NewRelay creates a relay. fanout may be nil.
func NewRelay(hub *Hub, fanout *RedisFanout) *Relay {
	return &Relay{hub: hub, fanout: fanout}
}

// Subscribe registers the relay for every event sockets receive.
func (r *Relay) Subscribe(bus eventbus.EventBusInterface) {
	bus.Subscribe(eventbus.EventTypeMessageCreated, r.Handle)
	bus.Subscribe(eventbus.EventTypeMemberJoined, r.Handle)
	bus.Subscribe(eventbus.EventTypeSubscriptionUpdated, r.Handle)
}

type memberJoinedFrame struct {
	Workspace primitive.ObjectID `json:"workspace"`
	User      primitive.ObjectID `json:"user"`
	Role      string             `json:"role"`
}

type subscriptionFrame struct {
	Workspace primitive.ObjectID `json:"workspace"`
	Plan      string             `json:"plan"`
	Status    string             `json:"status"`
}

// Handle is an eventbus.Handler. Payloads it does not know are ignored.
func (r *Relay) Handle(ctx context.Context, event eventbus.Event) error {
	var (
		data       interface{}
		recipients []primitive.ObjectID
	)
	switch p := event.Data().(type) {
	case model.MessageEvent:
		data, recipients = p.Message, p.Recipients
	case wsmodel.MemberEvent:
		data, recipients = memberJoinedFrame{Workspace: p.Workspace, User: p.User, Role: p.Role}, p.Members
	case wsmodel.SubscriptionEvent:
		data = subscriptionFrame{Workspace: p.Workspace, Plan: p.Subscription.Plan, Status: p.Subscription.Status}
		recipients = p.Members
	default:
		return nil
	}
	if len(recipients) == 0 {
		return nil
	}

	out, err := NewEvent(event.Type(), data, recipients)
	if err != nil {
		return err
	}
	if r.fanout == nil {
		r.hub.Deliver(out)
		return nil
	}
	return r.fanout.Publish(ctx, out)
}
