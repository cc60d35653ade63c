package model

import "go.mongodb.org/mongo-driver/bson/primitive"

// MemberEvent is the payload of workspace.member_joined and
// workspace.member_removed.
type MemberEvent struct {
	Workspace primitive.ObjectID   `json:"workspace"`
	User      primitive.ObjectID   `json:"user"`
	Role      string               `json:"role,omitempty"`
	Members   []primitive.ObjectID `json:"members"`
}

// SubscriptionEvent is the payload of subscription.updated.
type SubscriptionEvent struct {
	Workspace    primitive.ObjectID   `json:"workspace"`
	Subscription Subscription         `json:"subscription"`
	Members      []primitive.ObjectID `json:"members"`
}
