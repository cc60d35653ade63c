package repository

import (
	"context"

	"edwin/internal/billing/domain/model"
)

// Gateway is the payment provider.
type Gateway interface {
	CreateCheckoutSession(ctx context.Context, in model.CheckoutInput) (*model.CheckoutSession, error)
	CreatePortalSession(ctx context.Context, customerID, returnURL string) (*model.PortalSession, error)
}

// EventDeduper remembers processed webhook event ids.
type EventDeduper interface {
	// Claim records id and reports whether this is its first delivery.
	Claim(ctx context.Context, id string) (bool, error)
	// Release forgets id so a redelivery is processed again.
	Release(ctx context.Context, id string) error
}

// WebhookVerifier authenticates and decodes provider callbacks.
type WebhookVerifier interface {
	Parse(payload []byte, signature string) (*model.WebhookEvent, error)
}
