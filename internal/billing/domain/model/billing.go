package model

import (
	"time"

	apperrors "edwin/internal/shared/errors"
)

// Stripe event types the webhook acts on.
const (
	EventCheckoutCompleted    = "checkout.session.completed"
	EventSubscriptionCreated  = "customer.subscription.created"
	EventSubscriptionUpdated  = "customer.subscription.updated"
	EventSubscriptionDeleted  = "customer.subscription.deleted"
	EventInvoicePaymentFailed = "invoice.payment_failed"
)

// Metadata keys written on checkout sessions.
const (
	MetaWorkspaceID = "workspaceId"
	MetaPlan        = "plan"
)

// CheckoutRequest is the body of POST /workspaces/:id/billing/checkout.
type CheckoutRequest struct {
	Plan string `json:"plan"`
}

// CheckoutInput is what the gateway needs to open a checkout session.
type CheckoutInput struct {
	PriceID       string
	CustomerID    string
	CustomerEmail string
	SuccessURL    string
	CancelURL     string
	Metadata      map[string]string
}

// CheckoutSession is returned to the client, which redirects to URL.
type CheckoutSession struct {
	URL       string `json:"url"`
	SessionID string `json:"sessionId"`
}

// PortalSession is the customer portal redirect.
type PortalSession struct {
	URL string `json:"url"`
}

// WebhookEvent is the part of a verified Stripe event the webhook acts on.
type WebhookEvent struct {
	ID   string
	Type string

	Metadata       map[string]string
	CustomerID     string
	SubscriptionID string

	Status            string
	CurrentPeriodEnd  *time.Time
	CancelAtPeriodEnd bool
	PriceID           string
}

// WebhookResult reports what the webhook did with an event.
type WebhookResult struct {
	EventID   string `json:"eventId"`
	Type      string `json:"type"`
	Duplicate bool   `json:"duplicate,omitempty"`
	Ignored   bool   `json:"ignored,omitempty"`
}

var (
	ErrUnknownPlan        = apperrors.NewValidationError("plan must be pro or enterprise")
	ErrPriceNotConfigured = apperrors.NewValidationError("no price is configured for this plan")
	ErrNoCustomer         = apperrors.NewValidationError("workspace has no billing customer yet")
	ErrInvalidSignature   = apperrors.NewValidationError("invalid webhook signature")
	ErrInvalidPayload     = apperrors.NewValidationError("invalid webhook payload")
	ErrBillingDisabled    = apperrors.NewUnavailableError("billing is not configured")
)
