// Package stripe talks to the Stripe API.
package stripe

import (
	"context"
	"fmt"

	"edwin/internal/billing/domain/model"

	stripego "github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/client"
)

// Gateway implements repository.Gateway with a per-instance API client.
type Gateway struct {
	api *client.API
}

// NewGateway creates a client for secretKey.
func NewGateway(secretKey string) *Gateway {
	api := &client.API{}
	api.Init(secretKey, nil)
	return &Gateway{api: api}
}

// CreateCheckoutSession opens a subscription-mode checkout for one seat of
// the price. The metadata is copied onto the subscription too.
func (g *Gateway) CreateCheckoutSession(ctx context.Context, in model.CheckoutInput) (*model.CheckoutSession, error) {
	params := &stripego.CheckoutSessionParams{
		Mode: stripego.String(string(stripego.CheckoutSessionModeSubscription)),
		LineItems: []*stripego.CheckoutSessionLineItemParams{{
			Price:    stripego.String(in.PriceID),
			Quantity: stripego.Int64(1),
		}},
		SuccessURL:        stripego.String(in.SuccessURL),
		CancelURL:         stripego.String(in.CancelURL),
		ClientReferenceID: stripego.String(in.Metadata[model.MetaWorkspaceID]),
		SubscriptionData: &stripego.CheckoutSessionSubscriptionDataParams{
			Metadata: in.Metadata,
		},
	}
	if in.CustomerID != "" {
		params.Customer = stripego.String(in.CustomerID)
	} else if in.CustomerEmail != "" {
		params.CustomerEmail = stripego.String(in.CustomerEmail)
	}
	for k, v := range in.Metadata {
		params.AddMetadata(k, v)
	}
	params.Context = ctx

	s, err := g.api.CheckoutSessions.New(params)
	if err != nil {
		return nil, fmt.Errorf("stripe checkout session: %w", err)
	}
	return &model.CheckoutSession{URL: s.URL, SessionID: s.ID}, nil
}

// CreatePortalSession opens the customer billing portal.
func (g *Gateway) CreatePortalSession(ctx context.Context, customerID, returnURL string) (*model.PortalSession, error) {
	params := &stripego.BillingPortalSessionParams{
		Customer:  stripego.String(customerID),
		ReturnURL: stripego.String(returnURL),
	}
	params.Context = ctx

	s, err := g.api.BillingPortalSessions.New(params)
	if err != nil {
		return nil, fmt.Errorf("stripe portal session: %w", err)
	}
	return &model.PortalSession{URL: s.URL}, nil
}
