package stripe

import (
	"encoding/json"
	"time"

	"edwin/internal/billing/domain/model"

	stripego "github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/webhook"
)

// Verifier checks webhook signatures.
type Verifier struct {
	secret string
}

func NewVerifier(secret string) *Verifier {
	return &Verifier{secret: secret}
}

// Parse verifies the Stripe-Signature header and decodes the object of the
// event types that matter. Other types come back with only ID and Type set.
func (v *Verifier) Parse(payload []byte, signature string) (*model.WebhookEvent, error) {
	evt, err := webhook.ConstructEventWithOptions(payload, signature, v.secret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		return nil, model.ErrInvalidSignature
	}

	out := &model.WebhookEvent{ID: evt.ID, Type: string(evt.Type)}
	if evt.Data == nil {
		return out, nil
	}

	switch out.Type {
	case model.EventCheckoutCompleted:
		var s stripego.CheckoutSession
		if err := json.Unmarshal(evt.Data.Raw, &s); err != nil {
			return nil, model.ErrInvalidPayload
		}
		out.Metadata = s.Metadata
		if s.Customer != nil {
			out.CustomerID = s.Customer.ID
		}
		if s.Subscription != nil {
			out.SubscriptionID = s.Subscription.ID
		}

	case model.EventSubscriptionCreated, model.EventSubscriptionUpdated, model.EventSubscriptionDeleted:
		var s stripego.Subscription
		if err := json.Unmarshal(evt.Data.Raw, &s); err != nil {
			return nil, model.ErrInvalidPayload
		}
		out.SubscriptionID = s.ID
		out.Status = string(s.Status)
		out.CancelAtPeriodEnd = s.CancelAtPeriodEnd
		out.Metadata = s.Metadata
		if s.Customer != nil {
			out.CustomerID = s.Customer.ID
		}
		if s.CurrentPeriodEnd > 0 {
			end := time.Unix(s.CurrentPeriodEnd, 0).UTC()
			out.CurrentPeriodEnd = &end
		}
		if s.Items != nil && len(s.Items.Data) > 0 && s.Items.Data[0].Price != nil {
			out.PriceID = s.Items.Data[0].Price.ID
		}

	case model.EventInvoicePaymentFailed:
		var inv stripego.Invoice
		if err := json.Unmarshal(evt.Data.Raw, &inv); err != nil {
			return nil, model.ErrInvalidPayload
		}
		if inv.Customer != nil {
			out.CustomerID = inv.Customer.ID
		}
		if inv.Subscription != nil {
			out.SubscriptionID = inv.Subscription.ID
		}
	}
	return out, nil
}
