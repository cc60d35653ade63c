package usecase

import (
	"context"
	"strings"
	"time"

	"edwin/internal/billing/domain/model"
	"edwin/internal/billing/domain/repository"
	"edwin/internal/shared/database"
	apperrors "edwin/internal/shared/errors"
	"edwin/internal/shared/logger"
	wsmodel "edwin/internal/workspace/domain/model"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SubscriptionStore reads and writes workspace subscriptions.
type SubscriptionStore interface {
	RequireManager(ctx context.Context, workspaceID, userID primitive.ObjectID) (*wsmodel.Workspace, error)
	ByID(ctx context.Context, id primitive.ObjectID) (*wsmodel.Workspace, error)
	BySubscriptionID(ctx context.Context, subscriptionID string) (*wsmodel.Workspace, error)
	ByCustomerID(ctx context.Context, customerID string) (*wsmodel.Workspace, error)
	Save(ctx context.Context, workspaceID primitive.ObjectID, sub wsmodel.Subscription) error
}

// Prices maps plans to provider price ids and back.
type Prices interface {
	PriceForPlan(plan string) string
	PlanForPrice(priceID string) string
}

// URLs are the redirect targets handed to the provider.
type URLs struct {
	Success      string
	Cancel       string
	PortalReturn string
}

// BillingUsecase runs checkout and keeps subscriptions in sync with the
// provider's webhooks.
type BillingUsecase struct {
	gateway  repository.Gateway
	verifier repository.WebhookVerifier
	dedupe   repository.EventDeduper
	store    SubscriptionStore
	prices   Prices
	urls     URLs
	log      logger.Logger
}

// NewBillingUsecase wires billing. A nil gateway disables checkout and the
// portal; a nil dedupe processes every delivery.
func NewBillingUsecase(
	gateway repository.Gateway,
	verifier repository.WebhookVerifier,
	dedupe repository.EventDeduper,
	store SubscriptionStore,
	prices Prices,
	urls URLs,
	log logger.Logger,
) *BillingUsecase {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &BillingUsecase{
		gateway:  gateway,
		verifier: verifier,
		dedupe:   dedupe,
		store:    store,
		prices:   prices,
		urls:     urls,
		log:      log.WithComponent("billing"),
	}
}

// Checkout opens a subscription checkout for a paid plan. Only workspace
// owners and admins may start one.
func (uc *BillingUsecase) Checkout(ctx context.Context, workspaceID, callerID primitive.ObjectID, callerEmail string, req model.CheckoutRequest) (*model.CheckoutSession, error) {
	if uc.gateway == nil {
		return nil, model.ErrBillingDisabled
	}
	plan := strings.ToLower(strings.TrimSpace(req.Plan))
	if plan != wsmodel.PlanPro && plan != wsmodel.PlanEnterprise {
		return nil, model.ErrUnknownPlan
	}
	price := uc.prices.PriceForPlan(plan)
	if price == "" {
		return nil, model.ErrPriceNotConfigured
	}
	ws, err := uc.store.RequireManager(ctx, workspaceID, callerID)
	if err != nil {
		return nil, err
	}

	session, err := uc.gateway.CreateCheckoutSession(ctx, model.CheckoutInput{
		PriceID:       price,
		CustomerID:    ws.Subscription.StripeCustomerID,
		CustomerEmail: callerEmail,
		SuccessURL:    uc.urls.Success,
		CancelURL:     uc.urls.Cancel,
		Metadata: map[string]string{
			model.MetaWorkspaceID: ws.ID.Hex(),
			model.MetaPlan:        plan,
		},
	})
	if err != nil {
		return nil, apperrors.NewUnavailableError("payment provider unavailable").WithCause(err)
	}
	uc.log.WithContext(ctx).WithFields(map[string]interface{}{
		"workspace": ws.ID.Hex(),
		"plan":      plan,
		"session":   session.SessionID,
	}).Info("checkout session created")
	return session, nil
}

// Portal opens the provider's customer portal for a workspace that already
// has a customer.
func (uc *BillingUsecase) Portal(ctx context.Context, workspaceID, callerID primitive.ObjectID) (*model.PortalSession, error) {
	if uc.gateway == nil {
		return nil, model.ErrBillingDisabled
	}
	ws, err := uc.store.RequireManager(ctx, workspaceID, callerID)
	if err != nil {
		return nil, err
	}
	if ws.Subscription.StripeCustomerID == "" {
		return nil, model.ErrNoCustomer
	}
	session, err := uc.gateway.CreatePortalSession(ctx, ws.Subscription.StripeCustomerID, uc.urls.PortalReturn)
	if err != nil {
		return nil, apperrors.NewUnavailableError("payment provider unavailable").WithCause(err)
	}
	return session, nil
}

// HandleWebhook verifies and applies one provider event. Redeliveries of an
// event that was already applied are acknowledged without side effects. A
// processing error releases the claim so the provider's retry runs again.
func (uc *BillingUsecase) HandleWebhook(ctx context.Context, payload []byte, signature string) (*model.WebhookResult, error) {
	if uc.verifier == nil {
		return nil, model.ErrBillingDisabled
	}
	evt, err := uc.verifier.Parse(payload, signature)
	if err != nil {
		uc.log.WithContext(ctx).Warnf("rejected webhook: %v", err)
		return nil, err
	}
	result := &model.WebhookResult{EventID: evt.ID, Type: evt.Type}
	log := uc.log.WithContext(ctx).WithFields(map[string]interface{}{"event": evt.ID, "type": evt.Type})

	if uc.dedupe != nil {
		first, err := uc.dedupe.Claim(ctx, evt.ID)
		if err != nil {
			log.Warnf("event dedupe unavailable, processing anyway: %v", err)
		} else if !first {
			log.Info("duplicate webhook event acknowledged")
			result.Duplicate = true
			return result, nil
		}
	}

	handled, err := uc.apply(ctx, evt, log)
	if err != nil {
		if uc.dedupe != nil {
			if rerr := uc.dedupe.Release(context.WithoutCancel(ctx), evt.ID); rerr != nil {
				log.Warnf("failed to release event claim: %v", rerr)
			}
		}
		log.Errorf("webhook processing failed: %v", err)
		return nil, err
	}
	result.Ignored = !handled
	return result, nil
}

// apply reports false for event types that are not acted on and for events
// whose workspace cannot be found.
func (uc *BillingUsecase) apply(ctx context.Context, evt *model.WebhookEvent, log logger.Logger) (bool, error) {
	switch evt.Type {
	case model.EventCheckoutCompleted:
		return uc.checkoutCompleted(ctx, evt, log)
	case model.EventSubscriptionCreated, model.EventSubscriptionUpdated:
		return uc.subscriptionChanged(ctx, evt, log)
	case model.EventSubscriptionDeleted:
		return uc.subscriptionDeleted(ctx, evt, log)
	case model.EventInvoicePaymentFailed:
		return uc.paymentFailed(ctx, evt, log)
	default:
		log.Debug("webhook event ignored")
		return false, nil
	}
}

func (uc *BillingUsecase) checkoutCompleted(ctx context.Context, evt *model.WebhookEvent, log logger.Logger) (bool, error) {
	id, err := database.ParseObjectID(model.MetaWorkspaceID, evt.Metadata[model.MetaWorkspaceID])
	if err != nil {
		log.Warn("checkout session without a workspace id")
		return false, nil
	}
	ws, err := uc.store.ByID(ctx, id)
	if missing, err := uc.missing(err, log); missing || err != nil {
		return false, err
	}

	sub := ws.Subscription
	if plan := evt.Metadata[model.MetaPlan]; wsmodel.ValidPlan(plan) {
		sub.Plan = plan
	}
	sub.Status = wsmodel.StatusActive
	sub.StripeCustomerID = evt.CustomerID
	sub.StripeSubscriptionID = evt.SubscriptionID
	return uc.save(ctx, ws, sub, log)
}

func (uc *BillingUsecase) subscriptionChanged(ctx context.Context, evt *model.WebhookEvent, log logger.Logger) (bool, error) {
	ws, err := uc.bySubscription(ctx, evt)
	if missing, err := uc.missing(err, log); missing || err != nil {
		return false, err
	}

	sub := ws.Subscription
	sub.StripeSubscriptionID = evt.SubscriptionID
	if evt.CustomerID != "" {
		sub.StripeCustomerID = evt.CustomerID
	}
	sub.Status = evt.Status
	sub.CurrentPeriodEnd = evt.CurrentPeriodEnd
	sub.CancelAtPeriodEnd = evt.CancelAtPeriodEnd
	if plan := uc.prices.PlanForPrice(evt.PriceID); plan != "" {
		sub.Plan = plan
	} else if evt.PriceID != "" {
		log.Warnf("unknown price %s, plan left as %s", evt.PriceID, sub.Plan)
	}
	return uc.save(ctx, ws, sub, log)
}

func (uc *BillingUsecase) subscriptionDeleted(ctx context.Context, evt *model.WebhookEvent, log logger.Logger) (bool, error) {
	ws, err := uc.bySubscription(ctx, evt)
	if missing, err := uc.missing(err, log); missing || err != nil {
		return false, err
	}

	sub := ws.Subscription
	sub.Plan = wsmodel.PlanFree
	sub.Status = wsmodel.StatusCanceled
	sub.StripeSubscriptionID = ""
	sub.CurrentPeriodEnd = nil
	sub.CancelAtPeriodEnd = false
	return uc.save(ctx, ws, sub, log)
}

func (uc *BillingUsecase) paymentFailed(ctx context.Context, evt *model.WebhookEvent, log logger.Logger) (bool, error) {
	ws, err := uc.bySubscription(ctx, evt)
	if missing, err := uc.missing(err, log); missing || err != nil {
		return false, err
	}
	sub := ws.Subscription
	sub.Status = wsmodel.StatusPastDue
	return uc.save(ctx, ws, sub, log)
}

// bySubscription finds the workspace by subscription id, falling back to the
// customer id.
func (uc *BillingUsecase) bySubscription(ctx context.Context, evt *model.WebhookEvent) (*wsmodel.Workspace, error) {
	if evt.SubscriptionID != "" {
		ws, err := uc.store.BySubscriptionID(ctx, evt.SubscriptionID)
		if err == nil || !apperrors.IsNotFound(err) {
			return ws, err
		}
	}
	if evt.CustomerID == "" {
		return nil, wsmodel.ErrWorkspaceNotFound
	}
	return uc.store.ByCustomerID(ctx, evt.CustomerID)
}

// missing turns a not-found lookup into an acknowledged no-op.
func (uc *BillingUsecase) missing(err error, log logger.Logger) (bool, error) {
	if err == nil {
		return false, nil
	}
	if apperrors.IsNotFound(err) {
		log.Warn("no workspace matches webhook event")
		return true, nil
	}
	return false, err
}

func (uc *BillingUsecase) save(ctx context.Context, ws *wsmodel.Workspace, sub wsmodel.Subscription, log logger.Logger) (bool, error) {
	if err := uc.store.Save(ctx, ws.ID, sub); err != nil {
		return false, err
	}
	log.WithFields(map[string]interface{}{
		"workspace": ws.ID.Hex(),
		"plan":      sub.Plan,
		"status":    sub.Status,
	}).Info("subscription updated")
	return true, nil
}

// DedupeTTL converts the configured hours, defaulting to three days.
func DedupeTTL(hours int) time.Duration {
	if hours <= 0 {
		hours = 72
	}
	return time.Duration(hours) * time.Hour
}
