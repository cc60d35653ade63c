package usecase_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	billingredis "edwin/internal/billing/adapter/redis"
	"edwin/internal/billing/adapter/stripe"
	"edwin/internal/billing/domain/model"
	"edwin/internal/billing/usecase"
	apperrors "edwin/internal/shared/errors"
	wsmodel "edwin/internal/workspace/domain/model"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"github.com/stripe/stripe-go/v79/webhook"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const webhookSecret = "whsec_test"

type prices struct{}

func (prices) PriceForPlan(plan string) string {
	if plan == wsmodel.PlanPro {
		return "price_pro"
	}
	return ""
}

func (prices) PlanForPrice(id string) string {
	if id == "price_pro" {
		return wsmodel.PlanPro
	}
	return ""
}

type mockGateway struct {
	mock.Mock
}

func (m *mockGateway) CreateCheckoutSession(ctx context.Context, in model.CheckoutInput) (*model.CheckoutSession, error) {
	args := m.Called(ctx, in)
	if s, ok := args.Get(0).(*model.CheckoutSession); ok {
		return s, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockGateway) CreatePortalSession(ctx context.Context, customerID, returnURL string) (*model.PortalSession, error) {
	args := m.Called(ctx, customerID, returnURL)
	if s, ok := args.Get(0).(*model.PortalSession); ok {
		return s, args.Error(1)
	}
	return nil, args.Error(1)
}

type memStore struct {
	mu      sync.Mutex
	rows    map[primitive.ObjectID]*wsmodel.Workspace
	manager primitive.ObjectID
	saveErr error
	saves   int
}

func (m *memStore) RequireManager(_ context.Context, id, userID primitive.ObjectID) (*wsmodel.Workspace, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ws, ok := m.rows[id]
	if !ok {
		return nil, wsmodel.ErrWorkspaceNotFound
	}
	if userID != m.manager {
		return nil, apperrors.NewAuthorizationError("owner or admin role required")
	}
	return ws, nil
}

func (m *memStore) ByID(_ context.Context, id primitive.ObjectID) (*wsmodel.Workspace, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ws, ok := m.rows[id]
	if !ok {
		return nil, wsmodel.ErrWorkspaceNotFound
	}
	return ws, nil
}

func (m *memStore) find(match func(wsmodel.Subscription) bool) (*wsmodel.Workspace, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, ws := range m.rows {
		if match(ws.Subscription) {
			return ws, nil
		}
	}
	return nil, wsmodel.ErrWorkspaceNotFound
}

func (m *memStore) BySubscriptionID(_ context.Context, id string) (*wsmodel.Workspace, error) {
	return m.find(func(s wsmodel.Subscription) bool { return s.StripeSubscriptionID == id })
}

func (m *memStore) ByCustomerID(_ context.Context, id string) (*wsmodel.Workspace, error) {
	return m.find(func(s wsmodel.Subscription) bool { return s.StripeCustomerID == id })
}

func (m *memStore) Save(_ context.Context, id primitive.ObjectID, sub wsmodel.Subscription) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saves++
	m.rows[id].Subscription = sub
	return nil
}

type BillingUsecaseTestSuite struct {
	suite.Suite
	ctx     context.Context
	mr      *miniredis.Miniredis
	gateway *mockGateway
	store   *memStore
	ws      *wsmodel.Workspace
	owner   primitive.ObjectID
	uc      *usecase.BillingUsecase
}

func (s *BillingUsecaseTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.mr = miniredis.RunT(s.T())
	client := redis.NewClient(&redis.Options{Addr: s.mr.Addr()})
	s.T().Cleanup(func() { _ = client.Close() })

	s.owner = primitive.NewObjectID()
	s.ws = &wsmodel.Workspace{ID: primitive.NewObjectID(), Subscription: wsmodel.DefaultSubscription(wsmodel.PlanFree)}
	s.store = &memStore{rows: map[primitive.ObjectID]*wsmodel.Workspace{s.ws.ID: s.ws}, manager: s.owner}
	s.gateway = new(mockGateway)
	s.uc = usecase.NewBillingUsecase(s.gateway, stripe.NewVerifier(webhookSecret),
		billingredis.NewEventDeduper(client, usecase.DedupeTTL(0)), s.store, prices{},
		usecase.URLs{Success: "https://app/ok", Cancel: "https://app/cancel", PortalReturn: "https://app/billing"}, nil)
}

func TestBillingUsecaseTestSuite(t *testing.T) {
	suite.Run(t, new(BillingUsecaseTestSuite))
}

func (s *BillingUsecaseTestSuite) deliver(id, eventType, object string) (*model.WebhookResult, error) {
	payload := []byte(fmt.Sprintf(`{"id":%q,"object":"event","type":%q,"data":{"object":%s}}`, id, eventType, object))
	signed := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{Payload: payload, Secret: webhookSecret})
	return s.uc.HandleWebhook(s.ctx, payload, signed.Header)
}

func (s *BillingUsecaseTestSuite) TestCheckout() {
	_, err := s.uc.Checkout(s.ctx, s.ws.ID, s.owner, "", model.CheckoutRequest{Plan: "gold"})
	s.ErrorIs(err, model.ErrUnknownPlan)
	_, err = s.uc.Checkout(s.ctx, s.ws.ID, s.owner, "", model.CheckoutRequest{Plan: wsmodel.PlanEnterprise})
	s.ErrorIs(err, model.ErrPriceNotConfigured)
	_, err = s.uc.Checkout(s.ctx, s.ws.ID, primitive.NewObjectID(), "", model.CheckoutRequest{Plan: wsmodel.PlanPro})
	s.True(apperrors.IsAuthorization(err))

	s.gateway.On("CreateCheckoutSession", mock.Anything, mock.MatchedBy(func(in model.CheckoutInput) bool {
		return in.PriceID == "price_pro" &&
			in.Metadata[model.MetaWorkspaceID] == s.ws.ID.Hex() &&
			in.Metadata[model.MetaPlan] == wsmodel.PlanPro &&
			in.CustomerEmail == "owner@example.com"
	})).Return(&model.CheckoutSession{URL: "https://checkout.test/s", SessionID: "cs_1"}, nil)

	session, err := s.uc.Checkout(s.ctx, s.ws.ID, s.owner, "owner@example.com", model.CheckoutRequest{Plan: "Pro"})
	s.Require().NoError(err)
	s.Equal("cs_1", session.SessionID)
	s.gateway.AssertExpectations(s.T())
}

func (s *BillingUsecaseTestSuite) TestPortal_NeedsCustomer() {
	_, err := s.uc.Portal(s.ctx, s.ws.ID, s.owner)
	s.ErrorIs(err, model.ErrNoCustomer)

	s.ws.Subscription.StripeCustomerID = "cus_1"
	s.gateway.On("CreatePortalSession", mock.Anything, "cus_1", "https://app/billing").
		Return(&model.PortalSession{URL: "https://portal.test"}, nil)
	session, err := s.uc.Portal(s.ctx, s.ws.ID, s.owner)
	s.Require().NoError(err)
	s.Equal("https://portal.test", session.URL)
}

func (s *BillingUsecaseTestSuite) TestWebhook_RejectsBadSignature() {
	_, err := s.uc.HandleWebhook(s.ctx, []byte(`{"id":"evt_x"}`), "t=1,v1=deadbeef")
	s.ErrorIs(err, model.ErrInvalidSignature)
}

func (s *BillingUsecaseTestSuite) TestWebhook_Lifecycle() {
	checkout := fmt.Sprintf(`{"id":"cs_1","object":"checkout.session","customer":"cus_1","subscription":"sub_1","metadata":{"workspaceId":%q,"plan":"pro"}}`, s.ws.ID.Hex())
	res, err := s.deliver("evt_1", model.EventCheckoutCompleted, checkout)
	s.Require().NoError(err)
	s.False(res.Ignored)
	s.Equal(wsmodel.PlanPro, s.ws.Subscription.Plan)
	s.Equal("cus_1", s.ws.Subscription.StripeCustomerID)
	s.Equal("sub_1", s.ws.Subscription.StripeSubscriptionID)

	res, err = s.deliver("evt_1", model.EventCheckoutCompleted, checkout)
	s.Require().NoError(err)
	s.True(res.Duplicate)
	s.Equal(1, s.store.saves)

	end := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	updated := fmt.Sprintf(`{"id":"sub_1","object":"subscription","status":"trialing","customer":"cus_1","current_period_end":%d,"cancel_at_period_end":true,"items":{"object":"list","data":[{"id":"si_1","object":"subscription_item","price":{"id":"price_pro","object":"price"}}]}}`, end.Unix())
	_, err = s.deliver("evt_2", model.EventSubscriptionUpdated, updated)
	s.Require().NoError(err)
	s.Equal(wsmodel.StatusTrialing, s.ws.Subscription.Status)
	s.True(s.ws.Subscription.CancelAtPeriodEnd)
	s.Require().NotNil(s.ws.Subscription.CurrentPeriodEnd)
	s.True(end.Equal(*s.ws.Subscription.CurrentPeriodEnd))

	_, err = s.deliver("evt_3", model.EventInvoicePaymentFailed, `{"id":"in_1","object":"invoice","customer":"cus_1","subscription":"sub_1"}`)
	s.Require().NoError(err)
	s.Equal(wsmodel.StatusPastDue, s.ws.Subscription.Status)

	_, err = s.deliver("evt_4", model.EventSubscriptionDeleted, `{"id":"sub_1","object":"subscription","status":"canceled","customer":"cus_1"}`)
	s.Require().NoError(err)
	s.Equal(wsmodel.PlanFree, s.ws.Subscription.Plan)
	s.Equal(wsmodel.StatusCanceled, s.ws.Subscription.Status)
	s.Empty(s.ws.Subscription.StripeSubscriptionID)
	s.Equal("cus_1", s.ws.Subscription.StripeCustomerID)
}

func (s *BillingUsecaseTestSuite) TestWebhook_UnknownWorkspaceAndTypeAreAcknowledged() {
	res, err := s.deliver("evt_5", model.EventSubscriptionUpdated, `{"id":"sub_zzz","object":"subscription","status":"active","customer":"cus_zzz"}`)
	s.Require().NoError(err)
	s.True(res.Ignored)

	res, err = s.deliver("evt_6", "charge.refunded", `{"id":"ch_1","object":"charge"}`)
	s.Require().NoError(err)
	s.True(res.Ignored)
	s.Zero(s.store.saves)
}

func (s *BillingUsecaseTestSuite) TestWebhook_FailureReleasesClaim() {
	s.ws.Subscription.StripeSubscriptionID = "sub_1"
	s.store.saveErr = errors.New("mongo down")
	_, err := s.deliver("evt_7", model.EventInvoicePaymentFailed, `{"id":"in_1","object":"invoice","subscription":"sub_1"}`)
	s.Error(err)
	s.False(s.mr.Exists("edwin:stripe:event:evt_7"))

	s.store.saveErr = nil
	res, err := s.deliver("evt_7", model.EventInvoicePaymentFailed, `{"id":"in_1","object":"invoice","subscription":"sub_1"}`)
	s.Require().NoError(err)
	s.False(res.Duplicate)
	s.Equal(wsmodel.StatusPastDue, s.ws.Subscription.Status)
	s.True(s.mr.Exists("edwin:stripe:event:evt_7"))
}
