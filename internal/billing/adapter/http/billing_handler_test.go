package http_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	billinghttp "edwin/internal/billing/adapter/http"
	"edwin/internal/billing/adapter/stripe"
	"edwin/internal/billing/usecase"
	"edwin/internal/shared/response"
	"edwin/internal/shared/utils"
	wsmodel "edwin/internal/workspace/domain/model"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v79/webhook"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type noWorkspaces struct {
	usecase.SubscriptionStore
}

func (noWorkspaces) BySubscriptionID(context.Context, string) (*wsmodel.Workspace, error) {
	return nil, wsmodel.ErrWorkspaceNotFound
}

func (noWorkspaces) ByCustomerID(context.Context, string) (*wsmodel.Workspace, error) {
	return nil, wsmodel.ErrWorkspaceNotFound
}

type noPrices struct{}

func (noPrices) PriceForPlan(string) string { return "" }
func (noPrices) PlanForPrice(string) string { return "" }

func newApp(withGateway bool) *fiber.App {
	var uc *usecase.BillingUsecase
	if withGateway {
		uc = usecase.NewBillingUsecase(stripe.NewGateway("sk_test_unused"), stripe.NewVerifier("whsec_test"), nil, noWorkspaces{}, noPrices{}, usecase.URLs{}, nil)
	} else {
		uc = usecase.NewBillingUsecase(nil, stripe.NewVerifier("whsec_test"), nil, noWorkspaces{}, noPrices{}, usecase.URLs{}, nil)
	}
	h := billinghttp.NewBillingHandler(uc)

	app := fiber.New(fiber.Config{ErrorHandler: response.ErrorHandler})
	public := app.Group("/api")
	h.RegisterPublicRoutes(public)
	api := app.Group("/api", func(c *fiber.Ctx) error {
		if caller := c.Get("X-Test-User"); caller != "" {
			c.SetUserContext(utils.WithUserID(c.UserContext(), caller))
		}
		return c.Next()
	})
	h.RegisterRoutes(api)
	return app
}

func TestWebhook_Signature(t *testing.T) {
	app := newApp(false)

	req := httptest.NewRequest(http.MethodPost, "/api/billing/webhook", strings.NewReader(`{"id":"evt_1"}`))
	req.Header.Set("Stripe-Signature", "t=1,v1=bad")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	payload := `{"id":"evt_2","object":"event","type":"customer.subscription.updated","data":{"object":{"id":"sub_9","object":"subscription","status":"active"}}}`
	signed := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{Payload: []byte(payload), Secret: "whsec_test"})
	req = httptest.NewRequest(http.MethodPost, "/api/billing/webhook", strings.NewReader(payload))
	req.Header.Set("Stripe-Signature", signed.Header)
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode, "unknown workspaces are acknowledged")
}

func TestCheckout_StatusCodes(t *testing.T) {
	wsID := primitive.NewObjectID().Hex()

	req := httptest.NewRequest(http.MethodPost, "/api/workspaces/"+wsID+"/billing/checkout", strings.NewReader(`{"plan":"pro"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := newApp(true).Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	req = httptest.NewRequest(http.MethodPost, "/api/workspaces/"+wsID+"/billing/checkout", strings.NewReader(`{"plan":"pro"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Test-User", primitive.NewObjectID().Hex())
	resp, err = newApp(true).Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "no price configured")

	req = httptest.NewRequest(http.MethodPost, "/api/workspaces/"+wsID+"/billing/checkout", strings.NewReader(`{"plan":"pro"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Test-User", primitive.NewObjectID().Hex())
	resp, err = newApp(false).Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}
