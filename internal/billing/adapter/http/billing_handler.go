package http

import (
	"edwin/internal/billing/domain/model"
	"edwin/internal/billing/usecase"
	"edwin/internal/shared/response"
	"edwin/internal/shared/utils"

	"github.com/gofiber/fiber/v2"
)

const signatureHeader = "Stripe-Signature"

// BillingHandler serves checkout, the portal and the provider webhook.
type BillingHandler struct {
	uc *usecase.BillingUsecase
}

func NewBillingHandler(uc *usecase.BillingUsecase) *BillingHandler {
	return &BillingHandler{uc: uc}
}

// RegisterRoutes mounts the authenticated routes.
func (h *BillingHandler) RegisterRoutes(api fiber.Router) {
	api.Post("/workspaces/:id/billing/checkout", h.Checkout)
	api.Post("/workspaces/:id/billing/portal", h.Portal)
}

// RegisterPublicRoutes mounts the webhook, which authenticates by signature.
func (h *BillingHandler) RegisterPublicRoutes(api fiber.Router) {
	api.Post("/billing/webhook", h.Webhook)
}

func (h *BillingHandler) Checkout(c *fiber.Ctx) error {
	callerID, err := utils.CallerID(c)
	if err != nil {
		return response.Error(c, err)
	}
	workspaceID, err := utils.ParamID(c, "id")
	if err != nil {
		return response.Error(c, err)
	}
	var req model.CheckoutRequest
	if err := utils.ParseBody(c, &req); err != nil {
		return response.Error(c, err)
	}
	session, err := h.uc.Checkout(c.UserContext(), workspaceID, callerID, utils.CallerEmail(c), req)
	if err != nil {
		return response.Error(c, err)
	}
	return response.OK(c, session)
}

func (h *BillingHandler) Portal(c *fiber.Ctx) error {
	callerID, err := utils.CallerID(c)
	if err != nil {
		return response.Error(c, err)
	}
	workspaceID, err := utils.ParamID(c, "id")
	if err != nil {
		return response.Error(c, err)
	}
	session, err := h.uc.Portal(c.UserContext(), workspaceID, callerID)
	if err != nil {
		return response.Error(c, err)
	}
	return response.OK(c, session)
}

// Webhook handles POST /billing/webhook. The raw body is verified as sent.
func (h *BillingHandler) Webhook(c *fiber.Ctx) error {
	result, err := h.uc.HandleWebhook(c.UserContext(), c.Body(), c.Get(signatureHeader))
	if err != nil {
		return response.Error(c, err)
	}
	return response.OK(c, result)
}
