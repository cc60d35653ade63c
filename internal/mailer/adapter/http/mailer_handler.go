package http

import (
	"edwin/internal/mailer/domain/model"
	"edwin/internal/mailer/usecase"
	"edwin/internal/shared/pagination"
	"edwin/internal/shared/response"
	"edwin/internal/shared/utils"

	"github.com/gofiber/fiber/v2"
)

// MailerHandler serves the admin email endpoints.
type MailerHandler struct {
	uc *usecase.MailerUsecase
}

func NewMailerHandler(uc *usecase.MailerUsecase) *MailerHandler {
	return &MailerHandler{uc: uc}
}

// RegisterRoutes mounts /email on a router that already enforces the admin
// role.
func (h *MailerHandler) RegisterRoutes(admin fiber.Router) {
	e := admin.Group("/email")

	e.Get("/templates", h.ListTemplates)
	e.Post("/templates", h.CreateTemplate)
	e.Get("/templates/:id", h.GetTemplate)
	e.Patch("/templates/:id", h.UpdateTemplate)
	e.Delete("/templates/:id", h.DeleteTemplate)

	e.Get("/campaigns", h.ListCampaigns)
	e.Post("/campaigns", h.CreateCampaign)
	e.Get("/campaigns/:id", h.GetCampaign)
	e.Patch("/campaigns/:id", h.UpdateCampaign)
	e.Delete("/campaigns/:id", h.DeleteCampaign)
	e.Post("/campaigns/:id/preview-audience", h.PreviewAudience)
	e.Post("/campaigns/:id/send", h.Send)

	e.Get("/analytics", h.Analytics)
}

func (h *MailerHandler) ListTemplates(c *fiber.Ctx) error {
	list, err := h.uc.ListTemplates(c.UserContext())
	if err != nil {
		return response.Error(c, err)
	}
	return response.OK(c, list)
}

func (h *MailerHandler) CreateTemplate(c *fiber.Ctx) error {
	callerID, err := utils.CallerID(c)
	if err != nil {
		return response.Error(c, err)
	}
	var in model.TemplateInput
	if err := utils.ParseBody(c, &in); err != nil {
		return response.Error(c, err)
	}
	t, err := h.uc.CreateTemplate(c.UserContext(), callerID, in)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Created(c, t)
}

func (h *MailerHandler) GetTemplate(c *fiber.Ctx) error {
	id, err := utils.ParamID(c, "id")
	if err != nil {
		return response.Error(c, err)
	}
	t, err := h.uc.GetTemplate(c.UserContext(), id)
	if err != nil {
		return response.Error(c, err)
	}
	return response.OK(c, t)
}

func (h *MailerHandler) UpdateTemplate(c *fiber.Ctx) error {
	id, err := utils.ParamID(c, "id")
	if err != nil {
		return response.Error(c, err)
	}
	var in model.TemplateInput
	if err := utils.ParseBody(c, &in); err != nil {
		return response.Error(c, err)
	}
	t, err := h.uc.UpdateTemplate(c.UserContext(), id, in)
	if err != nil {
		return response.Error(c, err)
	}
	return response.OK(c, t)
}

func (h *MailerHandler) DeleteTemplate(c *fiber.Ctx) error {
	id, err := utils.ParamID(c, "id")
	if err != nil {
		return response.Error(c, err)
	}
	if err := h.uc.DeleteTemplate(c.UserContext(), id); err != nil {
		return response.Error(c, err)
	}
	return response.OK(c, fiber.Map{"deleted": true})
}

func (h *MailerHandler) ListCampaigns(c *fiber.Ctx) error {
	page := pagination.Parse(c)
	items, total, err := h.uc.ListCampaigns(c.UserContext(), page)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Paginated(c, items, pagination.NewPagination(page, total))
}

func (h *MailerHandler) CreateCampaign(c *fiber.Ctx) error {
	callerID, err := utils.CallerID(c)
	if err != nil {
		return response.Error(c, err)
	}
	var in usecase.CampaignInput
	if err := utils.ParseBody(c, &in); err != nil {
		return response.Error(c, err)
	}
	campaign, err := h.uc.CreateCampaign(c.UserContext(), callerID, in)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Created(c, campaign)
}

func (h *MailerHandler) GetCampaign(c *fiber.Ctx) error {
	id, err := utils.ParamID(c, "id")
	if err != nil {
		return response.Error(c, err)
	}
	campaign, err := h.uc.GetCampaign(c.UserContext(), id)
	if err != nil {
		return response.Error(c, err)
	}
	return response.OK(c, campaign)
}

func (h *MailerHandler) UpdateCampaign(c *fiber.Ctx) error {
	id, err := utils.ParamID(c, "id")
	if err != nil {
		return response.Error(c, err)
	}
	var in usecase.CampaignInput
	if err := utils.ParseBody(c, &in); err != nil {
		return response.Error(c, err)
	}
	campaign, err := h.uc.UpdateCampaign(c.UserContext(), id, in)
	if err != nil {
		return response.Error(c, err)
	}
	return response.OK(c, campaign)
}

func (h *MailerHandler) DeleteCampaign(c *fiber.Ctx) error {
	id, err := utils.ParamID(c, "id")
	if err != nil {
		return response.Error(c, err)
	}
	if err := h.uc.DeleteCampaign(c.UserContext(), id); err != nil {
		return response.Error(c, err)
	}
	return response.OK(c, fiber.Map{"deleted": true})
}

func (h *MailerHandler) PreviewAudience(c *fiber.Ctx) error {
	id, err := utils.ParamID(c, "id")
	if err != nil {
		return response.Error(c, err)
	}
	preview, err := h.uc.PreviewAudience(c.UserContext(), id)
	if err != nil {
		return response.Error(c, err)
	}
	return response.OK(c, preview)
}

// Send handles POST /campaigns/:id/send. It returns once every recipient
// has been attempted.
func (h *MailerHandler) Send(c *fiber.Ctx) error {
	id, err := utils.ParamID(c, "id")
	if err != nil {
		return response.Error(c, err)
	}
	campaign, err := h.uc.Send(c.UserContext(), id)
	if err != nil {
		return response.Error(c, err)
	}
	return response.OK(c, campaign)
}

// Analytics handles GET /analytics?days=30.
func (h *MailerHandler) Analytics(c *fiber.Ctx) error {
	a, err := h.uc.Analytics(c.UserContext(), c.QueryInt("days", 0))
	if err != nil {
		return response.Error(c, err)
	}
	return response.OK(c, a)
}
