package http

import (
	"edwin/internal/admin/domain/model"
	"edwin/internal/admin/usecase"
	"edwin/internal/shared/pagination"
	"edwin/internal/shared/response"
	"edwin/internal/shared/utils"

	"github.com/gofiber/fiber/v2"
)

// AdminHandler serves settings, system logs and stats.
type AdminHandler struct {
	settings *usecase.SettingsUsecase
	admin    *usecase.AdminUsecase
}

func NewAdminHandler(settings *usecase.SettingsUsecase, admin *usecase.AdminUsecase) *AdminHandler {
	return &AdminHandler{settings: settings, admin: admin}
}

// RegisterPublicRoutes mounts GET /settings/public.
func (h *AdminHandler) RegisterPublicRoutes(api fiber.Router) {
	api.Get("/settings/public", h.PublicSettings)
}

// RegisterRoutes mounts the routes on a router that already enforces the
// admin role.
func (h *AdminHandler) RegisterRoutes(admin fiber.Router) {
	admin.Get("/settings", h.GetSettings)
	admin.Patch("/settings", h.UpdateSettings)
	admin.Get("/logs", h.Logs)
	admin.Get("/stats", h.Stats)
}

func (h *AdminHandler) PublicSettings(c *fiber.Ctx) error {
	s, err := h.settings.Public(c.UserContext())
	if err != nil {
		return response.Error(c, err)
	}
	return response.OK(c, s)
}

func (h *AdminHandler) GetSettings(c *fiber.Ctx) error {
	s, err := h.settings.Get(c.UserContext())
	if err != nil {
		return response.Error(c, err)
	}
	return response.OK(c, s)
}

func (h *AdminHandler) UpdateSettings(c *fiber.Ctx) error {
	callerID, err := utils.CallerID(c)
	if err != nil {
		return response.Error(c, err)
	}
	var update model.SettingsUpdate
	if err := utils.ParseBody(c, &update); err != nil {
		return response.Error(c, err)
	}
	s, err := h.settings.Update(c.UserContext(), callerID, update)
	if err != nil {
		return response.Error(c, err)
	}
	return response.OK(c, s)
}

// Logs handles GET /logs?level=&page=&limit=.
func (h *AdminHandler) Logs(c *fiber.Ctx) error {
	page := pagination.Parse(c)
	items, total, err := h.admin.Logs(c.UserContext(), c.Query("level"), page)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Paginated(c, items, pagination.NewPagination(page, total))
}

func (h *AdminHandler) Stats(c *fiber.Ctx) error {
	stats, err := h.admin.Stats(c.UserContext())
	if err != nil {
		return response.Error(c, err)
	}
	return response.OK(c, stats)
}
