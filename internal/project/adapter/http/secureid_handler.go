package http

import (
	"edwin/internal/project/domain/model"
	"edwin/internal/shared/response"
	"edwin/internal/shared/utils"

	"github.com/gofiber/fiber/v2"
)

// CreateSecureID handles POST /projects/:id/secure-ids.
func (h *ProjectHandler) CreateSecureID(c *fiber.Ctx) error {
	callerID, projectID, err := callerAndID(c)
	if err != nil {
		return response.Error(c, err)
	}
	var in model.SecureIDInput
	if err := utils.ParseBody(c, &in); err != nil {
		return response.Error(c, err)
	}
	out, err := h.uc.SecureIDs.Create(c.UserContext(), projectID, callerID, in)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Created(c, out)
}

// ListSecureIDs handles GET /projects/:id/secure-ids.
func (h *ProjectHandler) ListSecureIDs(c *fiber.Ctx) error {
	callerID, projectID, err := callerAndID(c)
	if err != nil {
		return response.Error(c, err)
	}
	items, err := h.uc.SecureIDs.List(c.UserContext(), projectID, callerID)
	if err != nil {
		return response.Error(c, err)
	}
	return response.OK(c, items)
}

// GetSecureID handles GET /secure-ids/:id.
func (h *ProjectHandler) GetSecureID(c *fiber.Ctx) error {
	callerID, id, err := callerAndID(c)
	if err != nil {
		return response.Error(c, err)
	}
	out, err := h.uc.SecureIDs.Get(c.UserContext(), id, callerID)
	if err != nil {
		return response.Error(c, err)
	}
	return response.OK(c, out)
}

// UpdateSecureID handles PATCH /secure-ids/:id.
func (h *ProjectHandler) UpdateSecureID(c *fiber.Ctx) error {
	callerID, id, err := callerAndID(c)
	if err != nil {
		return response.Error(c, err)
	}
	var in model.SecureIDInput
	if err := utils.ParseBody(c, &in); err != nil {
		return response.Error(c, err)
	}
	out, err := h.uc.SecureIDs.Update(c.UserContext(), id, callerID, in)
	if err != nil {
		return response.Error(c, err)
	}
	return response.OK(c, out)
}

// DeleteSecureID handles DELETE /secure-ids/:id.
func (h *ProjectHandler) DeleteSecureID(c *fiber.Ctx) error {
	callerID, id, err := callerAndID(c)
	if err != nil {
		return response.Error(c, err)
	}
	if err := h.uc.SecureIDs.Delete(c.UserContext(), id, callerID); err != nil {
		return response.Error(c, err)
	}
	return response.OK(c, fiber.Map{"deleted": true})
}

// RevealSecureID handles GET /secure-ids/:id/reveal.
func (h *ProjectHandler) RevealSecureID(c *fiber.Ctx) error {
	callerID, id, err := callerAndID(c)
	if err != nil {
		return response.Error(c, err)
	}
	out, err := h.uc.SecureIDs.Reveal(c.UserContext(), id, callerID)
	if err != nil {
		return response.Error(c, err)
	}
	c.Set(fiber.HeaderCacheControl, "no-store")
	return response.OK(c, out)
}
