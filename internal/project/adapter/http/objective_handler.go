package http

import (
	"edwin/internal/project/domain/model"
	"edwin/internal/shared/response"
	"edwin/internal/shared/utils"

	"github.com/gofiber/fiber/v2"
)

// CreateObjective handles POST /projects/:id/objectives.
func (h *ProjectHandler) CreateObjective(c *fiber.Ctx) error {
	callerID, projectID, err := callerAndID(c)
	if err != nil {
		return response.Error(c, err)
	}
	var in model.ObjectiveInput
	if err := utils.ParseBody(c, &in); err != nil {
		return response.Error(c, err)
	}
	out, err := h.uc.Objectives.Create(c.UserContext(), projectID, callerID, in)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Created(c, out)
}

// ListObjectives handles GET /projects/:id/objectives.
func (h *ProjectHandler) ListObjectives(c *fiber.Ctx) error {
	callerID, projectID, err := callerAndID(c)
	if err != nil {
		return response.Error(c, err)
	}
	items, err := h.uc.Objectives.List(c.UserContext(), projectID, callerID)
	if err != nil {
		return response.Error(c, err)
	}
	return response.OK(c, items)
}

// GetObjective handles GET /objectives/:id.
func (h *ProjectHandler) GetObjective(c *fiber.Ctx) error {
	callerID, id, err := callerAndID(c)
	if err != nil {
		return response.Error(c, err)
	}
	out, err := h.uc.Objectives.Get(c.UserContext(), id, callerID)
	if err != nil {
		return response.Error(c, err)
	}
	return response.OK(c, out)
}

// UpdateObjective handles PATCH /objectives/:id.
func (h *ProjectHandler) UpdateObjective(c *fiber.Ctx) error {
	callerID, id, err := callerAndID(c)
	if err != nil {
		return response.Error(c, err)
	}
	var in model.ObjectiveInput
	if err := utils.ParseBody(c, &in); err != nil {
		return response.Error(c, err)
	}
	out, err := h.uc.Objectives.Update(c.UserContext(), id, callerID, in)
	if err != nil {
		return response.Error(c, err)
	}
	return response.OK(c, out)
}

// DeleteObjective handles DELETE /objectives/:id.
func (h *ProjectHandler) DeleteObjective(c *fiber.Ctx) error {
	callerID, id, err := callerAndID(c)
	if err != nil {
		return response.Error(c, err)
	}
	if err := h.uc.Objectives.Delete(c.UserContext(), id, callerID); err != nil {
		return response.Error(c, err)
	}
	return response.OK(c, fiber.Map{"deleted": true})
}
