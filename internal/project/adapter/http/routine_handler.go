package http

import (
	"edwin/internal/project/domain/model"
	"edwin/internal/shared/response"
	"edwin/internal/shared/utils"

	"github.com/gofiber/fiber/v2"
)

// CreateRoutine handles POST /projects/:id/routines.
func (h *ProjectHandler) CreateRoutine(c *fiber.Ctx) error {
	callerID, projectID, err := callerAndID(c)
	if err != nil {
		return response.Error(c, err)
	}
	var in model.RoutineInput
	if err := utils.ParseBody(c, &in); err != nil {
		return response.Error(c, err)
	}
	out, err := h.uc.Routines.Create(c.UserContext(), projectID, callerID, in)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Created(c, out)
}

// ListRoutines handles GET /projects/:id/routines.
func (h *ProjectHandler) ListRoutines(c *fiber.Ctx) error {
	callerID, projectID, err := callerAndID(c)
	if err != nil {
		return response.Error(c, err)
	}
	items, err := h.uc.Routines.List(c.UserContext(), projectID, callerID)
	if err != nil {
		return response.Error(c, err)
	}
	return response.OK(c, items)
}

// GetRoutine handles GET /routines/:id.
func (h *ProjectHandler) GetRoutine(c *fiber.Ctx) error {
	callerID, id, err := callerAndID(c)
	if err != nil {
		return response.Error(c, err)
	}
	out, err := h.uc.Routines.Get(c.UserContext(), id, callerID)
	if err != nil {
		return response.Error(c, err)
	}
	return response.OK(c, out)
}

// UpdateRoutine handles PATCH /routines/:id.
func (h *ProjectHandler) UpdateRoutine(c *fiber.Ctx) error {
	callerID, id, err := callerAndID(c)
	if err != nil {
		return response.Error(c, err)
	}
	var in model.RoutineInput
	if err := utils.ParseBody(c, &in); err != nil {
		return response.Error(c, err)
	}
	out, err := h.uc.Routines.Update(c.UserContext(), id, callerID, in)
	if err != nil {
		return response.Error(c, err)
	}
	return response.OK(c, out)
}

// DeleteRoutine handles DELETE /routines/:id.
func (h *ProjectHandler) DeleteRoutine(c *fiber.Ctx) error {
	callerID, id, err := callerAndID(c)
	if err != nil {
		return response.Error(c, err)
	}
	if err := h.uc.Routines.Delete(c.UserContext(), id, callerID); err != nil {
		return response.Error(c, err)
	}
	return response.OK(c, fiber.Map{"deleted": true})
}

// CompleteRoutine handles POST /routines/:id/complete.
func (h *ProjectHandler) CompleteRoutine(c *fiber.Ctx) error {
	callerID, id, err := callerAndID(c)
	if err != nil {
		return response.Error(c, err)
	}
	rt, err := h.uc.Routines.Complete(c.UserContext(), id, callerID)
	if err != nil {
		return response.Error(c, err)
	}
	return response.OK(c, rt)
}
