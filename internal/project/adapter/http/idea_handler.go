package http

import (
	"edwin/internal/project/domain/model"
	"edwin/internal/shared/response"
	"edwin/internal/shared/utils"

	"github.com/gofiber/fiber/v2"
)

// CreateIdea handles POST /projects/:id/ideas.
func (h *ProjectHandler) CreateIdea(c *fiber.Ctx) error {
	callerID, projectID, err := callerAndID(c)
	if err != nil {
		return response.Error(c, err)
	}
	var in model.IdeaInput
	if err := utils.ParseBody(c, &in); err != nil {
		return response.Error(c, err)
	}
	out, err := h.uc.Ideas.Create(c.UserContext(), projectID, callerID, in)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Created(c, out)
}

// ListIdeas handles GET /projects/:id/ideas.
func (h *ProjectHandler) ListIdeas(c *fiber.Ctx) error {
	callerID, projectID, err := callerAndID(c)
	if err != nil {
		return response.Error(c, err)
	}
	items, err := h.uc.Ideas.List(c.UserContext(), projectID, callerID)
	if err != nil {
		return response.Error(c, err)
	}
	return response.OK(c, items)
}

// GetIdea handles GET /ideas/:id.
func (h *ProjectHandler) GetIdea(c *fiber.Ctx) error {
	callerID, id, err := callerAndID(c)
	if err != nil {
		return response.Error(c, err)
	}
	out, err := h.uc.Ideas.Get(c.UserContext(), id, callerID)
	if err != nil {
		return response.Error(c, err)
	}
	return response.OK(c, out)
}

// UpdateIdea handles PATCH /ideas/:id.
func (h *ProjectHandler) UpdateIdea(c *fiber.Ctx) error {
	callerID, id, err := callerAndID(c)
	if err != nil {
		return response.Error(c, err)
	}
	var in model.IdeaInput
	if err := utils.ParseBody(c, &in); err != nil {
		return response.Error(c, err)
	}
	out, err := h.uc.Ideas.Update(c.UserContext(), id, callerID, in)
	if err != nil {
		return response.Error(c, err)
	}
	return response.OK(c, out)
}

// DeleteIdea handles DELETE /ideas/:id.
func (h *ProjectHandler) DeleteIdea(c *fiber.Ctx) error {
	callerID, id, err := callerAndID(c)
	if err != nil {
		return response.Error(c, err)
	}
	if err := h.uc.Ideas.Delete(c.UserContext(), id, callerID); err != nil {
		return response.Error(c, err)
	}
	return response.OK(c, fiber.Map{"deleted": true})
}

// VoteIdea handles POST /ideas/:id/vote.
func (h *ProjectHandler) VoteIdea(c *fiber.Ctx) error {
	callerID, id, err := callerAndID(c)
	if err != nil {
		return response.Error(c, err)
	}
	res, err := h.uc.Ideas.Vote(c.UserContext(), id, callerID)
	if err != nil {
		return response.Error(c, err)
	}
	return response.OK(c, res)
}
