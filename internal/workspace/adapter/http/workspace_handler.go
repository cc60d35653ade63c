package http

import (
	"edwin/internal/shared/response"
	"edwin/internal/shared/utils"
	"edwin/internal/workspace/domain/model"
	"edwin/internal/workspace/usecase"

	"github.com/gofiber/fiber/v2"
)

// WorkspaceHandler serves /workspaces and /invitations.
type WorkspaceHandler struct {
	workspaces  *usecase.WorkspaceUsecase
	invitations *usecase.InvitationUsecase
}

// NewWorkspaceHandler creates the handler.
func NewWorkspaceHandler(ws *usecase.WorkspaceUsecase, inv *usecase.InvitationUsecase) *WorkspaceHandler {
	return &WorkspaceHandler{workspaces: ws, invitations: inv}
}

// RegisterRoutes mounts the routes on an authenticated router.
func (h *WorkspaceHandler) RegisterRoutes(api fiber.Router) {
	ws := api.Group("/workspaces")
	ws.Post("/", h.Create)
	ws.Get("/", h.List)
	ws.Get("/:id", h.Get)
	ws.Patch("/:id", h.Update)
	ws.Delete("/:id", h.Delete)

	ws.Get("/:id/members", h.ListMembers)
	ws.Patch("/:id/members/:userId", h.UpdateMemberRole)
	ws.Delete("/:id/members/:userId", h.RemoveMember)

	ws.Post("/:id/invitations", h.Invite)
	ws.Get("/:id/invitations", h.ListInvitations)
	ws.Delete("/:id/invitations/:invitationId", h.RevokeInvitation)

	api.Post("/invitations/:token/accept", h.AcceptInvitation)
}

// Create handles POST /workspaces.
func (h *WorkspaceHandler) Create(c *fiber.Ctx) error {
	callerID, err := utils.CallerID(c)
	if err != nil {
		return response.Error(c, err)
	}
	var req usecase.CreateWorkspaceRequest
	if err := utils.ParseBody(c, &req); err != nil {
		return response.Error(c, err)
	}
	ws, err := h.workspaces.Create(c.UserContext(), callerID, req)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Created(c, ws)
}

// List handles GET /workspaces.
func (h *WorkspaceHandler) List(c *fiber.Ctx) error {
	callerID, err := utils.CallerID(c)
	if err != nil {
		return response.Error(c, err)
	}
	list, err := h.workspaces.ListMine(c.UserContext(), callerID)
	if err != nil {
		return response.Error(c, err)
	}
	return response.OK(c, list)
}

// Get handles GET /workspaces/:id.
func (h *WorkspaceHandler) Get(c *fiber.Ctx) error {
	callerID, err := utils.CallerID(c)
	if err != nil {
		return response.Error(c, err)
	}
	id, err := utils.ParamID(c, "id")
	if err != nil {
		return response.Error(c, err)
	}
	ws, err := h.workspaces.Get(c.UserContext(), id, callerID)
	if err != nil {
		return response.Error(c, err)
	}
	return response.OK(c, ws)
}

// Update handles PATCH /workspaces/:id.
func (h *WorkspaceHandler) Update(c *fiber.Ctx) error {
	callerID, err := utils.CallerID(c)
	if err != nil {
		return response.Error(c, err)
	}
	id, err := utils.ParamID(c, "id")
	if err != nil {
		return response.Error(c, err)
	}
	var update model.WorkspaceUpdate
	if err := utils.ParseBody(c, &update); err != nil {
		return response.Error(c, err)
	}
	ws, err := h.workspaces.Update(c.UserContext(), id, callerID, update)
	if err != nil {
		return response.Error(c, err)
	}
	return response.OK(c, ws)
}

// Delete handles DELETE /workspaces/:id.
func (h *WorkspaceHandler) Delete(c *fiber.Ctx) error {
	callerID, err := utils.CallerID(c)
	if err != nil {
		return response.Error(c, err)
	}
	id, err := utils.ParamID(c, "id")
	if err != nil {
		return response.Error(c, err)
	}
	if err := h.workspaces.Delete(c.UserContext(), id, callerID); err != nil {
		return response.Error(c, err)
	}
	return response.OK(c, fiber.Map{"deleted": true})
}

// ListMembers handles GET /workspaces/:id/members.
func (h *WorkspaceHandler) ListMembers(c *fiber.Ctx) error {
	callerID, err := utils.CallerID(c)
	if err != nil {
		return response.Error(c, err)
	}
	id, err := utils.ParamID(c, "id")
	if err != nil {
		return response.Error(c, err)
	}
	members, err := h.workspaces.ListMembers(c.UserContext(), id, callerID)
	if err != nil {
		return response.Error(c, err)
	}
	return response.OK(c, members)
}

// UpdateMemberRole handles PATCH /workspaces/:id/members/:userId.
func (h *WorkspaceHandler) UpdateMemberRole(c *fiber.Ctx) error {
	callerID, err := utils.CallerID(c)
	if err != nil {
		return response.Error(c, err)
	}
	id, err := utils.ParamID(c, "id")
	if err != nil {
		return response.Error(c, err)
	}
	target, err := utils.ParamID(c, "userId")
	if err != nil {
		return response.Error(c, err)
	}
	var body struct {
		Role string `json:"role"`
	}
	if err := utils.ParseBody(c, &body); err != nil {
		return response.Error(c, err)
	}
	if err := h.workspaces.UpdateMemberRole(c.UserContext(), id, callerID, target, body.Role); err != nil {
		return response.Error(c, err)
	}
	return response.OK(c, fiber.Map{"user": target, "role": body.Role})
}

// RemoveMember handles DELETE /workspaces/:id/members/:userId.
func (h *WorkspaceHandler) RemoveMember(c *fiber.Ctx) error {
	callerID, err := utils.CallerID(c)
	if err != nil {
		return response.Error(c, err)
	}
	id, err := utils.ParamID(c, "id")
	if err != nil {
		return response.Error(c, err)
	}
	target, err := utils.ParamID(c, "userId")
	if err != nil {
		return response.Error(c, err)
	}
	if err := h.workspaces.RemoveMember(c.UserContext(), id, callerID, target); err != nil {
		return response.Error(c, err)
	}
	return response.OK(c, fiber.Map{"removed": true})
}

// Invite handles POST /workspaces/:id/invitations.
func (h *WorkspaceHandler) Invite(c *fiber.Ctx) error {
	callerID, err := utils.CallerID(c)
	if err != nil {
		return response.Error(c, err)
	}
	id, err := utils.ParamID(c, "id")
	if err != nil {
		return response.Error(c, err)
	}
	var req usecase.InviteRequest
	if err := utils.ParseBody(c, &req); err != nil {
		return response.Error(c, err)
	}
	inv, err := h.invitations.Invite(c.UserContext(), id, callerID, req)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Created(c, inv)
}

// ListInvitations handles GET /workspaces/:id/invitations.
func (h *WorkspaceHandler) ListInvitations(c *fiber.Ctx) error {
	callerID, err := utils.CallerID(c)
	if err != nil {
		return response.Error(c, err)
	}
	id, err := utils.ParamID(c, "id")
	if err != nil {
		return response.Error(c, err)
	}
	list, err := h.invitations.List(c.UserContext(), id, callerID)
	if err != nil {
		return response.Error(c, err)
	}
	return response.OK(c, list)
}

// RevokeInvitation handles DELETE /workspaces/:id/invitations/:invitationId.
func (h *WorkspaceHandler) RevokeInvitation(c *fiber.Ctx) error {
	callerID, err := utils.CallerID(c)
	if err != nil {
		return response.Error(c, err)
	}
	id, err := utils.ParamID(c, "id")
	if err != nil {
		return response.Error(c, err)
	}
	invID, err := utils.ParamID(c, "invitationId")
	if err != nil {
		return response.Error(c, err)
	}
	if err := h.invitations.Revoke(c.UserContext(), id, callerID, invID); err != nil {
		return response.Error(c, err)
	}
	return response.OK(c, fiber.Map{"revoked": true})
}

// AcceptInvitation handles POST /invitations/:token/accept.
func (h *WorkspaceHandler) AcceptInvitation(c *fiber.Ctx) error {
	callerID, err := utils.CallerID(c)
	if err != nil {
		return response.Error(c, err)
	}
	ws, err := h.invitations.Accept(c.UserContext(), c.Params("token"), callerID, utils.CallerEmail(c))
	if err != nil {
		return response.Error(c, err)
	}
	return response.OK(c, ws)
}
