package http

import (
	"edwin/internal/messaging/usecase"
	"edwin/internal/shared/pagination"
	"edwin/internal/shared/response"
	"edwin/internal/shared/utils"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MessagingHandler serves direct messages and conversations.
type MessagingHandler struct {
	uc *usecase.MessagingUsecase
}

func NewMessagingHandler(uc *usecase.MessagingUsecase) *MessagingHandler {
	return &MessagingHandler{uc: uc}
}

// RegisterRoutes mounts the routes on an authenticated router.
func (h *MessagingHandler) RegisterRoutes(api fiber.Router) {
	ws := api.Group("/workspaces/:id")
	ws.Post("/messages", h.SendDirect)
	ws.Get("/messages/unread", h.UnreadCount)
	ws.Get("/messages/:userId", h.ListDirect)
	ws.Post("/conversations", h.CreateConversation)
	ws.Get("/conversations", h.ListConversations)

	api.Post("/messages/:id/read", h.MarkRead)

	conv := api.Group("/conversations/:id")
	conv.Post("/messages", h.Send)
	conv.Get("/messages", h.Messages)
	conv.Post("/participants", h.AddParticipant)
	conv.Delete("/participants/me", h.Leave)
}

func callerAndID(c *fiber.Ctx) (primitive.ObjectID, primitive.ObjectID, error) {
	callerID, err := utils.CallerID(c)
	if err != nil {
		return primitive.NilObjectID, primitive.NilObjectID, err
	}
	id, err := utils.ParamID(c, "id")
	if err != nil {
		return primitive.NilObjectID, primitive.NilObjectID, err
	}
	return callerID, id, nil
}

// SendDirect handles POST /workspaces/:id/messages.
func (h *MessagingHandler) SendDirect(c *fiber.Ctx) error {
	callerID, workspaceID, err := callerAndID(c)
	if err != nil {
		return response.Error(c, err)
	}
	var req usecase.SendDirectRequest
	if err := utils.ParseBody(c, &req); err != nil {
		return response.Error(c, err)
	}
	msg, err := h.uc.SendDirect(c.UserContext(), workspaceID, callerID, req)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Created(c, msg)
}

// ListDirect handles GET /workspaces/:id/messages/:userId.
func (h *MessagingHandler) ListDirect(c *fiber.Ctx) error {
	callerID, workspaceID, err := callerAndID(c)
	if err != nil {
		return response.Error(c, err)
	}
	otherID, err := utils.ParamID(c, "userId")
	if err != nil {
		return response.Error(c, err)
	}
	items, page, err := h.uc.ListDirect(c.UserContext(), workspaceID, callerID, otherID, pagination.Parse(c))
	if err != nil {
		return response.Error(c, err)
	}
	return response.Paginated(c, items, page)
}

// UnreadCount handles GET /workspaces/:id/messages/unread.
func (h *MessagingHandler) UnreadCount(c *fiber.Ctx) error {
	callerID, workspaceID, err := callerAndID(c)
	if err != nil {
		return response.Error(c, err)
	}
	n, err := h.uc.UnreadCount(c.UserContext(), workspaceID, callerID)
	if err != nil {
		return response.Error(c, err)
	}
	return response.OK(c, fiber.Map{"count": n})
}

// MarkRead handles POST /messages/:id/read.
func (h *MessagingHandler) MarkRead(c *fiber.Ctx) error {
	callerID, id, err := callerAndID(c)
	if err != nil {
		return response.Error(c, err)
	}
	msg, err := h.uc.MarkRead(c.UserContext(), id, callerID)
	if err != nil {
		return response.Error(c, err)
	}
	return response.OK(c, msg)
}

// CreateConversation handles POST /workspaces/:id/conversations.
func (h *MessagingHandler) CreateConversation(c *fiber.Ctx) error {
	callerID, workspaceID, err := callerAndID(c)
	if err != nil {
		return response.Error(c, err)
	}
	var req usecase.CreateConversationRequest
	if err := utils.ParseBody(c, &req); err != nil {
		return response.Error(c, err)
	}
	conv, err := h.uc.CreateConversation(c.UserContext(), workspaceID, callerID, req)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Created(c, conv)
}

// ListConversations handles GET /workspaces/:id/conversations.
func (h *MessagingHandler) ListConversations(c *fiber.Ctx) error {
	callerID, workspaceID, err := callerAndID(c)
	if err != nil {
		return response.Error(c, err)
	}
	items, err := h.uc.ListConversations(c.UserContext(), workspaceID, callerID)
	if err != nil {
		return response.Error(c, err)
	}
	return response.OK(c, items)
}

// Send handles POST /conversations/:id/messages.
func (h *MessagingHandler) Send(c *fiber.Ctx) error {
	callerID, id, err := callerAndID(c)
	if err != nil {
		return response.Error(c, err)
	}
	var req usecase.SendRequest
	if err := utils.ParseBody(c, &req); err != nil {
		return response.Error(c, err)
	}
	msg, err := h.uc.Send(c.UserContext(), id, callerID, req)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Created(c, msg)
}

// Messages handles GET /conversations/:id/messages.
func (h *MessagingHandler) Messages(c *fiber.Ctx) error {
	callerID, id, err := callerAndID(c)
	if err != nil {
		return response.Error(c, err)
	}
	items, page, err := h.uc.Messages(c.UserContext(), id, callerID, pagination.Parse(c))
	if err != nil {
		return response.Error(c, err)
	}
	return response.Paginated(c, items, page)
}

// AddParticipant handles POST /conversations/:id/participants.
func (h *MessagingHandler) AddParticipant(c *fiber.Ctx) error {
	callerID, id, err := callerAndID(c)
	if err != nil {
		return response.Error(c, err)
	}
	var req usecase.AddParticipantRequest
	if err := utils.ParseBody(c, &req); err != nil {
		return response.Error(c, err)
	}
	conv, err := h.uc.AddParticipant(c.UserContext(), id, callerID, req)
	if err != nil {
		return response.Error(c, err)
	}
	return response.OK(c, conv)
}

// Leave handles DELETE /conversations/:id/participants/me.
func (h *MessagingHandler) Leave(c *fiber.Ctx) error {
	callerID, id, err := callerAndID(c)
	if err != nil {
		return response.Error(c, err)
	}
	if err := h.uc.Leave(c.UserContext(), id, callerID); err != nil {
		return response.Error(c, err)
	}
	return response.OK(c, fiber.Map{"left": true})
}
