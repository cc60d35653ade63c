package usecase

import (
	"context"
	"strings"
	"unicode/utf8"

	"edwin/internal/messaging/domain/model"
	"edwin/internal/messaging/domain/repository"
	"edwin/internal/shared/database"
	apperrors "edwin/internal/shared/errors"
	"edwin/internal/shared/eventbus"
	"edwin/internal/shared/logger"
	"edwin/internal/shared/pagination"
	wsmodel "edwin/internal/workspace/domain/model"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const eventSource = "messaging"

// WorkspaceAccess is the membership check messaging depends on.
type WorkspaceAccess interface {
	RequireMember(ctx context.Context, workspaceID, userID primitive.ObjectID) (*wsmodel.Workspace, error)
}

// SendDirectRequest is the body of POST /workspaces/:id/messages.
type SendDirectRequest struct {
	RecipientID string `json:"recipientId"`
	Content     string `json:"content"`
}

// SendRequest is the body of POST /conversations/:id/messages.
type SendRequest struct {
	Content string `json:"content"`
}

// MessagingUsecase handles direct messages and group conversations.
type MessagingUsecase struct {
	messages      repository.MessageRepository
	conversations repository.ConversationRepository
	workspaces    WorkspaceAccess
	bus           eventbus.EventBusInterface
	log           logger.Logger
}

// NewMessagingUsecase wires the usecase. bus may be nil.
func NewMessagingUsecase(
	messages repository.MessageRepository,
	conversations repository.ConversationRepository,
	workspaces WorkspaceAccess,
	bus eventbus.EventBusInterface,
	log logger.Logger,
) *MessagingUsecase {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &MessagingUsecase{
		messages:      messages,
		conversations: conversations,
		workspaces:    workspaces,
		bus:           bus,
		log:           log.WithComponent("messaging"),
	}
}

func validContent(content string) (string, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return "", apperrors.NewValidationError("content is required").WithDetail("field", "content")
	}
	if utf8.RuneCountInString(content) > model.MaxContentLength {
		return "", apperrors.NewValidationError("content must be at most 5000 characters").WithDetail("field", "content")
	}
	return content, nil
}

// SendDirect stores a one-to-one message. The sender is pre-marked as read.
func (uc *MessagingUsecase) SendDirect(ctx context.Context, workspaceID, senderID primitive.ObjectID, req SendDirectRequest) (*model.Message, error) {
	ws, err := uc.workspaces.RequireMember(ctx, workspaceID, senderID)
	if err != nil {
		return nil, err
	}
	recipientID, err := database.ParseObjectID("recipientId", req.RecipientID)
	if err != nil {
		return nil, err
	}
	if recipientID == senderID {
		return nil, model.ErrSelfMessage
	}
	if !ws.IsMember(recipientID) {
		return nil, model.ErrRecipientNotMember
	}
	content, err := validContent(req.Content)
	if err != nil {
		return nil, err
	}

	msg := &model.Message{
		Workspace: workspaceID,
		Sender:    senderID,
		Recipient: &recipientID,
		Content:   content,
		ReadBy:    []primitive.ObjectID{senderID},
	}
	if err := uc.messages.Create(ctx, msg); err != nil {
		return nil, err
	}
	uc.publish(ctx, msg, []primitive.ObjectID{senderID, recipientID})
	return msg, nil
}

// ListDirect returns one page of the thread between the caller and otherID.
func (uc *MessagingUsecase) ListDirect(ctx context.Context, workspaceID, callerID, otherID primitive.ObjectID, page pagination.Params) ([]*model.Message, pagination.Pagination, error) {
	if _, err := uc.workspaces.RequireMember(ctx, workspaceID, callerID); err != nil {
		return nil, pagination.Pagination{}, err
	}
	items, total, err := uc.messages.ListDirect(ctx, workspaceID, callerID, otherID, page)
	if err != nil {
		return nil, pagination.Pagination{}, err
	}
	return items, pagination.NewPagination(page, total), nil
}

// MarkRead adds the caller to readBy. Direct messages can only be marked by
// their recipient, group messages by a participant.
func (uc *MessagingUsecase) MarkRead(ctx context.Context, messageID, callerID primitive.ObjectID) (*model.Message, error) {
	msg, err := uc.messages.GetByID(ctx, messageID)
	if err != nil {
		return nil, err
	}
	if msg.IsDirect() {
		if *msg.Recipient != callerID {
			return nil, model.ErrNotRecipient
		}
	} else if msg.Conversation != nil {
		if _, err := uc.participantConversation(ctx, *msg.Conversation, callerID); err != nil {
			return nil, err
		}
	}
	return uc.messages.MarkRead(ctx, messageID, callerID)
}

// UnreadCount counts the caller's unread direct messages in a workspace.
func (uc *MessagingUsecase) UnreadCount(ctx context.Context, workspaceID, callerID primitive.ObjectID) (int64, error) {
	if _, err := uc.workspaces.RequireMember(ctx, workspaceID, callerID); err != nil {
		return 0, err
	}
	return uc.messages.CountUnreadDirect(ctx, workspaceID, callerID)
}

func (uc *MessagingUsecase) publish(ctx context.Context, msg *model.Message, recipients []primitive.ObjectID) {
	if uc.bus == nil {
		return
	}
	event := model.MessageEvent{Message: msg, Recipients: database.UniqueIDs(recipients)}
	uc.bus.PublishAndForget(context.WithoutCancel(ctx),
		eventbus.NewBasicEventWithSource(eventbus.EventTypeMessageCreated, event, eventSource))
}
