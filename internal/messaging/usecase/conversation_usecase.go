package usecase

import (
	"context"
	"strings"
	"unicode/utf8"

	"edwin/internal/messaging/domain/model"
	"edwin/internal/shared/database"
	apperrors "edwin/internal/shared/errors"
	"edwin/internal/shared/eventbus"
	"edwin/internal/shared/pagination"
	wsmodel "edwin/internal/workspace/domain/model"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CreateConversationRequest is the body of POST /workspaces/:id/conversations.
type CreateConversationRequest struct {
	Name           string   `json:"name"`
	ParticipantIDs []string `json:"participantIds"`
}

// AddParticipantRequest is the body of POST /conversations/:id/participants.
type AddParticipantRequest struct {
	UserID string `json:"userId"`
}

// CreateConversation starts a group thread. The creator is always a
// participant and every participant must belong to the workspace.
func (uc *MessagingUsecase) CreateConversation(ctx context.Context, workspaceID, callerID primitive.ObjectID, req CreateConversationRequest) (*model.Conversation, error) {
	ws, err := uc.workspaces.RequireMember(ctx, workspaceID, callerID)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, apperrors.NewValidationError("name is required").WithDetail("field", "name")
	}
	if utf8.RuneCountInString(name) > model.MaxNameLength {
		return nil, apperrors.NewValidationError("name must be at most 100 characters").WithDetail("field", "name")
	}
	ids, err := database.ParseObjectIDs("participantIds", req.ParticipantIDs)
	if err != nil {
		return nil, err
	}
	participants := database.UniqueIDs(append([]primitive.ObjectID{callerID}, ids...))
	if len(participants) < 2 {
		return nil, model.ErrTooFewParticipants
	}
	for _, p := range participants {
		if !ws.IsMember(p) {
			return nil, model.ErrParticipantNotMember
		}
	}

	conv := &model.Conversation{
		Workspace:    workspaceID,
		Name:         name,
		Participants: participants,
		CreatedBy:    callerID,
	}
	if err := uc.conversations.Create(ctx, conv); err != nil {
		return nil, err
	}
	return conv, nil
}

// ListConversations returns the caller's conversations, most recent first.
func (uc *MessagingUsecase) ListConversations(ctx context.Context, workspaceID, callerID primitive.ObjectID) ([]*model.Conversation, error) {
	if _, err := uc.workspaces.RequireMember(ctx, workspaceID, callerID); err != nil {
		return nil, err
	}
	return uc.conversations.ListByParticipant(ctx, workspaceID, callerID)
}

func (uc *MessagingUsecase) participantConversation(ctx context.Context, id, callerID primitive.ObjectID) (*model.Conversation, error) {
	conv, err := uc.conversations.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !conv.HasParticipant(callerID) {
		return nil, model.ErrNotParticipant
	}
	return conv, nil
}

// Send posts to a conversation and bumps its last message fields.
func (uc *MessagingUsecase) Send(ctx context.Context, conversationID, callerID primitive.ObjectID, req SendRequest) (*model.Message, error) {
	conv, err := uc.participantConversation(ctx, conversationID, callerID)
	if err != nil {
		return nil, err
	}
	content, err := validContent(req.Content)
	if err != nil {
		return nil, err
	}

	msg := &model.Message{
		Workspace:    conv.Workspace,
		Sender:       callerID,
		Conversation: &conv.ID,
		Content:      content,
		ReadBy:       []primitive.ObjectID{callerID},
	}
	if err := uc.messages.Create(ctx, msg); err != nil {
		return nil, err
	}
	if err := uc.conversations.Touch(ctx, conv.ID, msg.CreatedAt, model.Preview(content)); err != nil {
		return nil, err
	}
	uc.publish(ctx, msg, conv.Participants)
	return msg, nil
}

// Messages returns one page of a conversation in insertion order.
func (uc *MessagingUsecase) Messages(ctx context.Context, conversationID, callerID primitive.ObjectID, page pagination.Params) ([]*model.Message, pagination.Pagination, error) {
	if _, err := uc.participantConversation(ctx, conversationID, callerID); err != nil {
		return nil, pagination.Pagination{}, err
	}
	items, total, err := uc.messages.ListConversation(ctx, conversationID, page)
	if err != nil {
		return nil, pagination.Pagination{}, err
	}
	return items, pagination.NewPagination(page, total), nil
}

// AddParticipant lets a participant bring in another workspace member.
func (uc *MessagingUsecase) AddParticipant(ctx context.Context, conversationID, callerID primitive.ObjectID, req AddParticipantRequest) (*model.Conversation, error) {
	conv, err := uc.participantConversation(ctx, conversationID, callerID)
	if err != nil {
		return nil, err
	}
	userID, err := database.ParseObjectID("userId", req.UserID)
	if err != nil {
		return nil, err
	}
	ws, err := uc.workspaces.RequireMember(ctx, conv.Workspace, callerID)
	if err != nil {
		return nil, err
	}
	if !ws.IsMember(userID) {
		return nil, model.ErrParticipantNotMember
	}
	return uc.conversations.AddParticipant(ctx, conversationID, userID)
}

// Leave removes the caller from a conversation.
func (uc *MessagingUsecase) Leave(ctx context.Context, conversationID, callerID primitive.ObjectID) error {
	if _, err := uc.participantConversation(ctx, conversationID, callerID); err != nil {
		return err
	}
	return uc.conversations.RemoveParticipant(ctx, conversationID, callerID)
}

// HandleMemberRemoved drops a departed workspace member from its
// conversations.
func (uc *MessagingUsecase) HandleMemberRemoved(ctx context.Context, event eventbus.Event) error {
	payload, ok := event.Data().(wsmodel.MemberEvent)
	if !ok {
		return nil
	}
	return uc.conversations.RemoveFromWorkspace(ctx, payload.Workspace, payload.User)
}
