package repository

import (
	"context"
	"time"

	"edwin/internal/messaging/domain/model"
	"edwin/internal/shared/pagination"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MessageRepository persists direct and group messages.
type MessageRepository interface {
	Create(ctx context.Context, m *model.Message) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*model.Message, error)
	// ListDirect returns the thread between a and b in insertion order.
	ListDirect(ctx context.Context, workspaceID, a, b primitive.ObjectID, page pagination.Params) ([]*model.Message, int64, error)
	ListConversation(ctx context.Context, conversationID primitive.ObjectID, page pagination.Params) ([]*model.Message, int64, error)
	MarkRead(ctx context.Context, id, userID primitive.ObjectID) (*model.Message, error)
	CountUnreadDirect(ctx context.Context, workspaceID, userID primitive.ObjectID) (int64, error)
}

// ConversationRepository persists group conversations.
type ConversationRepository interface {
	Create(ctx context.Context, c *model.Conversation) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*model.Conversation, error)
	// ListByParticipant sorts by lastMessageAt, newest first.
	ListByParticipant(ctx context.Context, workspaceID, userID primitive.ObjectID) ([]*model.Conversation, error)
	Touch(ctx context.Context, id primitive.ObjectID, at time.Time, preview string) error
	AddParticipant(ctx context.Context, id, userID primitive.ObjectID) (*model.Conversation, error)
	RemoveParticipant(ctx context.Context, id, userID primitive.ObjectID) error
	// RemoveFromWorkspace drops userID from every conversation in a workspace.
	RemoveFromWorkspace(ctx context.Context, workspaceID, userID primitive.ObjectID) error
}
