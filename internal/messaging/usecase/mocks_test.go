package usecase_test

import (
	"context"
	"time"

	"edwin/internal/messaging/domain/model"
	"edwin/internal/messaging/domain/repository"
	"edwin/internal/shared/pagination"
	wsmodel "edwin/internal/workspace/domain/model"

	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type staticWorkspaces struct {
	ws *wsmodel.Workspace
}

func (s *staticWorkspaces) RequireMember(_ context.Context, workspaceID, userID primitive.ObjectID) (*wsmodel.Workspace, error) {
	if s.ws.ID != workspaceID {
		return nil, wsmodel.ErrWorkspaceNotFound
	}
	if !s.ws.IsMember(userID) {
		return nil, wsmodel.ErrNotMember
	}
	return s.ws, nil
}

type mockMessageRepo struct {
	mock.Mock
	repository.MessageRepository
}

func (m *mockMessageRepo) Create(ctx context.Context, msg *model.Message) error {
	args := m.Called(ctx, msg)
	msg.ID = primitive.NewObjectID()
	msg.CreatedAt = time.Now().UTC()
	return args.Error(0)
}

func (m *mockMessageRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*model.Message, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Message), args.Error(1)
}

func (m *mockMessageRepo) ListDirect(ctx context.Context, workspaceID, a, b primitive.ObjectID, page pagination.Params) ([]*model.Message, int64, error) {
	args := m.Called(ctx, workspaceID, a, b, page)
	return args.Get(0).([]*model.Message), args.Get(1).(int64), args.Error(2)
}

func (m *mockMessageRepo) MarkRead(ctx context.Context, id, userID primitive.ObjectID) (*model.Message, error) {
	args := m.Called(ctx, id, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Message), args.Error(1)
}

func (m *mockMessageRepo) CountUnreadDirect(ctx context.Context, workspaceID, userID primitive.ObjectID) (int64, error) {
	args := m.Called(ctx, workspaceID, userID)
	return args.Get(0).(int64), args.Error(1)
}

type mockConversationRepo struct {
	mock.Mock
	repository.ConversationRepository
}

func (m *mockConversationRepo) Create(ctx context.Context, c *model.Conversation) error {
	args := m.Called(ctx, c)
	c.ID = primitive.NewObjectID()
	return args.Error(0)
}

func (m *mockConversationRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*model.Conversation, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Conversation), args.Error(1)
}

func (m *mockConversationRepo) Touch(ctx context.Context, id primitive.ObjectID, at time.Time, preview string) error {
	return m.Called(ctx, id, at, preview).Error(0)
}

func (m *mockConversationRepo) AddParticipant(ctx context.Context, id, userID primitive.ObjectID) (*model.Conversation, error) {
	args := m.Called(ctx, id, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Conversation), args.Error(1)
}

func (m *mockConversationRepo) RemoveParticipant(ctx context.Context, id, userID primitive.ObjectID) error {
	return m.Called(ctx, id, userID).Error(0)
}

func (m *mockConversationRepo) RemoveFromWorkspace(ctx context.Context, workspaceID, userID primitive.ObjectID) error {
	return m.Called(ctx, workspaceID, userID).Error(0)
}
