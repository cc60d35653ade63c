package usecase_test

import (
	"context"

	authmodel "edwin/internal/auth/domain/model"
	"edwin/internal/shared/eventbus"
	"edwin/internal/workspace/domain/model"
	"edwin/internal/workspace/usecase"

	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type mockWorkspaceRepo struct{ mock.Mock }

func (m *mockWorkspaceRepo) Create(ctx context.Context, ws *model.Workspace) error {
	args := m.Called(ctx, ws)
	if ws.ID.IsZero() {
		ws.ID = primitive.NewObjectID()
	}
	return args.Error(0)
}

func (m *mockWorkspaceRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*model.Workspace, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Workspace), args.Error(1)
}

func (m *mockWorkspaceRepo) ListByMember(ctx context.Context, userID primitive.ObjectID) ([]*model.Workspace, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]*model.Workspace), args.Error(1)
}

func (m *mockWorkspaceRepo) Update(ctx context.Context, id primitive.ObjectID, update model.WorkspaceUpdate) (*model.Workspace, error) {
	args := m.Called(ctx, id, update)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Workspace), args.Error(1)
}

func (m *mockWorkspaceRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockWorkspaceRepo) AddMember(ctx context.Context, id primitive.ObjectID, member model.Member) error {
	return m.Called(ctx, id, member).Error(0)
}

func (m *mockWorkspaceRepo) SetMemberRole(ctx context.Context, id, userID primitive.ObjectID, role string) error {
	return m.Called(ctx, id, userID, role).Error(0)
}

func (m *mockWorkspaceRepo) RemoveMember(ctx context.Context, id, userID primitive.ObjectID) error {
	return m.Called(ctx, id, userID).Error(0)
}

func (m *mockWorkspaceRepo) GetByStripeSubscriptionID(ctx context.Context, subscriptionID string) (*model.Workspace, error) {
	args := m.Called(ctx, subscriptionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Workspace), args.Error(1)
}

func (m *mockWorkspaceRepo) GetByStripeCustomerID(ctx context.Context, customerID string) (*model.Workspace, error) {
	args := m.Called(ctx, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Workspace), args.Error(1)
}

func (m *mockWorkspaceRepo) UpdateSubscription(ctx context.Context, id primitive.ObjectID, sub model.Subscription) error {
	return m.Called(ctx, id, sub).Error(0)
}

func (m *mockWorkspaceRepo) ListByPlan(ctx context.Context, plan string) ([]*model.Workspace, error) {
	args := m.Called(ctx, plan)
	return args.Get(0).([]*model.Workspace), args.Error(1)
}

func (m *mockWorkspaceRepo) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockWorkspaceRepo) PlanDistribution(ctx context.Context) (map[string]int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(map[string]int64), args.Error(1)
}

type mockInvitationRepo struct{ mock.Mock }

func (m *mockInvitationRepo) Create(ctx context.Context, inv *model.Invitation) error {
	return m.Called(ctx, inv).Error(0)
}

func (m *mockInvitationRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*model.Invitation, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Invitation), args.Error(1)
}

func (m *mockInvitationRepo) GetByToken(ctx context.Context, token string) (*model.Invitation, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Invitation), args.Error(1)
}

func (m *mockInvitationRepo) ListPending(ctx context.Context, workspaceID primitive.ObjectID) ([]*model.Invitation, error) {
	args := m.Called(ctx, workspaceID)
	return args.Get(0).([]*model.Invitation), args.Error(1)
}

func (m *mockInvitationRepo) CountPending(ctx context.Context, workspaceID primitive.ObjectID) (int64, error) {
	args := m.Called(ctx, workspaceID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockInvitationRepo) FindPending(ctx context.Context, workspaceID primitive.ObjectID, email string) (*model.Invitation, error) {
	args := m.Called(ctx, workspaceID, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Invitation), args.Error(1)
}

func (m *mockInvitationRepo) SetStatus(ctx context.Context, id primitive.ObjectID, from, to string) (bool, error) {
	args := m.Called(ctx, id, from, to)
	return args.Bool(0), args.Error(1)
}

func (m *mockInvitationRepo) DeleteByWorkspace(ctx context.Context, workspaceID primitive.ObjectID) error {
	return m.Called(ctx, workspaceID).Error(0)
}

type mockUserStore struct{ mock.Mock }

func (m *mockUserStore) GetByID(ctx context.Context, id primitive.ObjectID) (*authmodel.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*authmodel.User), args.Error(1)
}

func (m *mockUserStore) GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]*authmodel.User, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).([]*authmodel.User), args.Error(1)
}

func (m *mockUserStore) AddWorkspace(ctx context.Context, userID, workspaceID primitive.ObjectID) error {
	return m.Called(ctx, userID, workspaceID).Error(0)
}

func (m *mockUserStore) RemoveWorkspace(ctx context.Context, userID, workspaceID primitive.ObjectID) error {
	return m.Called(ctx, userID, workspaceID).Error(0)
}

func (m *mockUserStore) RemoveWorkspaceFromAll(ctx context.Context, workspaceID primitive.ObjectID) error {
	return m.Called(ctx, workspaceID).Error(0)
}

type mockProjectCleaner struct{ mock.Mock }

func (m *mockProjectCleaner) DeleteWorkspaceProjects(ctx context.Context, workspaceID primitive.ObjectID) error {
	return m.Called(ctx, workspaceID).Error(0)
}

type recordingNotifier struct {
	sent []usecase.InvitationEmail
}

func (r *recordingNotifier) SendInvitation(_ context.Context, e usecase.InvitationEmail) error {
	r.sent = append(r.sent, e)
	return nil
}

type recordingBus struct {
	eventbus.EventBusInterface
	events []eventbus.Event
}

func (b *recordingBus) PublishAndForget(_ context.Context, e eventbus.Event) {
	b.events = append(b.events, e)
}
