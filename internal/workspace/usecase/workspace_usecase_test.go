package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	authmodel "edwin/internal/auth/domain/model"
	"edwin/internal/shared/eventbus"
	apperrors "edwin/internal/shared/errors"
	"edwin/internal/workspace/domain/model"
	"edwin/internal/workspace/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type WorkspaceUsecaseTestSuite struct {
	suite.Suite
	ctx         context.Context
	workspaces  *mockWorkspaceRepo
	invitations *mockInvitationRepo
	users       *mockUserStore
	bus         *recordingBus
	uc          *usecase.WorkspaceUsecase

	owner, admin, member primitive.ObjectID
	ws                   *model.Workspace
}

func (s *WorkspaceUsecaseTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.workspaces = &mockWorkspaceRepo{}
	s.invitations = &mockInvitationRepo{}
	s.users = &mockUserStore{}
	s.bus = &recordingBus{}
	s.uc = usecase.NewWorkspaceUsecase(s.workspaces, s.invitations, s.users, s.bus, nil)

	s.owner, s.admin, s.member = primitive.NewObjectID(), primitive.NewObjectID(), primitive.NewObjectID()
	s.ws = &model.Workspace{
		ID:    primitive.NewObjectID(),
		Name:  "Acme",
		Owner: s.owner,
		Members: []model.Member{
			{User: s.owner, Role: model.RoleOwner},
			{User: s.admin, Role: model.RoleAdmin},
			{User: s.member, Role: model.RoleMember},
		},
		Subscription: model.DefaultSubscription(model.PlanFree),
	}
	s.workspaces.On("GetByID", s.ctx, s.ws.ID).Return(s.ws, nil).Maybe()
}

func (s *WorkspaceUsecaseTestSuite) TestCreate_OwnerMemberAndUserLink() {
	s.workspaces.On("Create", s.ctx, mock.MatchedBy(func(ws *model.Workspace) bool {
		return ws.Owner == s.owner && len(ws.Members) == 1 && ws.Members[0].Role == model.RoleOwner &&
			ws.Subscription.Plan == model.PlanFree && ws.Subscription.Status == model.StatusActive
	})).Return(nil)
	s.users.On("AddWorkspace", s.ctx, s.owner, mock.AnythingOfType("primitive.ObjectID")).Return(nil)

	ws, err := s.uc.Create(s.ctx, s.owner, usecase.CreateWorkspaceRequest{Name: "  Acme  "})
	require.NoError(s.T(), err)
	assert.Equal(s.T(), "Acme", ws.Name)
	s.users.AssertExpectations(s.T())
}

func (s *WorkspaceUsecaseTestSuite) TestCreate_UsesDefaultPlan() {
	s.uc.SetDefaultPlan(func(context.Context) string { return model.PlanPro })
	s.workspaces.On("Create", s.ctx, mock.Anything).Return(nil)
	s.users.On("AddWorkspace", s.ctx, s.owner, mock.Anything).Return(nil)

	ws, err := s.uc.Create(s.ctx, s.owner, usecase.CreateWorkspaceRequest{Name: "Acme"})
	require.NoError(s.T(), err)
	assert.Equal(s.T(), model.PlanPro, ws.Subscription.Plan)
}

func (s *WorkspaceUsecaseTestSuite) TestCreate_RequiresName() {
	_, err := s.uc.Create(s.ctx, s.owner, usecase.CreateWorkspaceRequest{Name: "   "})
	assert.True(s.T(), apperrors.IsValidation(err))
}

func (s *WorkspaceUsecaseTestSuite) TestGet_NonMemberForbidden() {
	_, err := s.uc.Get(s.ctx, s.ws.ID, primitive.NewObjectID())
	assert.Equal(s.T(), 403, apperrors.HTTPStatus(err))
}

func (s *WorkspaceUsecaseTestSuite) TestUpdate_MemberForbidden() {
	name := "New"
	_, err := s.uc.Update(s.ctx, s.ws.ID, s.member, model.WorkspaceUpdate{Name: &name})
	assert.ErrorIs(s.T(), err, model.ErrInsufficientRole)
}

func (s *WorkspaceUsecaseTestSuite) TestDelete_OwnerOnlyAndCascades() {
	err := s.uc.Delete(s.ctx, s.ws.ID, s.admin)
	assert.ErrorIs(s.T(), err, model.ErrOwnerRequired)

	cleaner := &mockProjectCleaner{}
	s.uc.SetProjectCleaner(cleaner)
	cleaner.On("DeleteWorkspaceProjects", s.ctx, s.ws.ID).Return(nil)
	s.invitations.On("DeleteByWorkspace", s.ctx, s.ws.ID).Return(nil)
	s.users.On("RemoveWorkspaceFromAll", s.ctx, s.ws.ID).Return(nil)
	s.workspaces.On("Delete", s.ctx, s.ws.ID).Return(nil)

	require.NoError(s.T(), s.uc.Delete(s.ctx, s.ws.ID, s.owner))
	cleaner.AssertExpectations(s.T())
	s.users.AssertExpectations(s.T())
}

func (s *WorkspaceUsecaseTestSuite) TestRemoveMember_OwnerCannotBeRemoved() {
	err := s.uc.RemoveMember(s.ctx, s.ws.ID, s.admin, s.owner)
	assert.ErrorIs(s.T(), err, model.ErrCannotRemoveOwner)

	err = s.uc.RemoveMember(s.ctx, s.ws.ID, s.owner, s.owner)
	assert.ErrorIs(s.T(), err, model.ErrCannotRemoveOwner)
	s.workspaces.AssertNotCalled(s.T(), "RemoveMember", mock.Anything, mock.Anything, mock.Anything)
}

func (s *WorkspaceUsecaseTestSuite) TestRemoveMember_MemberCannotRemoveOthers() {
	err := s.uc.RemoveMember(s.ctx, s.ws.ID, s.member, s.admin)
	assert.ErrorIs(s.T(), err, model.ErrInsufficientRole)
}

func (s *WorkspaceUsecaseTestSuite) TestRemoveMember_LeaveSelf() {
	s.workspaces.On("RemoveMember", s.ctx, s.ws.ID, s.member).Return(nil)
	s.users.On("RemoveWorkspace", s.ctx, s.member, s.ws.ID).Return(nil)

	require.NoError(s.T(), s.uc.RemoveMember(s.ctx, s.ws.ID, s.member, s.member))
	require.Len(s.T(), s.bus.events, 1)
	assert.Equal(s.T(), eventbus.EventTypeMemberRemoved, s.bus.events[0].Type())
}

func (s *WorkspaceUsecaseTestSuite) TestUpdateMemberRole() {
	err := s.uc.UpdateMemberRole(s.ctx, s.ws.ID, s.admin, s.owner, model.RoleMember)
	assert.ErrorIs(s.T(), err, model.ErrCannotChangeOwner)

	err = s.uc.UpdateMemberRole(s.ctx, s.ws.ID, s.admin, s.member, model.RoleOwner)
	assert.True(s.T(), apperrors.IsValidation(err))

	s.workspaces.On("SetMemberRole", s.ctx, s.ws.ID, s.member, model.RoleAdmin).Return(nil)
	require.NoError(s.T(), s.uc.UpdateMemberRole(s.ctx, s.ws.ID, s.admin, s.member, model.RoleAdmin))
}

func (s *WorkspaceUsecaseTestSuite) TestListMembers_JoinsProfiles() {
	s.users.On("GetByIDs", s.ctx, s.ws.MemberIDs()).Return([]*authmodel.User{
		{ID: s.owner, Name: "Olive", Email: "olive@example.com"},
	}, nil)

	views, err := s.uc.ListMembers(s.ctx, s.ws.ID, s.member)
	require.NoError(s.T(), err)
	require.Len(s.T(), views, 3)
	assert.Equal(s.T(), "Olive", views[0].Name)
	assert.Equal(s.T(), "", views[1].Name)
}

func (s *WorkspaceUsecaseTestSuite) TestSubscriptionStore_SavePublishes() {
	sub := model.Subscription{Plan: model.PlanPro, Status: model.StatusActive, StripeCustomerID: "cus_1"}
	s.workspaces.On("UpdateSubscription", s.ctx, s.ws.ID, sub).Return(nil)

	require.NoError(s.T(), s.uc.Subscriptions().Save(s.ctx, s.ws.ID, sub))
	require.Len(s.T(), s.bus.events, 1)
	assert.Equal(s.T(), eventbus.EventTypeSubscriptionUpdated, s.bus.events[0].Type())
	payload, ok := s.bus.events[0].Data().(model.SubscriptionEvent)
	require.True(s.T(), ok)
	assert.Equal(s.T(), s.ws.MemberIDs(), payload.Members)
	assert.Equal(s.T(), model.PlanPro, payload.Subscription.Plan)
}

func (s *WorkspaceUsecaseTestSuite) TestSubscriptionStore_SaveSucceedsWhenAnnouncementFails() {
	gone := primitive.NewObjectID()
	sub := model.Subscription{Plan: model.PlanPro, Status: model.StatusActive}
	s.workspaces.On("UpdateSubscription", s.ctx, gone, sub).Return(nil)
	s.workspaces.On("GetByID", s.ctx, gone).Return(nil, model.ErrWorkspaceNotFound)

	require.NoError(s.T(), s.uc.Subscriptions().Save(s.ctx, gone, sub))
	assert.Empty(s.T(), s.bus.events)
}

func (s *WorkspaceUsecaseTestSuite) TestAddMember_AnnouncesToAllMembers() {
	newcomer := primitive.NewObjectID()
	s.workspaces.On("AddMember", s.ctx, s.ws.ID, mock.Anything).Return(nil)
	s.users.On("AddWorkspace", s.ctx, newcomer, s.ws.ID).Return(nil)

	require.NoError(s.T(), s.uc.AddMember(s.ctx, s.ws, newcomer, model.RoleMember))
	require.Len(s.T(), s.bus.events, 1)
	assert.Equal(s.T(), eventbus.EventTypeMemberJoined, s.bus.events[0].Type())
	payload := s.bus.events[0].Data().(model.MemberEvent)
	assert.ElementsMatch(s.T(), append(s.ws.MemberIDs(), newcomer), payload.Members)
}

func TestWorkspaceUsecaseTestSuite(t *testing.T) {
	suite.Run(t, new(WorkspaceUsecaseTestSuite))
}

type InvitationUsecaseTestSuite struct {
	suite.Suite
	ctx         context.Context
	workspaces  *mockWorkspaceRepo
	invitations *mockInvitationRepo
	users       *mockUserStore
	notifier    *recordingNotifier
	uc          *usecase.InvitationUsecase

	owner, member primitive.ObjectID
	ws            *model.Workspace
}

func (s *InvitationUsecaseTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.workspaces = &mockWorkspaceRepo{}
	s.invitations = &mockInvitationRepo{}
	s.users = &mockUserStore{}
	s.notifier = &recordingNotifier{}

	wsUC := usecase.NewWorkspaceUsecase(s.workspaces, s.invitations, s.users, &recordingBus{}, nil)
	s.uc = usecase.NewInvitationUsecase(wsUC, s.invitations, 7*24*time.Hour, "https://app.example.com/", nil)
	s.uc.SetNotifier(s.notifier)

	s.owner, s.member = primitive.NewObjectID(), primitive.NewObjectID()
	s.ws = &model.Workspace{
		ID:           primitive.NewObjectID(),
		Name:         "Acme",
		Owner:        s.owner,
		Members:      []model.Member{{User: s.owner, Role: model.RoleOwner}, {User: s.member, Role: model.RoleMember}},
		Subscription: model.DefaultSubscription(model.PlanFree),
	}
	s.workspaces.On("GetByID", s.ctx, s.ws.ID).Return(s.ws, nil).Maybe()
	s.users.On("GetByIDs", s.ctx, mock.Anything).Return([]*authmodel.User{
		{ID: s.owner, Email: "owner@example.com"},
		{ID: s.member, Email: "member@example.com"},
	}, nil).Maybe()
	s.users.On("GetByID", s.ctx, s.owner).Return(&authmodel.User{ID: s.owner, Name: "Olive"}, nil).Maybe()
}

func (s *InvitationUsecaseTestSuite) TestInvite_Success() {
	s.invitations.On("FindPending", s.ctx, s.ws.ID, "new@example.com").Return(nil, model.ErrInvitationNotFound)
	s.invitations.On("CountPending", s.ctx, s.ws.ID).Return(int64(0), nil)
	s.invitations.On("Create", s.ctx, mock.Anything).Return(nil)

	inv, err := s.uc.Invite(s.ctx, s.ws.ID, s.owner, usecase.InviteRequest{Email: "New@Example.com"})
	require.NoError(s.T(), err)
	assert.Equal(s.T(), "new@example.com", inv.Email)
	assert.Equal(s.T(), model.RoleMember, inv.Role)
	assert.Equal(s.T(), model.InvitationPending, inv.Status)
	assert.NotEmpty(s.T(), inv.Token)
	assert.WithinDuration(s.T(), time.Now().Add(7*24*time.Hour), inv.ExpiresAt, time.Minute)

	require.Len(s.T(), s.notifier.sent, 1)
	assert.Equal(s.T(), "https://app.example.com/invitations/"+inv.Token, s.notifier.sent[0].AcceptURL)
	assert.Equal(s.T(), "Olive", s.notifier.sent[0].InviterName)
}

func (s *InvitationUsecaseTestSuite) TestInvite_MemberRoleForbidden() {
	_, err := s.uc.Invite(s.ctx, s.ws.ID, s.member, usecase.InviteRequest{Email: "x@example.com"})
	assert.Equal(s.T(), 403, apperrors.HTTPStatus(err))
}

func (s *InvitationUsecaseTestSuite) TestInvite_AlreadyMember() {
	_, err := s.uc.Invite(s.ctx, s.ws.ID, s.owner, usecase.InviteRequest{Email: "member@example.com"})
	assert.ErrorIs(s.T(), err, model.ErrAlreadyMember)
}

func (s *InvitationUsecaseTestSuite) TestInvite_MemberLimitCountsPending() {
	s.invitations.On("FindPending", s.ctx, s.ws.ID, "new@example.com").Return(nil, model.ErrInvitationNotFound)
	s.invitations.On("CountPending", s.ctx, s.ws.ID).Return(int64(3), nil)

	_, err := s.uc.Invite(s.ctx, s.ws.ID, s.owner, usecase.InviteRequest{Email: "new@example.com"})
	assert.ErrorIs(s.T(), err, model.ErrMemberLimit)
	assert.Equal(s.T(), 403, apperrors.HTTPStatus(err))
}

func (s *InvitationUsecaseTestSuite) TestAccept_Expired() {
	inv := &model.Invitation{
		ID: primitive.NewObjectID(), Workspace: s.ws.ID, Email: "new@example.com",
		Status: model.InvitationPending, ExpiresAt: time.Now().Add(-time.Hour), Token: "tok",
	}
	s.invitations.On("GetByToken", s.ctx, "tok").Return(inv, nil)
	s.invitations.On("SetStatus", s.ctx, inv.ID, model.InvitationPending, model.InvitationExpired).Return(true, nil)

	_, err := s.uc.Accept(s.ctx, "tok", primitive.NewObjectID(), "new@example.com")
	assert.Equal(s.T(), 410, apperrors.HTTPStatus(err))
	s.invitations.AssertExpectations(s.T())
}

func (s *InvitationUsecaseTestSuite) TestAccept_EmailMismatch() {
	inv := &model.Invitation{
		ID: primitive.NewObjectID(), Workspace: s.ws.ID, Email: "new@example.com",
		Status: model.InvitationPending, ExpiresAt: time.Now().Add(time.Hour), Token: "tok",
	}
	s.invitations.On("GetByToken", s.ctx, "tok").Return(inv, nil)

	_, err := s.uc.Accept(s.ctx, "tok", primitive.NewObjectID(), "other@example.com")
	assert.ErrorIs(s.T(), err, model.ErrInvitationEmail)
}

func (s *InvitationUsecaseTestSuite) TestAccept_NotPending() {
	inv := &model.Invitation{ID: primitive.NewObjectID(), Status: model.InvitationAccepted}
	s.invitations.On("GetByToken", s.ctx, "used").Return(inv, nil)

	_, err := s.uc.Accept(s.ctx, "used", primitive.NewObjectID(), "x@example.com")
	assert.Equal(s.T(), 409, apperrors.HTTPStatus(err))
}

func (s *InvitationUsecaseTestSuite) TestAccept_JoinsWorkspace() {
	newcomer := primitive.NewObjectID()
	inv := &model.Invitation{
		ID: primitive.NewObjectID(), Workspace: s.ws.ID, Email: "new@example.com", Role: model.RoleAdmin,
		Status: model.InvitationPending, ExpiresAt: time.Now().Add(time.Hour), Token: "tok",
	}
	s.invitations.On("GetByToken", s.ctx, "tok").Return(inv, nil)
	s.invitations.On("SetStatus", s.ctx, inv.ID, model.InvitationPending, model.InvitationAccepted).Return(true, nil)
	s.workspaces.On("AddMember", s.ctx, s.ws.ID, mock.MatchedBy(func(m model.Member) bool {
		return m.User == newcomer && m.Role == model.RoleAdmin
	})).Return(nil)
	s.users.On("AddWorkspace", s.ctx, newcomer, s.ws.ID).Return(nil)

	_, err := s.uc.Accept(s.ctx, "tok", newcomer, "NEW@example.com")
	require.NoError(s.T(), err)
	s.workspaces.AssertExpectations(s.T())
}

func (s *InvitationUsecaseTestSuite) TestAccept_MembershipFailureLeavesInvitationPending() {
	newcomer := primitive.NewObjectID()
	inv := &model.Invitation{
		ID: primitive.NewObjectID(), Workspace: s.ws.ID, Email: "new@example.com", Role: model.RoleMember,
		Status: model.InvitationPending, ExpiresAt: time.Now().Add(time.Hour), Token: "tok",
	}
	s.invitations.On("GetByToken", s.ctx, "tok").Return(inv, nil)
	s.workspaces.On("AddMember", s.ctx, s.ws.ID, mock.Anything).Return(errors.New("write conflict")).Once()

	_, err := s.uc.Accept(s.ctx, "tok", newcomer, "new@example.com")
	require.Error(s.T(), err)
	s.invitations.AssertNotCalled(s.T(), "SetStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)

	s.workspaces.On("AddMember", s.ctx, s.ws.ID, mock.Anything).Return(nil).Once()
	s.users.On("AddWorkspace", s.ctx, newcomer, s.ws.ID).Return(nil)
	s.invitations.On("SetStatus", s.ctx, inv.ID, model.InvitationPending, model.InvitationAccepted).Return(true, nil)

	_, err = s.uc.Accept(s.ctx, "tok", newcomer, "new@example.com")
	require.NoError(s.T(), err, "retry succeeds")
	s.invitations.AssertExpectations(s.T())
}

func (s *InvitationUsecaseTestSuite) TestRevoke_WrongWorkspace() {
	inv := &model.Invitation{ID: primitive.NewObjectID(), Workspace: primitive.NewObjectID()}
	s.invitations.On("GetByID", s.ctx, inv.ID).Return(inv, nil)

	err := s.uc.Revoke(s.ctx, s.ws.ID, s.owner, inv.ID)
	assert.ErrorIs(s.T(), err, model.ErrInvitationNotFound)
}

func TestInvitationUsecaseTestSuite(t *testing.T) {
	suite.Run(t, new(InvitationUsecaseTestSuite))
}
