package usecase

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"edwin/internal/shared/eventbus"
	apperrors "edwin/internal/shared/errors"
	"edwin/internal/shared/logger"
	"edwin/internal/workspace/domain/model"
	"edwin/internal/workspace/domain/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	maxWorkspaceName        = 100
	maxWorkspaceDescription = 1000
	eventSource             = "workspace"
)

// CreateWorkspaceRequest is the body of POST /workspaces.
type CreateWorkspaceRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// WorkspaceUsecase implements workspace and membership operations.
type WorkspaceUsecase struct {
	workspaces  repository.WorkspaceRepository
	invitations repository.InvitationRepository
	users       UserStore
	projects    ProjectCleaner
	bus         eventbus.EventBusInterface
	log         logger.Logger
	defaultPlan func(ctx context.Context) string
}

// NewWorkspaceUsecase wires the workspace usecase.
func NewWorkspaceUsecase(
	workspaces repository.WorkspaceRepository,
	invitations repository.InvitationRepository,
	users UserStore,
	bus eventbus.EventBusInterface,
	log logger.Logger,
) *WorkspaceUsecase {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &WorkspaceUsecase{
		workspaces:  workspaces,
		invitations: invitations,
		users:       users,
		bus:         bus,
		log:         log.WithComponent("workspace"),
		defaultPlan: func(context.Context) string { return model.PlanFree },
	}
}

// SetProjectCleaner installs the cascade used by Delete.
func (uc *WorkspaceUsecase) SetProjectCleaner(p ProjectCleaner) { uc.projects = p }

// SetDefaultPlan installs the source of the plan new workspaces start on.
func (uc *WorkspaceUsecase) SetDefaultPlan(f func(ctx context.Context) string) {
	if f != nil {
		uc.defaultPlan = f
	}
}

func validateWorkspaceFields(name, description *string) error {
	if name != nil {
		n := strings.TrimSpace(*name)
		if n == "" {
			return apperrors.NewValidationError("workspace name is required").WithDetail("field", "name")
		}
		if utf8.RuneCountInString(n) > maxWorkspaceName {
			return apperrors.NewValidationError("workspace name must be at most 100 characters").WithDetail("field", "name")
		}
		*name = n
	}
	if description != nil && utf8.RuneCountInString(*description) > maxWorkspaceDescription {
		return apperrors.NewValidationError("description must be at most 1000 characters").WithDetail("field", "description")
	}
	return nil
}

// RequireMember loads the workspace and checks that userID belongs to it.
func (uc *WorkspaceUsecase) RequireMember(ctx context.Context, workspaceID, userID primitive.ObjectID) (*model.Workspace, error) {
	ws, err := uc.workspaces.GetByID(ctx, workspaceID)
	if err != nil {
		return nil, err
	}
	if !ws.IsMember(userID) {
		return nil, model.ErrNotMember
	}
	return ws, nil
}

// RequireRole loads the workspace and checks that userID holds one of roles.
func (uc *WorkspaceUsecase) RequireRole(ctx context.Context, workspaceID, userID primitive.ObjectID, roles ...string) (*model.Workspace, error) {
	ws, err := uc.RequireMember(ctx, workspaceID, userID)
	if err != nil {
		return nil, err
	}
	if !ws.HasRole(userID, roles...) {
		return nil, model.ErrInsufficientRole
	}
	return ws, nil
}

// Create makes a workspace owned by userID on the default plan.
func (uc *WorkspaceUsecase) Create(ctx context.Context, userID primitive.ObjectID, req CreateWorkspaceRequest) (*model.Workspace, error) {
	if err := validateWorkspaceFields(&req.Name, &req.Description); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	ws := &model.Workspace{
		Name:         req.Name,
		Description:  req.Description,
		Owner:        userID,
		Members:      []model.Member{{User: userID, Role: model.RoleOwner, JoinedAt: now}},
		Subscription: model.DefaultSubscription(uc.defaultPlan(ctx)),
	}
	if err := uc.workspaces.Create(ctx, ws); err != nil {
		return nil, err
	}
	if err := uc.users.AddWorkspace(ctx, userID, ws.ID); err != nil {
		return nil, err
	}

	uc.log.WithContext(ctx).WithFields(map[string]interface{}{"workspace": ws.ID.Hex()}).Info("workspace created")
	return ws, nil
}

// ListMine returns the caller's workspaces.
func (uc *WorkspaceUsecase) ListMine(ctx context.Context, userID primitive.ObjectID) ([]*model.Workspace, error) {
	return uc.workspaces.ListByMember(ctx, userID)
}

// Get returns a workspace to one of its members.
func (uc *WorkspaceUsecase) Get(ctx context.Context, workspaceID, userID primitive.ObjectID) (*model.Workspace, error) {
	return uc.RequireMember(ctx, workspaceID, userID)
}

// Update merges name and description; owner or admin only.
func (uc *WorkspaceUsecase) Update(ctx context.Context, workspaceID, userID primitive.ObjectID, update model.WorkspaceUpdate) (*model.Workspace, error) {
	if _, err := uc.RequireRole(ctx, workspaceID, userID, model.RoleOwner, model.RoleAdmin); err != nil {
		return nil, err
	}
	if err := validateWorkspaceFields(update.Name, update.Description); err != nil {
		return nil, err
	}
	return uc.workspaces.Update(ctx, workspaceID, update)
}

// Delete removes a workspace and everything under it; owner only.
func (uc *WorkspaceUsecase) Delete(ctx context.Context, workspaceID, userID primitive.ObjectID) error {
	ws, err := uc.RequireMember(ctx, workspaceID, userID)
	if err != nil {
		return err
	}
	if ws.Owner != userID {
		return model.ErrOwnerRequired
	}

	if uc.projects != nil {
		if err := uc.projects.DeleteWorkspaceProjects(ctx, workspaceID); err != nil {
			return apperrors.WrapError(err, "failed to delete workspace projects")
		}
	}
	if err := uc.invitations.DeleteByWorkspace(ctx, workspaceID); err != nil {
		return err
	}
	if err := uc.users.RemoveWorkspaceFromAll(ctx, workspaceID); err != nil {
		return err
	}
	if err := uc.workspaces.Delete(ctx, workspaceID); err != nil {
		return err
	}

	uc.log.WithContext(ctx).WithFields(map[string]interface{}{"workspace": workspaceID.Hex()}).Info("workspace deleted")
	return nil
}

// ListMembers joins members with their public profile.
func (uc *WorkspaceUsecase) ListMembers(ctx context.Context, workspaceID, userID primitive.ObjectID) ([]model.MemberView, error) {
	ws, err := uc.RequireMember(ctx, workspaceID, userID)
	if err != nil {
		return nil, err
	}
	users, err := uc.users.GetByIDs(ctx, ws.MemberIDs())
	if err != nil {
		return nil, err
	}
	byID := make(map[primitive.ObjectID]int, len(users))
	for i, u := range users {
		byID[u.ID] = i
	}

	out := make([]model.MemberView, 0, len(ws.Members))
	for _, m := range ws.Members {
		view := model.MemberView{User: m.User, Role: m.Role, JoinedAt: m.JoinedAt}
		if i, ok := byID[m.User]; ok {
			view.Name = users[i].Name
			view.Email = users[i].Email
			view.Avatar = users[i].Avatar
		}
		out = append(out, view)
	}
	return out, nil
}

// UpdateMemberRole changes a member's role; the owner's role is fixed.
func (uc *WorkspaceUsecase) UpdateMemberRole(ctx context.Context, workspaceID, callerID, targetID primitive.ObjectID, role string) error {
	ws, err := uc.RequireRole(ctx, workspaceID, callerID, model.RoleOwner, model.RoleAdmin)
	if err != nil {
		return err
	}
	if !model.ValidMemberRole(role) {
		return apperrors.NewValidationError("role must be admin or member").WithDetail("field", "role")
	}
	if targetID == ws.Owner {
		return model.ErrCannotChangeOwner
	}
	if !ws.IsMember(targetID) {
		return model.ErrMemberNotFound
	}
	return uc.workspaces.SetMemberRole(ctx, workspaceID, targetID, role)
}

// RemoveMember removes targetID. Owners and admins may remove others and any
// member may remove themself. The owner can never be removed.
func (uc *WorkspaceUsecase) RemoveMember(ctx context.Context, workspaceID, callerID, targetID primitive.ObjectID) error {
	ws, err := uc.RequireMember(ctx, workspaceID, callerID)
	if err != nil {
		return err
	}
	if targetID == ws.Owner {
		return model.ErrCannotRemoveOwner
	}
	if callerID != targetID && !ws.CanManage(callerID) {
		return model.ErrInsufficientRole
	}
	if !ws.IsMember(targetID) {
		return model.ErrMemberNotFound
	}

	if err := uc.workspaces.RemoveMember(ctx, workspaceID, targetID); err != nil {
		return err
	}
	if err := uc.users.RemoveWorkspace(ctx, targetID, workspaceID); err != nil {
		return err
	}

	uc.publish(ctx, eventbus.EventTypeMemberRemoved, model.MemberEvent{
		Workspace: workspaceID,
		User:      targetID,
		Members:   ws.MemberIDs(),
	})
	return nil
}

// AddMember joins userID to the workspace; repeated calls are no-ops.
func (uc *WorkspaceUsecase) AddMember(ctx context.Context, ws *model.Workspace, userID primitive.ObjectID, role string) error {
	if err := uc.workspaces.AddMember(ctx, ws.ID, model.Member{User: userID, Role: role, JoinedAt: time.Now().UTC()}); err != nil {
		return err
	}
	if err := uc.users.AddWorkspace(ctx, userID, ws.ID); err != nil {
		return err
	}
	uc.publish(ctx, eventbus.EventTypeMemberJoined, model.MemberEvent{
		Workspace: ws.ID,
		User:      userID,
		Role:      role,
		Members:   append(ws.MemberIDs(), userID),
	})
	return nil
}

func (uc *WorkspaceUsecase) publish(ctx context.Context, eventType string, data interface{}) {
	if uc.bus == nil {
		return
	}
	uc.bus.PublishAndForget(ctx, eventbus.NewBasicEventWithSource(eventType, data, eventSource))
}
