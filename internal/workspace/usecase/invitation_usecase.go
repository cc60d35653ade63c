package usecase

import (
	"context"
	"strings"
	"time"

	authmodel "edwin/internal/auth/domain/model"
	apperrors "edwin/internal/shared/errors"
	"edwin/internal/shared/logger"
	"edwin/internal/workspace/domain/model"
	"edwin/internal/workspace/domain/repository"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// InviteRequest is the body of POST /workspaces/:id/invitations.
type InviteRequest struct {
	Email string `json:"email"`
	Role  string `json:"role"`
}

// InvitationUsecase implements the invitation lifecycle.
type InvitationUsecase struct {
	workspaces  *WorkspaceUsecase
	invitations repository.InvitationRepository
	notifier    InvitationNotifier
	ttl         time.Duration
	acceptURL   string
	log         logger.Logger
	now         func() time.Time
}

// NewInvitationUsecase wires invitations. acceptBaseURL is the public app
// URL the token is appended to.
func NewInvitationUsecase(
	workspaces *WorkspaceUsecase,
	invitations repository.InvitationRepository,
	ttl time.Duration,
	acceptBaseURL string,
	log logger.Logger,
) *InvitationUsecase {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &InvitationUsecase{
		workspaces:  workspaces,
		invitations: invitations,
		ttl:         ttl,
		acceptURL:   strings.TrimRight(acceptBaseURL, "/") + "/invitations/",
		log:         log.WithComponent("invitations"),
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// SetNotifier installs the invitation email sender.
func (uc *InvitationUsecase) SetNotifier(n InvitationNotifier) { uc.notifier = n }

// Invite creates a pending invitation, enforcing the plan's member limit.
func (uc *InvitationUsecase) Invite(ctx context.Context, workspaceID, callerID primitive.ObjectID, req InviteRequest) (*model.Invitation, error) {
	ws, err := uc.workspaces.RequireRole(ctx, workspaceID, callerID, model.RoleOwner, model.RoleAdmin)
	if err != nil {
		return nil, err
	}

	email := authmodel.NormalizeEmail(req.Email)
	if email == "" || !strings.Contains(email, "@") {
		return nil, apperrors.NewValidationError("a valid email is required").WithDetail("field", "email")
	}
	if req.Role == "" {
		req.Role = model.RoleMember
	}
	if !model.ValidMemberRole(req.Role) {
		return nil, apperrors.NewValidationError("role must be admin or member").WithDetail("field", "role")
	}

	members, err := uc.workspaces.users.GetByIDs(ctx, ws.MemberIDs())
	if err != nil {
		return nil, err
	}
	for _, m := range members {
		if m.Email == email {
			return nil, model.ErrAlreadyMember
		}
	}
	if _, err := uc.invitations.FindPending(ctx, workspaceID, email); err == nil {
		return nil, model.ErrInvitationOutstanding
	} else if !apperrors.IsNotFound(err) {
		return nil, err
	}

	pending, err := uc.invitations.CountPending(ctx, workspaceID)
	if err != nil {
		return nil, err
	}
	if !ws.Limits().AllowsMembers(len(ws.Members)+int(pending), 1) {
		return nil, model.ErrMemberLimit
	}

	inv := &model.Invitation{
		Workspace: workspaceID,
		Email:     email,
		Role:      req.Role,
		Token:     uuid.NewString(),
		InvitedBy: callerID,
		Status:    model.InvitationPending,
		ExpiresAt: uc.now().Add(uc.ttl),
	}
	if err := uc.invitations.Create(ctx, inv); err != nil {
		return nil, err
	}

	uc.notify(ctx, ws, inv, callerID)
	return inv, nil
}

func (uc *InvitationUsecase) notify(ctx context.Context, ws *model.Workspace, inv *model.Invitation, inviterID primitive.ObjectID) {
	if uc.notifier == nil {
		return
	}
	inviter := "A teammate"
	if u, err := uc.workspaces.users.GetByID(ctx, inviterID); err == nil {
		inviter = u.Name
	}
	err := uc.notifier.SendInvitation(ctx, InvitationEmail{
		To:            inv.Email,
		WorkspaceName: ws.Name,
		InviterName:   inviter,
		Role:          inv.Role,
		AcceptURL:     uc.acceptURL + inv.Token,
		ExpiresAt:     inv.ExpiresAt,
	})
	if err != nil {
		uc.log.WithContext(ctx).Warnf("invitation email to %s failed: %v", inv.Email, err)
	}
}

// List returns pending invitations; owner or admin only.
func (uc *InvitationUsecase) List(ctx context.Context, workspaceID, callerID primitive.ObjectID) ([]*model.Invitation, error) {
	if _, err := uc.workspaces.RequireRole(ctx, workspaceID, callerID, model.RoleOwner, model.RoleAdmin); err != nil {
		return nil, err
	}
	return uc.invitations.ListPending(ctx, workspaceID)
}

// Revoke cancels a pending invitation; owner or admin only.
func (uc *InvitationUsecase) Revoke(ctx context.Context, workspaceID, callerID, invitationID primitive.ObjectID) error {
	if _, err := uc.workspaces.RequireRole(ctx, workspaceID, callerID, model.RoleOwner, model.RoleAdmin); err != nil {
		return err
	}
	inv, err := uc.invitations.GetByID(ctx, invitationID)
	if err != nil {
		return err
	}
	if inv.Workspace != workspaceID {
		return model.ErrInvitationNotFound
	}
	ok, err := uc.invitations.SetStatus(ctx, invitationID, model.InvitationPending, model.InvitationRevoked)
	if err != nil {
		return err
	}
	if !ok {
		return model.ErrInvitationNotPending
	}
	return nil
}

// Accept joins the caller to the invitation's workspace.
func (uc *InvitationUsecase) Accept(ctx context.Context, token string, callerID primitive.ObjectID, callerEmail string) (*model.Workspace, error) {
	if token == "" {
		return nil, model.ErrInvitationNotFound
	}
	inv, err := uc.invitations.GetByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if inv.Status != model.InvitationPending {
		return nil, model.ErrInvitationNotPending
	}
	if inv.Expired(uc.now()) {
		if _, err := uc.invitations.SetStatus(ctx, inv.ID, model.InvitationPending, model.InvitationExpired); err != nil {
			uc.log.WithContext(ctx).Warnf("failed to mark invitation %s expired: %v", inv.ID.Hex(), err)
		}
		return nil, model.ErrInvitationExpired
	}
	if !strings.EqualFold(strings.TrimSpace(callerEmail), inv.Email) {
		return nil, model.ErrInvitationEmail
	}

	ws, err := uc.workspaces.workspaces.GetByID(ctx, inv.Workspace)
	if err != nil {
		return nil, err
	}
	// The invitation stays pending until the member is in.
	if !ws.IsMember(callerID) {
		if err := uc.workspaces.AddMember(ctx, ws, callerID, inv.Role); err != nil {
			return nil, err
		}
	}
	ok, err := uc.invitations.SetStatus(ctx, inv.ID, model.InvitationPending, model.InvitationAccepted)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, model.ErrInvitationNotPending
	}
	return uc.workspaces.workspaces.GetByID(ctx, ws.ID)
}
