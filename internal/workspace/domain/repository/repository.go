package repository

import (
	"context"

	"edwin/internal/workspace/domain/model"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// WorkspaceRepository persists workspaces and their embedded members and
// subscription.
type WorkspaceRepository interface {
	Create(ctx context.Context, ws *model.Workspace) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*model.Workspace, error)
	ListByMember(ctx context.Context, userID primitive.ObjectID) ([]*model.Workspace, error)
	Update(ctx context.Context, id primitive.ObjectID, update model.WorkspaceUpdate) (*model.Workspace, error)
	Delete(ctx context.Context, id primitive.ObjectID) error

	AddMember(ctx context.Context, id primitive.ObjectID, member model.Member) error
	SetMemberRole(ctx context.Context, id, userID primitive.ObjectID, role string) error
	RemoveMember(ctx context.Context, id, userID primitive.ObjectID) error

	GetByStripeSubscriptionID(ctx context.Context, subscriptionID string) (*model.Workspace, error)
	GetByStripeCustomerID(ctx context.Context, customerID string) (*model.Workspace, error)
	UpdateSubscription(ctx context.Context, id primitive.ObjectID, sub model.Subscription) error

	ListByPlan(ctx context.Context, plan string) ([]*model.Workspace, error)
	Count(ctx context.Context) (int64, error)
	PlanDistribution(ctx context.Context) (map[string]int64, error)
}

// InvitationRepository persists workspace invitations.
type InvitationRepository interface {
	Create(ctx context.Context, inv *model.Invitation) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*model.Invitation, error)
	GetByToken(ctx context.Context, token string) (*model.Invitation, error)
	ListPending(ctx context.Context, workspaceID primitive.ObjectID) ([]*model.Invitation, error)
	CountPending(ctx context.Context, workspaceID primitive.ObjectID) (int64, error)
	FindPending(ctx context.Context, workspaceID primitive.ObjectID, email string) (*model.Invitation, error)
	// SetStatus moves an invitation from one status to another and reports
	// whether it was still in the from status.
	SetStatus(ctx context.Context, id primitive.ObjectID, from, to string) (bool, error)
	DeleteByWorkspace(ctx context.Context, workspaceID primitive.ObjectID) error
}
