package usecase

import (
	"context"
	"time"

	authmodel "edwin/internal/auth/domain/model"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserStore is the slice of the user repository the workspace module needs.
type UserStore interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (*authmodel.User, error)
	GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]*authmodel.User, error)
	AddWorkspace(ctx context.Context, userID, workspaceID primitive.ObjectID) error
	RemoveWorkspace(ctx context.Context, userID, workspaceID primitive.ObjectID) error
	RemoveWorkspaceFromAll(ctx context.Context, workspaceID primitive.ObjectID) error
}

// ProjectCleaner deletes everything under a workspace's projects.
type ProjectCleaner interface {
	DeleteWorkspaceProjects(ctx context.Context, workspaceID primitive.ObjectID) error
}

// InvitationEmail is what the notifier needs to render an invitation.
type InvitationEmail struct {
	To            string
	WorkspaceName string
	InviterName   string
	Role          string
	AcceptURL     string
	ExpiresAt     time.Time
}

// InvitationNotifier delivers invitation emails.
type InvitationNotifier interface {
	SendInvitation(ctx context.Context, email InvitationEmail) error
}
