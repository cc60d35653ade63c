package usecase

import (
	"context"

	authmodel "edwin/internal/auth/domain/model"
	wsmodel "edwin/internal/workspace/domain/model"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserDirectory is the slice of the user repository audiences are built from.
type UserDirectory interface {
	ListAll(ctx context.Context) ([]*authmodel.User, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*authmodel.User, error)
	GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]*authmodel.User, error)
}

// WorkspaceDirectory is the slice of the workspace repository audiences are
// built from.
type WorkspaceDirectory interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (*wsmodel.Workspace, error)
	ListByPlan(ctx context.Context, plan string) ([]*wsmodel.Workspace, error)
}
