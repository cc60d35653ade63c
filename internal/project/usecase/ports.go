package usecase

import (
	"context"

	wsmodel "edwin/internal/workspace/domain/model"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// WorkspaceAccess resolves a workspace for one of its members.
type WorkspaceAccess interface {
	RequireMember(ctx context.Context, workspaceID, userID primitive.ObjectID) (*wsmodel.Workspace, error)
}

// DeletionHook removes data another module keeps under a project, such as
// drive files and their blobs.
type DeletionHook interface {
	DeleteProjectData(ctx context.Context, workspaceID, projectID primitive.ObjectID) error
}

// ProjectAccess is what the per-entity usecases need from ProjectUsecase.
type ProjectAccess interface {
	Access(ctx context.Context, projectID, userID primitive.ObjectID) (*Scope, error)
}
