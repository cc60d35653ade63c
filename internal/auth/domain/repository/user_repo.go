package repository

import (
	"context"

	"edwin/internal/auth/domain/model"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserRepository defines the persistence operations on users.
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]*model.User, error)
	UpdateProfile(ctx context.Context, id primitive.ObjectID, update model.ProfileUpdate) (*model.User, error)
	UpdatePassword(ctx context.Context, id primitive.ObjectID, hash string) error
	Search(ctx context.Context, query string, limit int) ([]*model.User, error)
	Count(ctx context.Context) (int64, error)
	// ListAll returns every user. Campaign audiences are resolved from it.
	ListAll(ctx context.Context) ([]*model.User, error)

	// Workspace membership is denormalized onto the user.
	AddWorkspace(ctx context.Context, userID, workspaceID primitive.ObjectID) error
	RemoveWorkspace(ctx context.Context, userID, workspaceID primitive.ObjectID) error
	RemoveWorkspaceFromAll(ctx context.Context, workspaceID primitive.ObjectID) error
}
