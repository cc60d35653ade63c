package repository

import (
	"context"
	"io"
	"time"

	"edwin/internal/drive/domain/model"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// FolderRepository persists drive folders.
type FolderRepository interface {
	Create(ctx context.Context, f *model.Folder) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*model.Folder, error)
	// ListChildren returns the folders directly under parent; nil is the root.
	ListChildren(ctx context.Context, projectID primitive.ObjectID, parent *primitive.ObjectID) ([]*model.Folder, error)
	CountChildren(ctx context.Context, id primitive.ObjectID) (int64, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	DeleteByProject(ctx context.Context, projectID primitive.ObjectID) error
}

// FileRepository persists drive file rows.
type FileRepository interface {
	Create(ctx context.Context, f *model.File) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*model.File, error)
	ListInFolder(ctx context.Context, projectID primitive.ObjectID, folder *primitive.ObjectID) ([]*model.File, error)
	CountInFolder(ctx context.Context, folderID primitive.ObjectID) (int64, error)
	Update(ctx context.Context, id primitive.ObjectID, update model.FileUpdate) (*model.File, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	DeleteByIDs(ctx context.Context, ids []primitive.ObjectID) error
	DeleteByProject(ctx context.Context, projectID primitive.ObjectID) error
}

// BlobStore is the object storage the drive writes blobs to.
type BlobStore interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	// Remove deletes a blob. A missing blob is not an error.
	Remove(ctx context.Context, key string) error
	RemovePrefix(ctx context.Context, prefix string) error
	ListKeys(ctx context.Context, prefix string) (map[string]struct{}, error)
	PresignGet(ctx context.Context, key, fileName string, ttl time.Duration) (string, error)
}
