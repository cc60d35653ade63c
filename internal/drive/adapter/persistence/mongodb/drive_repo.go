package mongodb

import (
	"context"
	"time"

	"edwin/internal/drive/domain/model"
	"edwin/internal/shared/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	foldersCollection = "drive_folders"
	filesCollection   = "drive_files"
)

// MongoFolderRepository implements repository.FolderRepository.
type MongoFolderRepository struct {
	folders *mongo.Collection
}

// NewMongoFolderRepository creates the repository and its indexes.
func NewMongoFolderRepository(ctx context.Context, db *mongo.Database) (*MongoFolderRepository, error) {
	repo := &MongoFolderRepository{folders: db.Collection(foldersCollection)}
	if err := database.EnsureIndexes(ctx, repo.folders, database.Index("project", "parent")); err != nil {
		return nil, err
	}
	return repo, nil
}

func (r *MongoFolderRepository) Create(ctx context.Context, f *model.Folder) error {
	now := time.Now().UTC()
	if f.ID.IsZero() {
		f.ID = primitive.NewObjectID()
	}
	f.CreatedAt = now
	f.UpdatedAt = now
	_, err := r.folders.InsertOne(ctx, f)
	return err
}

func (r *MongoFolderRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*model.Folder, error) {
	return database.FindOne[model.Folder](ctx, r.folders, bson.M{"_id": id}, model.ErrFolderNotFound)
}

func (r *MongoFolderRepository) ListChildren(ctx context.Context, projectID primitive.ObjectID, parent *primitive.ObjectID) ([]*model.Folder, error) {
	return database.FindAll[model.Folder](ctx, r.folders, bson.M{"project": projectID, "parent": parent},
		options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
}

func (r *MongoFolderRepository) CountChildren(ctx context.Context, id primitive.ObjectID) (int64, error) {
	return r.folders.CountDocuments(ctx, bson.M{"parent": id})
}

func (r *MongoFolderRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	return database.DeleteByID(ctx, r.folders, id, model.ErrFolderNotFound)
}

func (r *MongoFolderRepository) DeleteByProject(ctx context.Context, projectID primitive.ObjectID) error {
	_, err := r.folders.DeleteMany(ctx, bson.M{"project": projectID})
	return err
}

// MongoFileRepository implements repository.FileRepository.
type MongoFileRepository struct {
	files *mongo.Collection
}

// NewMongoFileRepository creates the repository and its indexes.
func NewMongoFileRepository(ctx context.Context, db *mongo.Database) (*MongoFileRepository, error) {
	repo := &MongoFileRepository{files: db.Collection(filesCollection)}
	if err := database.EnsureIndexes(ctx, repo.files,
		database.Index("project", "folder"),
		database.UniqueIndex("key"),
	); err != nil {
		return nil, err
	}
	return repo, nil
}

func (r *MongoFileRepository) Create(ctx context.Context, f *model.File) error {
	now := time.Now().UTC()
	if f.ID.IsZero() {
		f.ID = primitive.NewObjectID()
	}
	f.CreatedAt = now
	f.UpdatedAt = now
	_, err := r.files.InsertOne(ctx, f)
	return err
}

func (r *MongoFileRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*model.File, error) {
	return database.FindOne[model.File](ctx, r.files, bson.M{"_id": id}, model.ErrFileNotFound)
}

func (r *MongoFileRepository) ListInFolder(ctx context.Context, projectID primitive.ObjectID, folder *primitive.ObjectID) ([]*model.File, error) {
	return database.FindAll[model.File](ctx, r.files, bson.M{"project": projectID, "folder": folder},
		options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
}

func (r *MongoFileRepository) CountInFolder(ctx context.Context, folderID primitive.ObjectID) (int64, error) {
	return r.files.CountDocuments(ctx, bson.M{"folder": folderID})
}

func (r *MongoFileRepository) Update(ctx context.Context, id primitive.ObjectID, update model.FileUpdate) (*model.File, error) {
	set := bson.M{"updatedAt": time.Now().UTC()}
	if update.Name != nil {
		set["name"] = *update.Name
	}
	switch {
	case update.MoveToRoot:
		set["folder"] = nil
	case update.Folder != nil:
		set["folder"] = *update.Folder
	}
	return database.UpdateAndFetch[model.File](ctx, r.files, bson.M{"_id": id}, bson.M{"$set": set}, model.ErrFileNotFound)
}

func (r *MongoFileRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	return database.DeleteByID(ctx, r.files, id, model.ErrFileNotFound)
}

func (r *MongoFileRepository) DeleteByIDs(ctx context.Context, ids []primitive.ObjectID) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := r.files.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": ids}})
	return err
}

func (r *MongoFileRepository) DeleteByProject(ctx context.Context, projectID primitive.ObjectID) error {
	_, err := r.files.DeleteMany(ctx, bson.M{"project": projectID})
	return err
}
