package mongodb

import (
	"context"
	"time"

	"edwin/internal/project/domain/model"
	"edwin/internal/shared/database"
	"edwin/internal/shared/pagination"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const projectsCollection = "projects"

// MongoProjectRepository implements repository.ProjectRepository.
type MongoProjectRepository struct {
	projects *mongo.Collection
}

// NewMongoProjectRepository creates the repository and its indexes.
func NewMongoProjectRepository(ctx context.Context, db *mongo.Database) (*MongoProjectRepository, error) {
	repo := &MongoProjectRepository{projects: db.Collection(projectsCollection)}
	if err := database.EnsureIndexes(ctx, repo.projects,
		database.Index("workspace", "status"),
		database.Index("members"),
	); err != nil {
		return nil, err
	}
	return repo, nil
}

// Create inserts p with fresh timestamps and zeroed counters.
func (r *MongoProjectRepository) Create(ctx context.Context, p *model.Project) error {
	now := time.Now().UTC()
	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	if p.Members == nil {
		p.Members = []primitive.ObjectID{}
	}
	p.TaskCount = 0
	p.CompletedTaskCount = 0
	p.CreatedAt = now
	p.UpdatedAt = now
	_, err := r.projects.InsertOne(ctx, p)
	return err
}

// GetByID loads a project.
func (r *MongoProjectRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*model.Project, error) {
	return database.FindOne[model.Project](ctx, r.projects, bson.M{"_id": id}, model.ErrProjectNotFound)
}

// List returns one page of a workspace's projects, newest first.
func (r *MongoProjectRepository) List(ctx context.Context, filter model.ProjectFilter, page pagination.Params) ([]*model.Project, int64, error) {
	q := bson.M{"workspace": filter.Workspace}
	if filter.Status != "" {
		q["status"] = filter.Status
	}
	if !filter.Member.IsZero() {
		q["members"] = filter.Member
	}
	return database.FindPage[model.Project](ctx, r.projects, q, bson.D{{Key: "createdAt", Value: -1}}, page)
}

// ListIDsByWorkspace returns the ids of every project in a workspace.
func (r *MongoProjectRepository) ListIDsByWorkspace(ctx context.Context, workspaceID primitive.ObjectID) ([]primitive.ObjectID, error) {
	cur, err := r.projects.Find(ctx, bson.M{"workspace": workspaceID},
		options.Find().SetProjection(bson.M{"_id": 1}))
	if err != nil {
		return nil, err
	}
	var rows []struct {
		ID primitive.ObjectID `bson:"_id"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return nil, err
	}
	ids := make([]primitive.ObjectID, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.ID)
	}
	return ids, nil
}

// CountByWorkspace counts the projects in a workspace.
func (r *MongoProjectRepository) CountByWorkspace(ctx context.Context, workspaceID primitive.ObjectID) (int64, error) {
	return r.projects.CountDocuments(ctx, bson.M{"workspace": workspaceID})
}

// Update merges the non-nil fields of update.
func (r *MongoProjectRepository) Update(ctx context.Context, id primitive.ObjectID, update model.ProjectUpdate) (*model.Project, error) {
	set := bson.M{"updatedAt": time.Now().UTC()}
	if update.Name != nil {
		set["name"] = *update.Name
	}
	if update.Description != nil {
		set["description"] = *update.Description
	}
	if update.Status != nil {
		set["status"] = *update.Status
	}
	if update.Color != nil {
		set["color"] = *update.Color
	}
	if update.DueDate != nil {
		set["dueDate"] = *update.DueDate
	}
	return database.UpdateAndFetch[model.Project](ctx, r.projects, bson.M{"_id": id}, bson.M{"$set": set}, model.ErrProjectNotFound)
}

// Delete removes the project document.
func (r *MongoProjectRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	return database.DeleteByID(ctx, r.projects, id, model.ErrProjectNotFound)
}

// AddMember adds userID to the member set.
func (r *MongoProjectRepository) AddMember(ctx context.Context, id, userID primitive.ObjectID) (*model.Project, error) {
	return database.UpdateAndFetch[model.Project](ctx, r.projects, bson.M{"_id": id}, bson.M{
		"$addToSet": bson.M{"members": userID},
		"$set":      bson.M{"updatedAt": time.Now().UTC()},
	}, model.ErrProjectNotFound)
}

// RemoveMember pulls userID from the member set.
func (r *MongoProjectRepository) RemoveMember(ctx context.Context, id, userID primitive.ObjectID) (*model.Project, error) {
	return database.UpdateAndFetch[model.Project](ctx, r.projects, bson.M{"_id": id}, bson.M{
		"$pull": bson.M{"members": userID},
		"$set":  bson.M{"updatedAt": time.Now().UTC()},
	}, model.ErrProjectNotFound)
}

// IncCounters adjusts taskCount and completedTaskCount atomically.
func (r *MongoProjectRepository) IncCounters(ctx context.Context, id primitive.ObjectID, tasks, completed int) error {
	inc := bson.M{}
	if tasks != 0 {
		inc["taskCount"] = tasks
	}
	if completed != 0 {
		inc["completedTaskCount"] = completed
	}
	if len(inc) == 0 {
		return nil
	}
	_, err := r.projects.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$inc": inc})
	return err
}

// Count returns the number of projects across all workspaces.
func (r *MongoProjectRepository) Count(ctx context.Context) (int64, error) {
	return r.projects.EstimatedDocumentCount(ctx)
}
