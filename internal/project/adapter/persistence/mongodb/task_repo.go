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
)

const tasksCollection = "tasks"

// MongoTaskRepository implements repository.TaskRepository.
type MongoTaskRepository struct {
	tasks *mongo.Collection
}

// NewMongoTaskRepository creates the repository and its indexes.
func NewMongoTaskRepository(ctx context.Context, db *mongo.Database) (*MongoTaskRepository, error) {
	repo := &MongoTaskRepository{tasks: db.Collection(tasksCollection)}
	if err := database.EnsureIndexes(ctx, repo.tasks,
		database.Index("project", "createdAt"),
		database.Index("project", "status"),
		database.Index("assignees"),
	); err != nil {
		return nil, err
	}
	return repo, nil
}

// Create inserts t.
func (r *MongoTaskRepository) Create(ctx context.Context, t *model.Task) error {
	now := time.Now().UTC()
	if t.ID.IsZero() {
		t.ID = primitive.NewObjectID()
	}
	if t.Assignees == nil {
		t.Assignees = []primitive.ObjectID{}
	}
	if t.Tags == nil {
		t.Tags = []string{}
	}
	t.CreatedAt = now
	t.UpdatedAt = now
	_, err := r.tasks.InsertOne(ctx, t)
	return err
}

// GetByID loads a task.
func (r *MongoTaskRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*model.Task, error) {
	return database.FindOne[model.Task](ctx, r.tasks, bson.M{"_id": id}, model.ErrTaskNotFound)
}

// List returns one page of a project's tasks, newest first.
func (r *MongoTaskRepository) List(ctx context.Context, filter model.TaskFilter, page pagination.Params) ([]*model.Task, int64, error) {
	q := bson.M{"project": filter.Project}
	if filter.Status != "" {
		q["status"] = filter.Status
	}
	if filter.Priority != "" {
		q["priority"] = filter.Priority
	}
	if !filter.Assignee.IsZero() {
		q["assignees"] = filter.Assignee
	}
	return database.FindPage[model.Task](ctx, r.tasks, q, bson.D{{Key: "createdAt", Value: -1}}, page)
}

// Update applies changes while the stored status is still fromStatus. When
// the guard fails because the status moved, ErrConcurrentTaskEdit is returned.
func (r *MongoTaskRepository) Update(ctx context.Context, id primitive.ObjectID, fromStatus string, changes model.TaskChanges) (*model.Task, error) {
	set := bson.M{"updatedAt": time.Now().UTC()}
	unset := bson.M{}
	if changes.Title != nil {
		set["title"] = *changes.Title
	}
	if changes.Description != nil {
		set["description"] = *changes.Description
	}
	if changes.Status != nil {
		set["status"] = *changes.Status
	}
	if changes.Priority != nil {
		set["priority"] = *changes.Priority
	}
	if changes.Assignees != nil {
		set["assignees"] = *changes.Assignees
	}
	if changes.DueDate != nil {
		set["dueDate"] = *changes.DueDate
	}
	if changes.Tags != nil {
		set["tags"] = *changes.Tags
	}
	if changes.SetCompletedAt {
		if changes.CompletedAt != nil {
			set["completedAt"] = *changes.CompletedAt
		} else {
			unset["completedAt"] = ""
		}
	}

	update := bson.M{"$set": set}
	if len(unset) > 0 {
		update["$unset"] = unset
	}
	task, err := database.UpdateAndFetch[model.Task](ctx, r.tasks,
		bson.M{"_id": id, "status": fromStatus}, update, model.ErrConcurrentTaskEdit)
	if err == model.ErrConcurrentTaskEdit {
		if _, getErr := r.GetByID(ctx, id); getErr != nil {
			return nil, getErr
		}
	}
	return task, err
}

// Delete removes a task and returns what was stored.
func (r *MongoTaskRepository) Delete(ctx context.Context, id primitive.ObjectID) (*model.Task, error) {
	var t model.Task
	if err := r.tasks.FindOneAndDelete(ctx, bson.M{"_id": id}).Decode(&t); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, model.ErrTaskNotFound
		}
		return nil, err
	}
	return &t, nil
}

// DeleteByProject removes every task of a project.
func (r *MongoTaskRepository) DeleteByProject(ctx context.Context, projectID primitive.ObjectID) error {
	_, err := r.tasks.DeleteMany(ctx, bson.M{"project": projectID})
	return err
}

// Count returns the number of tasks across all projects.
func (r *MongoTaskRepository) Count(ctx context.Context) (int64, error) {
	return r.tasks.EstimatedDocumentCount(ctx)
}
