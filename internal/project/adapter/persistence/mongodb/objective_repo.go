package mongodb

import (
	"context"
	"time"

	"edwin/internal/project/domain/model"
	"edwin/internal/shared/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const objectivesCollection = "objectives"

// MongoObjectiveRepository implements repository.ObjectiveRepository.
type MongoObjectiveRepository struct {
	objectives *mongo.Collection
}

// NewMongoObjectiveRepository creates the repository and its indexes.
func NewMongoObjectiveRepository(ctx context.Context, db *mongo.Database) (*MongoObjectiveRepository, error) {
	repo := &MongoObjectiveRepository{objectives: db.Collection(objectivesCollection)}
	if err := database.EnsureIndexes(ctx, repo.objectives, database.Index("project")); err != nil {
		return nil, err
	}
	return repo, nil
}

func (r *MongoObjectiveRepository) Create(ctx context.Context, o *model.Objective) error {
	now := time.Now().UTC()
	if o.ID.IsZero() {
		o.ID = primitive.NewObjectID()
	}
	if o.KeyResults == nil {
		o.KeyResults = []model.KeyResult{}
	}
	o.CreatedAt = now
	o.UpdatedAt = now
	_, err := r.objectives.InsertOne(ctx, o)
	return err
}

func (r *MongoObjectiveRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*model.Objective, error) {
	return database.FindOne[model.Objective](ctx, r.objectives, bson.M{"_id": id}, model.ErrObjectiveNotFound)
}

func (r *MongoObjectiveRepository) ListByProject(ctx context.Context, projectID primitive.ObjectID) ([]*model.Objective, error) {
	return database.FindAll[model.Objective](ctx, r.objectives, bson.M{"project": projectID},
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
}

func (r *MongoObjectiveRepository) Update(ctx context.Context, id primitive.ObjectID, changes model.ObjectiveInput) (*model.Objective, error) {
	set := bson.M{"updatedAt": time.Now().UTC()}
	if changes.Title != nil {
		set["title"] = *changes.Title
	}
	if changes.Description != nil {
		set["description"] = *changes.Description
	}
	if changes.Status != nil {
		set["status"] = *changes.Status
	}
	if changes.Progress != nil {
		set["progress"] = *changes.Progress
	}
	if changes.KeyResults != nil {
		set["keyResults"] = *changes.KeyResults
	}
	if changes.DueDate != nil {
		set["dueDate"] = *changes.DueDate
	}
	return database.UpdateAndFetch[model.Objective](ctx, r.objectives, bson.M{"_id": id}, bson.M{"$set": set}, model.ErrObjectiveNotFound)
}

func (r *MongoObjectiveRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	return database.DeleteByID(ctx, r.objectives, id, model.ErrObjectiveNotFound)
}

func (r *MongoObjectiveRepository) DeleteByProject(ctx context.Context, projectID primitive.ObjectID) error {
	_, err := r.objectives.DeleteMany(ctx, bson.M{"project": projectID})
	return err
}
