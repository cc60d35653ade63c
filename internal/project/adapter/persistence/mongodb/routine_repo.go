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

const routinesCollection = "routines"

// MongoRoutineRepository implements repository.RoutineRepository.
type MongoRoutineRepository struct {
	routines *mongo.Collection
}

// NewMongoRoutineRepository creates the repository and its indexes.
func NewMongoRoutineRepository(ctx context.Context, db *mongo.Database) (*MongoRoutineRepository, error) {
	repo := &MongoRoutineRepository{routines: db.Collection(routinesCollection)}
	if err := database.EnsureIndexes(ctx, repo.routines, database.Index("project")); err != nil {
		return nil, err
	}
	return repo, nil
}

func (r *MongoRoutineRepository) Create(ctx context.Context, rt *model.Routine) error {
	now := time.Now().UTC()
	if rt.ID.IsZero() {
		rt.ID = primitive.NewObjectID()
	}
	rt.CreatedAt = now
	rt.UpdatedAt = now
	_, err := r.routines.InsertOne(ctx, rt)
	return err
}

func (r *MongoRoutineRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*model.Routine, error) {
	return database.FindOne[model.Routine](ctx, r.routines, bson.M{"_id": id}, model.ErrRoutineNotFound)
}

func (r *MongoRoutineRepository) ListByProject(ctx context.Context, projectID primitive.ObjectID) ([]*model.Routine, error) {
	return database.FindAll[model.Routine](ctx, r.routines, bson.M{"project": projectID},
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}}))
}

func (r *MongoRoutineRepository) Update(ctx context.Context, id primitive.ObjectID, changes model.RoutineInput) (*model.Routine, error) {
	set := bson.M{"updatedAt": time.Now().UTC()}
	if changes.Title != nil {
		set["title"] = *changes.Title
	}
	if changes.Description != nil {
		set["description"] = *changes.Description
	}
	if changes.Frequency != nil {
		set["frequency"] = *changes.Frequency
	}
	return database.UpdateAndFetch[model.Routine](ctx, r.routines, bson.M{"_id": id}, bson.M{"$set": set}, model.ErrRoutineNotFound)
}

// Complete is a compare-and-set on lastCompletedAt.
func (r *MongoRoutineRepository) Complete(ctx context.Context, id primitive.ObjectID, previous *time.Time, at time.Time, streak int) (*model.Routine, bool, error) {
	filter := bson.M{"_id": id}
	if previous == nil {
		filter["lastCompletedAt"] = bson.M{"$exists": false}
	} else {
		filter["lastCompletedAt"] = *previous
	}
	rt, err := database.UpdateAndFetch[model.Routine](ctx, r.routines, filter, bson.M{
		"$set": bson.M{"lastCompletedAt": at, "streak": streak, "updatedAt": at},
	}, model.ErrRoutineNotFound)
	if err == model.ErrRoutineNotFound {
		if _, getErr := r.GetByID(ctx, id); getErr != nil {
			return nil, false, getErr
		}
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return rt, true, nil
}

func (r *MongoRoutineRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	return database.DeleteByID(ctx, r.routines, id, model.ErrRoutineNotFound)
}

func (r *MongoRoutineRepository) DeleteByProject(ctx context.Context, projectID primitive.ObjectID) error {
	_, err := r.routines.DeleteMany(ctx, bson.M{"project": projectID})
	return err
}
