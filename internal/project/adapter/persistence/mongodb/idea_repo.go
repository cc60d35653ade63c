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

const ideasCollection = "ideas"

// MongoIdeaRepository implements repository.IdeaRepository.
type MongoIdeaRepository struct {
	ideas *mongo.Collection
}

// NewMongoIdeaRepository creates the repository and its indexes.
func NewMongoIdeaRepository(ctx context.Context, db *mongo.Database) (*MongoIdeaRepository, error) {
	repo := &MongoIdeaRepository{ideas: db.Collection(ideasCollection)}
	if err := database.EnsureIndexes(ctx, repo.ideas, database.Index("project")); err != nil {
		return nil, err
	}
	return repo, nil
}

func (r *MongoIdeaRepository) Create(ctx context.Context, i *model.Idea) error {
	now := time.Now().UTC()
	if i.ID.IsZero() {
		i.ID = primitive.NewObjectID()
	}
	if i.Votes == nil {
		i.Votes = []primitive.ObjectID{}
	}
	i.CreatedAt = now
	i.UpdatedAt = now
	_, err := r.ideas.InsertOne(ctx, i)
	return err
}

func (r *MongoIdeaRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*model.Idea, error) {
	return database.FindOne[model.Idea](ctx, r.ideas, bson.M{"_id": id}, model.ErrIdeaNotFound)
}

func (r *MongoIdeaRepository) ListByProject(ctx context.Context, projectID primitive.ObjectID) ([]*model.Idea, error) {
	return database.FindAll[model.Idea](ctx, r.ideas, bson.M{"project": projectID},
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
}

func (r *MongoIdeaRepository) Update(ctx context.Context, id primitive.ObjectID, changes model.IdeaInput) (*model.Idea, error) {
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
	return database.UpdateAndFetch[model.Idea](ctx, r.ideas, bson.M{"_id": id}, bson.M{"$set": set}, model.ErrIdeaNotFound)
}

// ToggleVote tries $addToSet guarded on the vote being absent, then $pull
// guarded on it being present. Each step is a single atomic update.
func (r *MongoIdeaRepository) ToggleVote(ctx context.Context, id, userID primitive.ObjectID) (model.VoteResult, error) {
	idea, err := database.UpdateAndFetch[model.Idea](ctx, r.ideas,
		bson.M{"_id": id, "votes": bson.M{"$ne": userID}},
		bson.M{"$addToSet": bson.M{"votes": userID}}, model.ErrIdeaNotFound)
	if err == nil {
		return model.VoteResult{Voted: true, VoteCount: len(idea.Votes)}, nil
	}
	if err != model.ErrIdeaNotFound {
		return model.VoteResult{}, err
	}

	idea, err = database.UpdateAndFetch[model.Idea](ctx, r.ideas,
		bson.M{"_id": id, "votes": userID},
		bson.M{"$pull": bson.M{"votes": userID}}, model.ErrIdeaNotFound)
	if err != nil {
		return model.VoteResult{}, err
	}
	return model.VoteResult{Voted: false, VoteCount: len(idea.Votes)}, nil
}

func (r *MongoIdeaRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	return database.DeleteByID(ctx, r.ideas, id, model.ErrIdeaNotFound)
}

func (r *MongoIdeaRepository) DeleteByProject(ctx context.Context, projectID primitive.ObjectID) error {
	_, err := r.ideas.DeleteMany(ctx, bson.M{"project": projectID})
	return err
}
