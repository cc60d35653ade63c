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

const secureIDsCollection = "secure_ids"

// MongoSecureIDRepository implements repository.SecureIDRepository.
type MongoSecureIDRepository struct {
	secureIDs *mongo.Collection
}

// NewMongoSecureIDRepository creates the repository and its indexes.
func NewMongoSecureIDRepository(ctx context.Context, db *mongo.Database) (*MongoSecureIDRepository, error) {
	repo := &MongoSecureIDRepository{secureIDs: db.Collection(secureIDsCollection)}
	if err := database.EnsureIndexes(ctx, repo.secureIDs, database.Index("project")); err != nil {
		return nil, err
	}
	return repo, nil
}

func (r *MongoSecureIDRepository) Create(ctx context.Context, s *model.SecureID) error {
	now := time.Now().UTC()
	if s.ID.IsZero() {
		s.ID = primitive.NewObjectID()
	}
	s.CreatedAt = now
	s.UpdatedAt = now
	_, err := r.secureIDs.InsertOne(ctx, s)
	return err
}

func (r *MongoSecureIDRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*model.SecureID, error) {
	return database.FindOne[model.SecureID](ctx, r.secureIDs, bson.M{"_id": id}, model.ErrSecureIDNotFound)
}

func (r *MongoSecureIDRepository) ListByProject(ctx context.Context, projectID primitive.ObjectID) ([]*model.SecureID, error) {
	return database.FindAll[model.SecureID](ctx, r.secureIDs, bson.M{"project": projectID},
		options.Find().SetSort(bson.D{{Key: "title", Value: 1}}))
}

func (r *MongoSecureIDRepository) Update(ctx context.Context, id primitive.ObjectID, changes model.SecureIDInput) (*model.SecureID, error) {
	set := bson.M{"updatedAt": time.Now().UTC()}
	if changes.Title != nil {
		set["title"] = *changes.Title
	}
	if changes.Username != nil {
		set["username"] = *changes.Username
	}
	if changes.Password != nil {
		set["password"] = *changes.Password
	}
	if changes.URL != nil {
		set["url"] = *changes.URL
	}
	if changes.Notes != nil {
		set["notes"] = *changes.Notes
	}
	return database.UpdateAndFetch[model.SecureID](ctx, r.secureIDs, bson.M{"_id": id}, bson.M{"$set": set}, model.ErrSecureIDNotFound)
}

func (r *MongoSecureIDRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	return database.DeleteByID(ctx, r.secureIDs, id, model.ErrSecureIDNotFound)
}

func (r *MongoSecureIDRepository) DeleteByProject(ctx context.Context, projectID primitive.ObjectID) error {
	_, err := r.secureIDs.DeleteMany(ctx, bson.M{"project": projectID})
	return err
}
