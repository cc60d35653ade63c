package mongodb

import (
	"context"
	"time"

	"edwin/internal/messaging/domain/model"
	"edwin/internal/shared/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const conversationsCollection = "conversations"

// MongoConversationRepository implements repository.ConversationRepository.
type MongoConversationRepository struct {
	conversations *mongo.Collection
}

// NewMongoConversationRepository creates the repository and its indexes.
func NewMongoConversationRepository(ctx context.Context, db *mongo.Database) (*MongoConversationRepository, error) {
	repo := &MongoConversationRepository{conversations: db.Collection(conversationsCollection)}
	if err := database.EnsureIndexes(ctx, repo.conversations, database.Index("workspace", "participants")); err != nil {
		return nil, err
	}
	return repo, nil
}

func (r *MongoConversationRepository) Create(ctx context.Context, c *model.Conversation) error {
	now := time.Now().UTC()
	if c.ID.IsZero() {
		c.ID = primitive.NewObjectID()
	}
	c.CreatedAt = now
	c.UpdatedAt = now
	_, err := r.conversations.InsertOne(ctx, c)
	return err
}

func (r *MongoConversationRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*model.Conversation, error) {
	return database.FindOne[model.Conversation](ctx, r.conversations, bson.M{"_id": id}, model.ErrConversationNotFound)
}

func (r *MongoConversationRepository) ListByParticipant(ctx context.Context, workspaceID, userID primitive.ObjectID) ([]*model.Conversation, error) {
	return database.FindAll[model.Conversation](ctx, r.conversations,
		bson.M{"workspace": workspaceID, "participants": userID},
		options.Find().SetSort(bson.D{{Key: "lastMessageAt", Value: -1}, {Key: "createdAt", Value: -1}}))
}

func (r *MongoConversationRepository) Touch(ctx context.Context, id primitive.ObjectID, at time.Time, preview string) error {
	res, err := r.conversations.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"lastMessageAt":      at,
		"lastMessagePreview": preview,
		"updatedAt":          time.Now().UTC(),
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return model.ErrConversationNotFound
	}
	return nil
}

func (r *MongoConversationRepository) AddParticipant(ctx context.Context, id, userID primitive.ObjectID) (*model.Conversation, error) {
	return database.UpdateAndFetch[model.Conversation](ctx, r.conversations,
		bson.M{"_id": id},
		bson.M{
			"$addToSet": bson.M{"participants": userID},
			"$set":      bson.M{"updatedAt": time.Now().UTC()},
		},
		model.ErrConversationNotFound)
}

func (r *MongoConversationRepository) RemoveParticipant(ctx context.Context, id, userID primitive.ObjectID) error {
	res, err := r.conversations.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$pull": bson.M{"participants": userID},
		"$set":  bson.M{"updatedAt": time.Now().UTC()},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return model.ErrConversationNotFound
	}
	return nil
}

func (r *MongoConversationRepository) RemoveFromWorkspace(ctx context.Context, workspaceID, userID primitive.ObjectID) error {
	_, err := r.conversations.UpdateMany(ctx,
		bson.M{"workspace": workspaceID, "participants": userID},
		bson.M{"$pull": bson.M{"participants": userID}})
	return err
}
