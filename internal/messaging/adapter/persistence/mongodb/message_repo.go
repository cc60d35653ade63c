package mongodb

import (
	"context"
	"time"

	"edwin/internal/messaging/domain/model"
	"edwin/internal/shared/database"
	"edwin/internal/shared/pagination"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

const messagesCollection = "messages"

// MongoMessageRepository implements repository.MessageRepository.
type MongoMessageRepository struct {
	messages *mongo.Collection
}

// NewMongoMessageRepository creates the repository and its indexes.
func NewMongoMessageRepository(ctx context.Context, db *mongo.Database) (*MongoMessageRepository, error) {
	repo := &MongoMessageRepository{messages: db.Collection(messagesCollection)}
	err := database.EnsureIndexes(ctx, repo.messages,
		database.Index("workspace", "sender", "recipient"),
		database.Index("workspace", "recipient"),
		database.Index("conversation"),
	)
	if err != nil {
		return nil, err
	}
	return repo, nil
}

func (r *MongoMessageRepository) Create(ctx context.Context, m *model.Message) error {
	if m.ID.IsZero() {
		m.ID = primitive.NewObjectID()
	}
	if m.ReadBy == nil {
		m.ReadBy = []primitive.ObjectID{}
	}
	m.CreatedAt = time.Now().UTC()
	_, err := r.messages.InsertOne(ctx, m)
	return err
}

func (r *MongoMessageRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*model.Message, error) {
	return database.FindOne[model.Message](ctx, r.messages, bson.M{"_id": id}, model.ErrMessageNotFound)
}

// ascending ObjectIDs follow insertion order
var insertionOrder = bson.D{{Key: "_id", Value: 1}}

func (r *MongoMessageRepository) ListDirect(ctx context.Context, workspaceID, a, b primitive.ObjectID, page pagination.Params) ([]*model.Message, int64, error) {
	filter := bson.M{
		"workspace": workspaceID,
		"$or": bson.A{
			bson.M{"sender": a, "recipient": b},
			bson.M{"sender": b, "recipient": a},
		},
	}
	return database.FindPage[model.Message](ctx, r.messages, filter, insertionOrder, page)
}

func (r *MongoMessageRepository) ListConversation(ctx context.Context, conversationID primitive.ObjectID, page pagination.Params) ([]*model.Message, int64, error) {
	return database.FindPage[model.Message](ctx, r.messages, bson.M{"conversation": conversationID}, insertionOrder, page)
}

func (r *MongoMessageRepository) MarkRead(ctx context.Context, id, userID primitive.ObjectID) (*model.Message, error) {
	return database.UpdateAndFetch[model.Message](ctx, r.messages,
		bson.M{"_id": id},
		bson.M{"$addToSet": bson.M{"readBy": userID}},
		model.ErrMessageNotFound)
}

func (r *MongoMessageRepository) CountUnreadDirect(ctx context.Context, workspaceID, userID primitive.ObjectID) (int64, error) {
	return r.messages.CountDocuments(ctx, bson.M{
		"workspace": workspaceID,
		"recipient": userID,
		"readBy":    bson.M{"$ne": userID},
	})
}
