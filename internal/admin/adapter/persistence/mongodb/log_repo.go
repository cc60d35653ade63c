package mongodb

import (
	"context"
	"time"

	"edwin/internal/admin/domain/model"
	"edwin/internal/shared/database"
	"edwin/internal/shared/pagination"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const systemLogsCollection = "system_logs"

// MongoLogRepository stores system logs. Entries expire after retention.
type MongoLogRepository struct {
	logs *mongo.Collection
}

// NewMongoLogRepository creates the repository with a TTL index on createdAt.
func NewMongoLogRepository(ctx context.Context, db *mongo.Database, retention time.Duration) (*MongoLogRepository, error) {
	repo := &MongoLogRepository{logs: db.Collection(systemLogsCollection)}
	ttl := mongo.IndexModel{
		Keys:    bson.D{{Key: "createdAt", Value: 1}},
		Options: options.Index().SetExpireAfterSeconds(int32(retention / time.Second)),
	}
	if err := database.EnsureIndexes(ctx, repo.logs, ttl, database.Index("level", "createdAt")); err != nil {
		return nil, err
	}
	return repo, nil
}

func (r *MongoLogRepository) InsertMany(ctx context.Context, logs []*model.SystemLog) error {
	if len(logs) == 0 {
		return nil
	}
	docs := make([]interface{}, len(logs))
	for i, l := range logs {
		docs[i] = l
	}
	_, err := r.logs.InsertMany(ctx, docs, options.InsertMany().SetOrdered(false))
	return err
}

// List returns newest first, optionally restricted to one level.
func (r *MongoLogRepository) List(ctx context.Context, level string, page pagination.Params) ([]*model.SystemLog, int64, error) {
	filter := bson.M{}
	if level != "" {
		filter["level"] = level
	}
	return database.FindPage[model.SystemLog](ctx, r.logs, filter, bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}, page)
}
