package mongodb

import (
	"context"
	"time"

	"edwin/internal/admin/domain/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const settingsCollection = "settings"

// MongoSettingsRepository stores the settings singleton under _id "global".
type MongoSettingsRepository struct {
	settings *mongo.Collection
}

func NewMongoSettingsRepository(db *mongo.Database) *MongoSettingsRepository {
	return &MongoSettingsRepository{settings: db.Collection(settingsCollection)}
}

func (r *MongoSettingsRepository) Get(ctx context.Context) (*model.GlobalSettings, error) {
	var s model.GlobalSettings
	err := r.settings.FindOne(ctx, bson.M{"_id": model.SettingsID}).Decode(&s)
	if err == mongo.ErrNoDocuments {
		return model.DefaultSettings(), nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *MongoSettingsRepository) Save(ctx context.Context, s *model.GlobalSettings) error {
	s.ID = model.SettingsID
	s.UpdatedAt = time.Now().UTC()
	_, err := r.settings.ReplaceOne(ctx, bson.M{"_id": model.SettingsID}, s, options.Replace().SetUpsert(true))
	return err
}
