package mongodb

import (
	"context"
	"time"

	"edwin/internal/mailer/domain/model"
	"edwin/internal/shared/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const templatesCollection = "email_templates"

// MongoTemplateRepository implements repository.TemplateRepository.
type MongoTemplateRepository struct {
	templates *mongo.Collection
}

// NewMongoTemplateRepository creates the repository and its unique name index.
func NewMongoTemplateRepository(ctx context.Context, db *mongo.Database) (*MongoTemplateRepository, error) {
	repo := &MongoTemplateRepository{templates: db.Collection(templatesCollection)}
	if err := database.EnsureIndexes(ctx, repo.templates, database.UniqueIndex("name")); err != nil {
		return nil, err
	}
	return repo, nil
}

func (r *MongoTemplateRepository) Create(ctx context.Context, t *model.EmailTemplate) error {
	now := time.Now().UTC()
	if t.ID.IsZero() {
		t.ID = primitive.NewObjectID()
	}
	t.CreatedAt = now
	t.UpdatedAt = now
	if _, err := r.templates.InsertOne(ctx, t); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return model.ErrTemplateNameTaken
		}
		return err
	}
	return nil
}

func (r *MongoTemplateRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*model.EmailTemplate, error) {
	return database.FindOne[model.EmailTemplate](ctx, r.templates, bson.M{"_id": id}, model.ErrTemplateNotFound)
}

func (r *MongoTemplateRepository) GetByName(ctx context.Context, name string) (*model.EmailTemplate, error) {
	return database.FindOne[model.EmailTemplate](ctx, r.templates, bson.M{"name": name}, model.ErrTemplateNotFound)
}

func (r *MongoTemplateRepository) List(ctx context.Context) ([]*model.EmailTemplate, error) {
	return database.FindAll[model.EmailTemplate](ctx, r.templates, bson.M{},
		options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
}

func (r *MongoTemplateRepository) Update(ctx context.Context, id primitive.ObjectID, in model.TemplateInput) (*model.EmailTemplate, error) {
	set := bson.M{"updatedAt": time.Now().UTC()}
	if in.Name != nil {
		set["name"] = *in.Name
	}
	if in.Subject != nil {
		set["subject"] = *in.Subject
	}
	if in.HTMLBody != nil {
		set["htmlBody"] = *in.HTMLBody
	}
	t, err := database.UpdateAndFetch[model.EmailTemplate](ctx, r.templates, bson.M{"_id": id}, bson.M{"$set": set}, model.ErrTemplateNotFound)
	if mongo.IsDuplicateKeyError(err) {
		return nil, model.ErrTemplateNameTaken
	}
	return t, err
}

func (r *MongoTemplateRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	return database.DeleteByID(ctx, r.templates, id, model.ErrTemplateNotFound)
}
