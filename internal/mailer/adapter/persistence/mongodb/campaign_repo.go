package mongodb

import (
	"context"
	"time"

	"edwin/internal/mailer/domain/model"
	"edwin/internal/shared/database"
	"edwin/internal/shared/pagination"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

const campaignsCollection = "email_campaigns"

// MongoCampaignRepository implements repository.CampaignRepository.
type MongoCampaignRepository struct {
	campaigns *mongo.Collection
}

// NewMongoCampaignRepository creates the repository and its indexes.
func NewMongoCampaignRepository(ctx context.Context, db *mongo.Database) (*MongoCampaignRepository, error) {
	repo := &MongoCampaignRepository{campaigns: db.Collection(campaignsCollection)}
	if err := database.EnsureIndexes(ctx, repo.campaigns, database.Index("status"), database.Index("template")); err != nil {
		return nil, err
	}
	return repo, nil
}

func (r *MongoCampaignRepository) Create(ctx context.Context, c *model.EmailCampaign) error {
	now := time.Now().UTC()
	if c.ID.IsZero() {
		c.ID = primitive.NewObjectID()
	}
	if c.Status == "" {
		c.Status = model.CampaignDraft
	}
	c.CreatedAt = now
	c.UpdatedAt = now
	_, err := r.campaigns.InsertOne(ctx, c)
	return err
}

func (r *MongoCampaignRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*model.EmailCampaign, error) {
	return database.FindOne[model.EmailCampaign](ctx, r.campaigns, bson.M{"_id": id}, model.ErrCampaignNotFound)
}

func (r *MongoCampaignRepository) List(ctx context.Context, page pagination.Params) ([]*model.EmailCampaign, int64, error) {
	return database.FindPage[model.EmailCampaign](ctx, r.campaigns, bson.M{}, bson.D{{Key: "createdAt", Value: -1}}, page)
}

func (r *MongoCampaignRepository) UpdateDraft(ctx context.Context, id primitive.ObjectID, changes model.CampaignChanges) (*model.EmailCampaign, error) {
	set := bson.M{"updatedAt": time.Now().UTC()}
	if changes.Name != nil {
		set["name"] = *changes.Name
	}
	if changes.Template != nil {
		set["template"] = *changes.Template
	}
	if changes.Subject != nil {
		set["subject"] = *changes.Subject
	}
	if changes.Audience != nil {
		set["audience"] = *changes.Audience
	}
	c, err := database.UpdateAndFetch[model.EmailCampaign](ctx, r.campaigns,
		bson.M{"_id": id, "status": model.CampaignDraft}, bson.M{"$set": set}, model.ErrCampaignNotFound)
	if err == model.ErrCampaignNotFound {
		return nil, r.notDraftOrMissing(ctx, id)
	}
	return c, err
}

// notDraftOrMissing explains why a draft-guarded write matched nothing.
func (r *MongoCampaignRepository) notDraftOrMissing(ctx context.Context, id primitive.ObjectID) error {
	n, err := r.campaigns.CountDocuments(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if n == 0 {
		return model.ErrCampaignNotFound
	}
	return model.ErrCampaignNotDraft
}

func (r *MongoCampaignRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	return database.DeleteByID(ctx, r.campaigns, id, model.ErrCampaignNotFound)
}

func (r *MongoCampaignRepository) SetStatus(ctx context.Context, id primitive.ObjectID, from, to string) (bool, error) {
	res, err := r.campaigns.UpdateOne(ctx,
		bson.M{"_id": id, "status": from},
		bson.M{"$set": bson.M{"status": to, "updatedAt": time.Now().UTC()}})
	if err != nil {
		return false, err
	}
	return res.ModifiedCount == 1, nil
}

func (r *MongoCampaignRepository) Finish(ctx context.Context, id primitive.ObjectID, status string, stats model.CampaignStats, sentAt time.Time) (*model.EmailCampaign, error) {
	return database.UpdateAndFetch[model.EmailCampaign](ctx, r.campaigns, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"status":    status,
		"stats":     stats,
		"sentAt":    sentAt,
		"updatedAt": time.Now().UTC(),
	}}, model.ErrCampaignNotFound)
}

func (r *MongoCampaignRepository) CountByTemplate(ctx context.Context, templateID primitive.ObjectID) (int64, error) {
	return r.campaigns.CountDocuments(ctx, bson.M{"template": templateID})
}
