package mongodb

import (
	"context"
	"time"

	"edwin/internal/shared/database"
	"edwin/internal/workspace/domain/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const invitationsCollection = "invitations"

// MongoInvitationRepository implements repository.InvitationRepository.
type MongoInvitationRepository struct {
	invitations *mongo.Collection
}

// NewMongoInvitationRepository creates the repository and its indexes.
func NewMongoInvitationRepository(ctx context.Context, db *mongo.Database) (*MongoInvitationRepository, error) {
	repo := &MongoInvitationRepository{invitations: db.Collection(invitationsCollection)}
	if err := database.EnsureIndexes(ctx, repo.invitations,
		database.UniqueIndex("token"),
		database.Index("workspace", "status"),
		database.Index("workspace", "email", "status"),
	); err != nil {
		return nil, err
	}
	return repo, nil
}

func (r *MongoInvitationRepository) findOne(ctx context.Context, filter bson.M) (*model.Invitation, error) {
	var inv model.Invitation
	if err := r.invitations.FindOne(ctx, filter).Decode(&inv); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, model.ErrInvitationNotFound
		}
		return nil, err
	}
	return &inv, nil
}

// Create inserts inv.
func (r *MongoInvitationRepository) Create(ctx context.Context, inv *model.Invitation) error {
	if inv.ID.IsZero() {
		inv.ID = primitive.NewObjectID()
	}
	inv.CreatedAt = time.Now().UTC()
	_, err := r.invitations.InsertOne(ctx, inv)
	return err
}

// GetByID loads an invitation.
func (r *MongoInvitationRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*model.Invitation, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

// GetByToken loads an invitation by its secret token.
func (r *MongoInvitationRepository) GetByToken(ctx context.Context, token string) (*model.Invitation, error) {
	return r.findOne(ctx, bson.M{"token": token})
}

// ListPending returns pending invitations, newest first.
func (r *MongoInvitationRepository) ListPending(ctx context.Context, workspaceID primitive.ObjectID) ([]*model.Invitation, error) {
	cur, err := r.invitations.Find(ctx,
		bson.M{"workspace": workspaceID, "status": model.InvitationPending},
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, err
	}
	out := []*model.Invitation{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CountPending counts pending, unexpired invitations.
func (r *MongoInvitationRepository) CountPending(ctx context.Context, workspaceID primitive.ObjectID) (int64, error) {
	return r.invitations.CountDocuments(ctx, bson.M{
		"workspace": workspaceID,
		"status":    model.InvitationPending,
		"expiresAt": bson.M{"$gt": time.Now().UTC()},
	})
}

// FindPending returns the pending, unexpired invitation for email, if any.
func (r *MongoInvitationRepository) FindPending(ctx context.Context, workspaceID primitive.ObjectID, email string) (*model.Invitation, error) {
	return r.findOne(ctx, bson.M{
		"workspace": workspaceID,
		"email":     email,
		"status":    model.InvitationPending,
		"expiresAt": bson.M{"$gt": time.Now().UTC()},
	})
}

// SetStatus transitions the invitation only if it is still in from.
func (r *MongoInvitationRepository) SetStatus(ctx context.Context, id primitive.ObjectID, from, to string) (bool, error) {
	res, err := r.invitations.UpdateOne(ctx,
		bson.M{"_id": id, "status": from},
		bson.M{"$set": bson.M{"status": to}})
	if err != nil {
		return false, err
	}
	return res.ModifiedCount == 1, nil
}

// DeleteByWorkspace removes every invitation of a workspace.
func (r *MongoInvitationRepository) DeleteByWorkspace(ctx context.Context, workspaceID primitive.ObjectID) error {
	_, err := r.invitations.DeleteMany(ctx, bson.M{"workspace": workspaceID})
	return err
}
