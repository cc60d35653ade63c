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

const workspacesCollection = "workspaces"

// MongoWorkspaceRepository implements repository.WorkspaceRepository.
type MongoWorkspaceRepository struct {
	workspaces *mongo.Collection
}

// NewMongoWorkspaceRepository creates the repository and its indexes.
func NewMongoWorkspaceRepository(ctx context.Context, db *mongo.Database) (*MongoWorkspaceRepository, error) {
	repo := &MongoWorkspaceRepository{workspaces: db.Collection(workspacesCollection)}
	if err := database.EnsureIndexes(ctx, repo.workspaces,
		database.Index("members.user"),
		database.Index("owner"),
		database.Index("subscription.stripeSubscriptionId"),
		database.Index("subscription.stripeCustomerId"),
	); err != nil {
		return nil, err
	}
	return repo, nil
}

func (r *MongoWorkspaceRepository) findOne(ctx context.Context, filter bson.M) (*model.Workspace, error) {
	var ws model.Workspace
	if err := r.workspaces.FindOne(ctx, filter).Decode(&ws); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, model.ErrWorkspaceNotFound
		}
		return nil, err
	}
	return &ws, nil
}

// Create inserts ws, assigning its id and timestamps.
func (r *MongoWorkspaceRepository) Create(ctx context.Context, ws *model.Workspace) error {
	now := time.Now().UTC()
	if ws.ID.IsZero() {
		ws.ID = primitive.NewObjectID()
	}
	ws.CreatedAt = now
	ws.UpdatedAt = now
	_, err := r.workspaces.InsertOne(ctx, ws)
	return err
}

// GetByID loads a workspace.
func (r *MongoWorkspaceRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*model.Workspace, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

// ListByMember returns the workspaces userID belongs to, newest first.
func (r *MongoWorkspaceRepository) ListByMember(ctx context.Context, userID primitive.ObjectID) ([]*model.Workspace, error) {
	cur, err := r.workspaces.Find(ctx, bson.M{"members.user": userID},
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, err
	}
	out := []*model.Workspace{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Update merges name and description.
func (r *MongoWorkspaceRepository) Update(ctx context.Context, id primitive.ObjectID, update model.WorkspaceUpdate) (*model.Workspace, error) {
	set := bson.M{"updatedAt": time.Now().UTC()}
	if update.Name != nil {
		set["name"] = *update.Name
	}
	if update.Description != nil {
		set["description"] = *update.Description
	}
	var ws model.Workspace
	err := r.workspaces.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&ws)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, model.ErrWorkspaceNotFound
		}
		return nil, err
	}
	return &ws, nil
}

// Delete removes the workspace document.
func (r *MongoWorkspaceRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.workspaces.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return model.ErrWorkspaceNotFound
	}
	return nil
}

// AddMember appends member unless the user is already present.
func (r *MongoWorkspaceRepository) AddMember(ctx context.Context, id primitive.ObjectID, member model.Member) error {
	res, err := r.workspaces.UpdateOne(ctx,
		bson.M{"_id": id, "members.user": bson.M{"$ne": member.User}},
		bson.M{
			"$push": bson.M{"members": member},
			"$set":  bson.M{"updatedAt": time.Now().UTC()},
		})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		// Either missing or already a member; only the former is an error.
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

// SetMemberRole changes the role of an existing member.
func (r *MongoWorkspaceRepository) SetMemberRole(ctx context.Context, id, userID primitive.ObjectID, role string) error {
	res, err := r.workspaces.UpdateOne(ctx,
		bson.M{"_id": id, "members.user": userID},
		bson.M{"$set": bson.M{"members.$.role": role, "updatedAt": time.Now().UTC()}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return model.ErrMemberNotFound
	}
	return nil
}

// RemoveMember pulls userID from the member list.
func (r *MongoWorkspaceRepository) RemoveMember(ctx context.Context, id, userID primitive.ObjectID) error {
	res, err := r.workspaces.UpdateOne(ctx,
		bson.M{"_id": id, "members.user": userID},
		bson.M{
			"$pull": bson.M{"members": bson.M{"user": userID}},
			"$set":  bson.M{"updatedAt": time.Now().UTC()},
		})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return model.ErrMemberNotFound
	}
	return nil
}

// GetByStripeSubscriptionID finds the workspace billed by a subscription.
func (r *MongoWorkspaceRepository) GetByStripeSubscriptionID(ctx context.Context, subscriptionID string) (*model.Workspace, error) {
	return r.findOne(ctx, bson.M{"subscription.stripeSubscriptionId": subscriptionID})
}

// GetByStripeCustomerID finds the workspace billed to a customer.
func (r *MongoWorkspaceRepository) GetByStripeCustomerID(ctx context.Context, customerID string) (*model.Workspace, error) {
	return r.findOne(ctx, bson.M{"subscription.stripeCustomerId": customerID})
}

// UpdateSubscription replaces the embedded subscription.
func (r *MongoWorkspaceRepository) UpdateSubscription(ctx context.Context, id primitive.ObjectID, sub model.Subscription) error {
	res, err := r.workspaces.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"subscription": sub,
		"updatedAt":    time.Now().UTC(),
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return model.ErrWorkspaceNotFound
	}
	return nil
}

// ListByPlan returns the workspaces currently on plan.
func (r *MongoWorkspaceRepository) ListByPlan(ctx context.Context, plan string) ([]*model.Workspace, error) {
	return database.FindAll[model.Workspace](ctx, r.workspaces, bson.M{"subscription.plan": plan})
}

// Count returns the number of workspaces.
func (r *MongoWorkspaceRepository) Count(ctx context.Context) (int64, error) {
	return r.workspaces.CountDocuments(ctx, bson.M{})
}

// PlanDistribution counts workspaces per plan.
func (r *MongoWorkspaceRepository) PlanDistribution(ctx context.Context) (map[string]int64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$subscription.plan"},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
	}
	cur, err := r.workspaces.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	var rows []struct {
		Plan  string `bson:"_id"`
		Count int64  `bson:"count"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return nil, err
	}
	out := map[string]int64{model.PlanFree: 0, model.PlanPro: 0, model.PlanEnterprise: 0}
	for _, row := range rows {
		plan := row.Plan
		if plan == "" {
			plan = model.PlanFree
		}
		out[plan] += row.Count
	}
	return out, nil
}
