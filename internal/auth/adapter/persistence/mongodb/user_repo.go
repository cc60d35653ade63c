package mongodb

import (
	"context"
	"regexp"
	"time"

	"edwin/internal/auth/domain/model"
	"edwin/internal/shared/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const usersCollection = "users"

// MongoUserRepository implements repository.UserRepository using MongoDB
type MongoUserRepository struct {
	users *mongo.Collection
}

// NewMongoUserRepository creates the repository and its indexes.
func NewMongoUserRepository(ctx context.Context, db *mongo.Database) (*MongoUserRepository, error) {
	repo := &MongoUserRepository{users: db.Collection(usersCollection)}

	if err := database.EnsureIndexes(ctx, repo.users,
		database.UniqueIndex("email"),
		database.Index("workspaces"),
		database.Index("name"),
	); err != nil {
		return nil, err
	}
	return repo, nil
}

// Create inserts a new user. A duplicate email maps to model.ErrUserExists.
func (r *MongoUserRepository) Create(ctx context.Context, user *model.User) error {
	now := time.Now().UTC()
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	user.Email = model.NormalizeEmail(user.Email)
	if user.Workspaces == nil {
		user.Workspaces = []primitive.ObjectID{}
	}
	user.CreatedAt = now
	user.UpdatedAt = now

	if _, err := r.users.InsertOne(ctx, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return model.ErrUserExists
		}
		return err
	}
	return nil
}

func (r *MongoUserRepository) findOne(ctx context.Context, filter bson.M) (*model.User, error) {
	var user model.User
	if err := r.users.FindOne(ctx, filter).Decode(&user); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, model.ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// GetByID retrieves a user by ID
func (r *MongoUserRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*model.User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

// GetByEmail retrieves a user by email
func (r *MongoUserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.findOne(ctx, bson.M{"email": model.NormalizeEmail(email)})
}

// GetByIDs returns the users found among ids; unknown ids are skipped.
func (r *MongoUserRepository) GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]*model.User, error) {
	if len(ids) == 0 {
		return []*model.User{}, nil
	}
	cur, err := r.users.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	users := []*model.User{}
	if err := cur.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// UpdateProfile applies the non-nil fields of update.
func (r *MongoUserRepository) UpdateProfile(ctx context.Context, id primitive.ObjectID, update model.ProfileUpdate) (*model.User, error) {
	set := bson.M{"updatedAt": time.Now().UTC()}
	if update.Name != nil {
		set["name"] = *update.Name
	}
	if update.Avatar != nil {
		set["avatar"] = *update.Avatar
	}

	var user model.User
	err := r.users.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, model.ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// UpdatePassword stores a new bcrypt hash.
func (r *MongoUserRepository) UpdatePassword(ctx context.Context, id primitive.ObjectID, hash string) error {
	res, err := r.users.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"passwordHash": hash,
		"updatedAt":    time.Now().UTC(),
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return model.ErrUserNotFound
	}
	return nil
}

// Search matches a case-insensitive prefix of name or email.
func (r *MongoUserRepository) Search(ctx context.Context, query string, limit int) ([]*model.User, error) {
	pattern := primitive.Regex{Pattern: "^" + regexp.QuoteMeta(query), Options: "i"}
	filter := bson.M{"$or": bson.A{
		bson.M{"name": pattern},
		bson.M{"email": pattern},
	}}
	opts := options.Find().SetLimit(int64(limit)).SetSort(bson.D{{Key: "name", Value: 1}})

	cur, err := r.users.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	users := []*model.User{}
	if err := cur.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// Count returns the number of registered users.
func (r *MongoUserRepository) Count(ctx context.Context) (int64, error) {
	return r.users.CountDocuments(ctx, bson.M{})
}

// ListAll returns every user in creation order.
func (r *MongoUserRepository) ListAll(ctx context.Context) ([]*model.User, error) {
	return database.FindAll[model.User](ctx, r.users, bson.M{},
		options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
}

// AddWorkspace links a workspace to the user; repeated calls are no-ops.
func (r *MongoUserRepository) AddWorkspace(ctx context.Context, userID, workspaceID primitive.ObjectID) error {
	_, err := r.users.UpdateOne(ctx, bson.M{"_id": userID}, bson.M{
		"$addToSet": bson.M{"workspaces": workspaceID},
		"$set":      bson.M{"updatedAt": time.Now().UTC()},
	})
	return err
}

// RemoveWorkspace unlinks a workspace from the user.
func (r *MongoUserRepository) RemoveWorkspace(ctx context.Context, userID, workspaceID primitive.ObjectID) error {
	_, err := r.users.UpdateOne(ctx, bson.M{"_id": userID}, bson.M{
		"$pull": bson.M{"workspaces": workspaceID},
		"$set":  bson.M{"updatedAt": time.Now().UTC()},
	})
	return err
}

// RemoveWorkspaceFromAll unlinks a deleted workspace from every user.
func (r *MongoUserRepository) RemoveWorkspaceFromAll(ctx context.Context, workspaceID primitive.ObjectID) error {
	_, err := r.users.UpdateMany(ctx, bson.M{"workspaces": workspaceID}, bson.M{
		"$pull": bson.M{"workspaces": workspaceID},
	})
	return err
}
