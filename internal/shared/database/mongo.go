package database

import (
	"context"
	"fmt"
	"time"

	apperrors "edwin/internal/shared/errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// PoolConfig tunes the driver connection pool.
type PoolConfig struct {
	MaxPoolSize    uint64
	MinPoolSize    uint64
	ConnectTimeout time.Duration
}

// Connect opens a pooled client and verifies it with a ping.
func Connect(ctx context.Context, uri string, pool PoolConfig) (*mongo.Client, error) {
	opts := options.Client().ApplyURI(uri)
	if pool.MaxPoolSize > 0 {
		opts.SetMaxPoolSize(pool.MaxPoolSize)
	}
	if pool.MinPoolSize > 0 {
		opts.SetMinPoolSize(pool.MinPoolSize)
	}
	if pool.ConnectTimeout > 0 {
		opts.SetConnectTimeout(pool.ConnectTimeout)
	}

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}
	return client, nil
}

// ParseObjectID decodes a hex id coming from a URL or body. Malformed ids
// are reported as validation errors naming the field.
func ParseObjectID(field, hex string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(hex)
	if err != nil {
		return primitive.NilObjectID, apperrors.NewValidationError(fmt.Sprintf("invalid %s", field)).
			WithCause(apperrors.ErrInvalidID).
			WithDetail("field", field)
	}
	return id, nil
}

// ParseObjectIDs decodes a list of hex ids, failing on the first bad one.
func ParseObjectIDs(field string, hexes []string) ([]primitive.ObjectID, error) {
	ids := make([]primitive.ObjectID, 0, len(hexes))
	for _, h := range hexes {
		id, err := ParseObjectID(field, h)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// ContainsID reports whether id is in ids.
func ContainsID(ids []primitive.ObjectID, id primitive.ObjectID) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

// UniqueIDs returns ids without duplicates, keeping first-seen order.
func UniqueIDs(ids []primitive.ObjectID) []primitive.ObjectID {
	seen := make(map[primitive.ObjectID]struct{}, len(ids))
	out := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// EnsureIndexes creates the given indexes on a collection. Creating an
// index that already exists with the same keys and options is a no-op in MongoDB.
func EnsureIndexes(ctx context.Context, coll *mongo.Collection, models ...mongo.IndexModel) error {
	if len(models) == 0 {
		return nil
	}
	if _, err := coll.Indexes().CreateMany(ctx, models); err != nil {
		return fmt.Errorf("failed to create indexes on %s: %w", coll.Name(), err)
	}
	return nil
}

// Index is shorthand for a single or compound ascending index.
func Index(keys ...string) mongo.IndexModel {
	d := bson.D{}
	for _, k := range keys {
		d = append(d, bson.E{Key: k, Value: 1})
	}
	return mongo.IndexModel{Keys: d}
}

// UniqueIndex is Index with the unique option set.
func UniqueIndex(keys ...string) mongo.IndexModel {
	m := Index(keys...)
	m.Options = options.Index().SetUnique(true)
	return m
}

// IsNotFound reports the driver's no-documents sentinel.
func IsNotFound(err error) bool {
	return err == mongo.ErrNoDocuments
}
