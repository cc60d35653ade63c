package database

import (
	"context"

	"edwin/internal/shared/pagination"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// FindOne decodes the first document matching filter. A miss is reported as
// notFound.
func FindOne[T any](ctx context.Context, coll *mongo.Collection, filter interface{}, notFound error) (*T, error) {
	var out T
	if err := coll.FindOne(ctx, filter).Decode(&out); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, notFound
		}
		return nil, err
	}
	return &out, nil
}

// FindAll decodes every document matching filter. The result is never nil.
func FindAll[T any](ctx context.Context, coll *mongo.Collection, filter interface{}, opts ...*options.FindOptions) ([]*T, error) {
	cur, err := coll.Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	out := []*T{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// FindPage returns one page of documents matching filter together with the
// total match count.
func FindPage[T any](ctx context.Context, coll *mongo.Collection, filter interface{}, sort bson.D, page pagination.Params) ([]*T, int64, error) {
	total, err := coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	opts := options.Find().
		SetSort(sort).
		SetSkip(page.Skip()).
		SetLimit(int64(page.Limit))
	items, err := FindAll[T](ctx, coll, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// UpdateAndFetch applies update to the first match and returns the document
// as it is after the update. A miss is reported as notFound.
func UpdateAndFetch[T any](ctx context.Context, coll *mongo.Collection, filter, update interface{}, notFound error) (*T, error) {
	var out T
	err := coll.FindOneAndUpdate(ctx, filter, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&out)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, notFound
		}
		return nil, err
	}
	return &out, nil
}

// DeleteByID removes one document, reporting notFound when nothing matched.
func DeleteByID(ctx context.Context, coll *mongo.Collection, id interface{}, notFound error) error {
	res, err := coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return notFound
	}
	return nil
}
