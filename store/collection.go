// Package store is the narrow document-store surface the controllers talk to.
// Documents are loosely typed (bson.M) and filters are equality-only.
package store

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	// ErrNotFound is returned when a point query matches no document.
	ErrNotFound = errors.New("document not found")
	// ErrDuplicate is returned when a write violates a unique index.
	ErrDuplicate = errors.New("duplicate key")
)

// Collection is a single named group of documents.
type Collection interface {
	// InsertOne stores doc and returns its generated identifier.
	InsertOne(ctx context.Context, doc any) (primitive.ObjectID, error)
	FindOne(ctx context.Context, filter bson.M) (bson.M, error)
	// Find returns matching documents in storage order. A limit of 0 means no limit.
	Find(ctx context.Context, filter bson.M, skip, limit int64) ([]bson.M, error)
	CountDocuments(ctx context.Context, filter bson.M) (int64, error)
	// UpdateOne applies a $set of fields and reports how many documents matched.
	UpdateOne(ctx context.Context, filter bson.M, set bson.M) (int64, error)
	DeleteOne(ctx context.Context, filter bson.M) (int64, error)
}

// MongoCollection adapts *mongo.Collection to Collection.
type MongoCollection struct {
	coll *mongo.Collection
}

// NewMongoCollection wraps coll.
func NewMongoCollection(coll *mongo.Collection) *MongoCollection {
	return &MongoCollection{coll: coll}
}

func (m *MongoCollection) InsertOne(ctx context.Context, doc any) (primitive.ObjectID, error) {
	res, err := m.coll.InsertOne(ctx, doc)
	if mongo.IsDuplicateKeyError(err) {
		return primitive.NilObjectID, fmt.Errorf("insert into %s: %w: %w", m.coll.Name(), ErrDuplicate, err)
	}
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("insert into %s: %w", m.coll.Name(), err)
	}
	id, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, fmt.Errorf("insert into %s: unexpected id type %T", m.coll.Name(), res.InsertedID)
	}
	return id, nil
}

func (m *MongoCollection) FindOne(ctx context.Context, filter bson.M) (bson.M, error) {
	var doc bson.M
	err := m.coll.FindOne(ctx, filter).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find one in %s: %w", m.coll.Name(), err)
	}
	return doc, nil
}

func (m *MongoCollection) Find(ctx context.Context, filter bson.M, skip, limit int64) ([]bson.M, error) {
	opts := options.Find()
	if skip > 0 {
		opts.SetSkip(skip)
	}
	if limit > 0 {
		opts.SetLimit(limit)
	}

	cursor, err := m.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find in %s: %w", m.coll.Name(), err)
	}
	defer cursor.Close(ctx)

	docs := []bson.M{}
	for cursor.Next(ctx) {
		var doc bson.M
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode %s document: %w", m.coll.Name(), err)
		}
		docs = append(docs, doc)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("read %s cursor: %w", m.coll.Name(), err)
	}
	return docs, nil
}

func (m *MongoCollection) CountDocuments(ctx context.Context, filter bson.M) (int64, error) {
	n, err := m.coll.CountDocuments(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("count in %s: %w", m.coll.Name(), err)
	}
	return n, nil
}

func (m *MongoCollection) UpdateOne(ctx context.Context, filter bson.M, set bson.M) (int64, error) {
	res, err := m.coll.UpdateOne(ctx, filter, bson.M{"$set": set})
	if mongo.IsDuplicateKeyError(err) {
		return 0, fmt.Errorf("update in %s: %w: %w", m.coll.Name(), ErrDuplicate, err)
	}
	if err != nil {
		return 0, fmt.Errorf("update in %s: %w", m.coll.Name(), err)
	}
	return res.MatchedCount, nil
}

func (m *MongoCollection) DeleteOne(ctx context.Context, filter bson.M) (int64, error) {
	res, err := m.coll.DeleteOne(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("delete in %s: %w", m.coll.Name(), err)
	}
	return res.DeletedCount, nil
}

// EnsureUniqueIndex creates an ascending unique index on field. It is a
// no-op when the index already exists.
func (m *MongoCollection) EnsureUniqueIndex(ctx context.Context, field string) error {
	_, err := m.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: field, Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("index %s.%s: %w", m.coll.Name(), field, err)
	}
	return nil
}
