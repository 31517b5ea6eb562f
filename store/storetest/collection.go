// Package storetest provides an in-memory store.Collection for tests.
package storetest

import (
	"context"
	"reflect"
	"sync"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"bloodlink/store"
)

// Collection keeps documents in insertion order. Setting Err makes every
// operation fail with it.
type Collection struct {
	mu     sync.Mutex
	docs   []bson.M
	unique []string
	Err    error

	// Calls counts operations that reached the collection.
	Calls int
}

var _ store.Collection = (*Collection)(nil)

// New returns a collection seeded with docs.
func New(docs ...bson.M) *Collection {
	c := &Collection{}
	for _, d := range docs {
		if _, err := c.InsertOne(context.Background(), d); err != nil {
			panic(err)
		}
	}
	c.Calls = 0
	return c
}

// EnsureUniqueIndex makes later writes fail with store.ErrDuplicate when
// they would store a second document with the same field value.
func (c *Collection) EnsureUniqueIndex(_ context.Context, field string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.unique = append(c.unique, field)
	return nil
}

// Len reports the number of stored documents.
func (c *Collection) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.docs)
}

func (c *Collection) InsertOne(_ context.Context, doc any) (primitive.ObjectID, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Calls++
	if c.Err != nil {
		return primitive.NilObjectID, c.Err
	}

	m, err := toM(doc)
	if err != nil {
		return primitive.NilObjectID, err
	}
	id, ok := m["_id"].(primitive.ObjectID)
	if !ok || id.IsZero() {
		id = primitive.NewObjectID()
		m["_id"] = id
	}
	if c.conflicts(m, nil) {
		return primitive.NilObjectID, store.ErrDuplicate
	}
	c.docs = append(c.docs, m)
	return id, nil
}

func (c *Collection) FindOne(_ context.Context, filter bson.M) (bson.M, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Calls++
	if c.Err != nil {
		return nil, c.Err
	}
	for _, d := range c.docs {
		if matches(d, filter) {
			return clone(d), nil
		}
	}
	return nil, store.ErrNotFound
}

func (c *Collection) Find(_ context.Context, filter bson.M, skip, limit int64) ([]bson.M, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Calls++
	if c.Err != nil {
		return nil, c.Err
	}
	out := []bson.M{}
	var seen int64
	for _, d := range c.docs {
		if !matches(d, filter) {
			continue
		}
		seen++
		if seen <= skip {
			continue
		}
		if limit > 0 && int64(len(out)) >= limit {
			break
		}
		out = append(out, clone(d))
	}
	return out, nil
}

func (c *Collection) CountDocuments(_ context.Context, filter bson.M) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Calls++
	if c.Err != nil {
		return 0, c.Err
	}
	var n int64
	for _, d := range c.docs {
		if matches(d, filter) {
			n++
		}
	}
	return n, nil
}

func (c *Collection) UpdateOne(_ context.Context, filter bson.M, set bson.M) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Calls++
	if c.Err != nil {
		return 0, c.Err
	}
	fields, err := toM(set)
	if err != nil {
		return 0, err
	}
	for _, d := range c.docs {
		if matches(d, filter) {
			updated := clone(d)
			for k, v := range fields {
				updated[k] = v
			}
			if c.conflicts(updated, d) {
				return 0, store.ErrDuplicate
			}
			for k, v := range fields {
				d[k] = v
			}
			return 1, nil
		}
	}
	return 0, nil
}

// conflicts reports whether doc shares a unique field value with a stored
// document other than self.
func (c *Collection) conflicts(doc, self bson.M) bool {
	for _, field := range c.unique {
		v, ok := doc[field]
		if !ok {
			continue
		}
		for _, d := range c.docs {
			if self != nil && reflect.DeepEqual(d["_id"], self["_id"]) {
				continue
			}
			if got, ok := d[field]; ok && reflect.DeepEqual(got, v) {
				return true
			}
		}
	}
	return false
}

func (c *Collection) DeleteOne(_ context.Context, filter bson.M) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Calls++
	if c.Err != nil {
		return 0, c.Err
	}
	for i, d := range c.docs {
		if matches(d, filter) {
			c.docs = append(c.docs[:i], c.docs[i+1:]...)
			return 1, nil
		}
	}
	return 0, nil
}

func matches(doc, filter bson.M) bool {
	for k, want := range filter {
		got, ok := doc[k]
		if !ok || !reflect.DeepEqual(got, want) {
			return false
		}
	}
	return true
}

func toM(doc any) (bson.M, error) {
	raw, err := bson.Marshal(doc)
	if err != nil {
		return nil, err
	}
	var m bson.M
	if err := bson.Unmarshal(raw, &m); err != nil {
		return nil, err
	}
	return m, nil
}

func clone(doc bson.M) bson.M {
	out := make(bson.M, len(doc))
	for k, v := range doc {
		out[k] = v
	}
	return out
}
