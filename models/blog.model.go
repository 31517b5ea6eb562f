package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	BlogDraft     = "draft"
	BlogPublished = "published"
)

var BlogStatuses = []string{BlogDraft, BlogPublished}

// Blog represents a blog post
type Blog struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"_id,omitempty"`
	Title     string             `bson:"title" json:"title"`
	Content   string             `bson:"content" json:"content"`
	Thumbnail string             `bson:"thumbnail" json:"thumbnail"`
	Status    string             `bson:"status" json:"status"` // "draft" or "published"
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// BlogInput is the body of blog creation and content edits
type BlogInput struct {
	Title     string `json:"title" validate:"required"`
	Content   string `json:"content" validate:"required"`
	Thumbnail string `json:"thumbnail" validate:"required"`
}

// BlogStatusUpdate is the body of PUT /blog-status/{id}
type BlogStatusUpdate struct {
	Status string `json:"status" validate:"required,oneof=draft published"`
}
