package controllers

import (
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"

	"bloodlink/listing"
	"bloodlink/models"
	"bloodlink/store"
	"bloodlink/utils"
)

var blogListing = listing.Spec{
	DefaultLimit: 6,
	Fields: []listing.Field{
		{Param: "status", Allowed: models.BlogStatuses},
	},
}

// publishedListing ignores any status parameter; the filter is fixed
var publishedListing = listing.Spec{DefaultLimit: 6}

// BlogController handles blog content requests
type BlogController struct {
	base
	Collection store.Collection
	now        func() time.Time
}

// NewBlogController creates a new BlogController
func NewBlogController(blogs store.Collection, logger logrus.FieldLogger, timeout time.Duration) *BlogController {
	return &BlogController{
		base:       newBase(logger, timeout),
		Collection: blogs,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// CreateBlog stores a new draft post
func (bc *BlogController) CreateBlog(w http.ResponseWriter, r *http.Request) {
	var input models.BlogInput
	if err := decodeJSON(r, &input); err != nil {
		utils.WriteValidationError(w, "Invalid input", utils.ValidationDetails(err))
		return
	}
	if err := utils.Validate.Struct(input); err != nil {
		utils.WriteValidationError(w, "Title, content and thumbnail are required", utils.ValidationDetails(err))
		return
	}

	now := bc.now()
	blog := models.Blog{
		Title:     input.Title,
		Content:   input.Content,
		Thumbnail: input.Thumbnail,
		Status:    models.BlogDraft,
		CreatedAt: now,
		UpdatedAt: now,
	}

	ctx, cancel := bc.storeCtx(r)
	defer cancel()
	id, err := bc.Collection.InsertOne(ctx, blog)
	if err != nil {
		bc.serverError(w, r, "Error creating blog", err)
		return
	}

	utils.WriteJSON(w, http.StatusCreated, createdResponse{
		Success:    true,
		Message:    "Blog created successfully",
		InsertedID: id,
	})
}

// ListBlogs returns a page of posts, optionally filtered by status
func (bc *BlogController) ListBlogs(w http.ResponseWriter, r *http.Request) {
	bc.list(w, r, bc.Collection, blogListing, nil, nil)
}

// ListPublishedBlogs returns a page of published posts
func (bc *BlogController) ListPublishedBlogs(w http.ResponseWriter, r *http.Request) {
	bc.list(w, r, bc.Collection, publishedListing, bson.M{"status": models.BlogPublished}, nil)
}

// GetBlog retrieves a single post by id
func (bc *BlogController) GetBlog(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		utils.WriteError(w, http.StatusBadRequest, "Invalid id")
		return
	}

	ctx, cancel := bc.storeCtx(r)
	defer cancel()
	doc, err := bc.Collection.FindOne(ctx, bson.M{"_id": id})
	if isNotFound(err) {
		utils.WriteError(w, http.StatusNotFound, "Blog not found")
		return
	}
	if err != nil {
		bc.serverError(w, r, "Error fetching blog", err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, doc)
}

// UpdateBlog edits title, content and thumbnail
func (bc *BlogController) UpdateBlog(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		utils.WriteError(w, http.StatusBadRequest, "Invalid id")
		return
	}
	var input models.BlogInput
	if err := decodeJSON(r, &input); err != nil {
		utils.WriteValidationError(w, "Invalid input", utils.ValidationDetails(err))
		return
	}
	if err := utils.Validate.Struct(input); err != nil {
		utils.WriteValidationError(w, "Title, content and thumbnail are required", utils.ValidationDetails(err))
		return
	}

	bc.update(w, r, bson.M{"_id": id}, bson.M{
		"title":     input.Title,
		"content":   input.Content,
		"thumbnail": input.Thumbnail,
	}, "Blog updated successfully")
}

// UpdateBlogStatus publishes or unpublishes a post
func (bc *BlogController) UpdateBlogStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		utils.WriteError(w, http.StatusBadRequest, "Invalid id")
		return
	}
	var req models.BlogStatusUpdate
	if err := decodeJSON(r, &req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid input")
		return
	}
	if err := utils.Validate.Struct(req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid status value")
		return
	}
	bc.update(w, r, bson.M{"_id": id}, bson.M{"status": req.Status}, "Blog status updated successfully")
}

// DeleteBlog removes a post
func (bc *BlogController) DeleteBlog(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		utils.WriteError(w, http.StatusBadRequest, "Invalid id")
		return
	}

	ctx, cancel := bc.storeCtx(r)
	defer cancel()
	deleted, err := bc.Collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		bc.serverError(w, r, "Error deleting blog", err)
		return
	}
	if deleted == 0 {
		utils.WriteError(w, http.StatusNotFound, "Blog not found")
		return
	}
	writeMessage(w, "Blog deleted successfully")
}

// update applies fields and refreshes updatedAt
func (bc *BlogController) update(w http.ResponseWriter, r *http.Request, filter, fields bson.M, message string) {
	fields["updatedAt"] = bc.now()

	ctx, cancel := bc.storeCtx(r)
	defer cancel()
	matched, err := bc.Collection.UpdateOne(ctx, filter, fields)
	if err != nil {
		bc.serverError(w, r, "Error updating blog", err)
		return
	}
	if matched == 0 {
		utils.WriteError(w, http.StatusNotFound, "Blog not found")
		return
	}
	writeMessage(w, message)
}
