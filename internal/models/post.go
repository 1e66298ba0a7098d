package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Post statuses. Only published posts are visible to readers and the sitemap.
const (
	PostStatusDraft     = "draft"
	PostStatusPublished = "published"
	PostStatusArchived  = "archived"
	PostStatusTrashed   = "trashed"
)

// Post represents a blog post stored in MongoDB
type Post struct {
	ID              primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	AuthorID        string             `json:"author_id" bson:"author_id"` // identifier of the authoring user
	Slug            string             `json:"slug" bson:"slug"`
	Title           string             `json:"title" bson:"title"`
	Excerpt         string             `json:"excerpt,omitempty" bson:"excerpt,omitempty"`
	Content         string             `json:"content" bson:"content"` // sanitized HTML from the editor
	Tags            []string           `json:"tags,omitempty" bson:"tags,omitempty"`
	Status          string             `json:"status" bson:"status"`
	CoverImageURL   string             `json:"cover_image_url,omitempty" bson:"cover_image_url,omitempty"`
	MetaTitle       string             `json:"meta_title,omitempty" bson:"meta_title,omitempty"`
	MetaDescription string             `json:"meta_description,omitempty" bson:"meta_description,omitempty"`
	CreatedAt       time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt       time.Time          `json:"updated_at" bson:"updated_at"`
}

// CreatePostRequest defines the request body for creating a new post (saved as a draft)
type CreatePostRequest struct {
	Slug            string   `json:"slug" validate:"required,min=1,max=200"`
	Title           string   `json:"title" validate:"required,min=1,max=200"`
	Excerpt         string   `json:"excerpt,omitempty" validate:"omitempty,max=500"`
	Content         string   `json:"content" validate:"required"`
	Tags            []string `json:"tags,omitempty" validate:"omitempty,dive,min=1,max=50"`
	CoverImageURL   string   `json:"cover_image_url,omitempty" validate:"omitempty,url"`
	MetaTitle       string   `json:"meta_title,omitempty" validate:"omitempty,max=200"`
	MetaDescription string   `json:"meta_description,omitempty" validate:"omitempty,max=500"`
}

// UpdatePostRequest defines the request body for updating an existing post
type UpdatePostRequest struct {
	Slug            string   `json:"slug,omitempty" validate:"omitempty,min=1,max=200"`
	Title           string   `json:"title,omitempty" validate:"omitempty,min=1,max=200"`
	Excerpt         string   `json:"excerpt,omitempty" validate:"omitempty,max=500"`
	Content         string   `json:"content,omitempty"`
	Tags            []string `json:"tags,omitempty" validate:"omitempty,dive,min=1,max=50"`
	CoverImageURL   string   `json:"cover_image_url,omitempty" validate:"omitempty,url"`
	MetaTitle       string   `json:"meta_title,omitempty" validate:"omitempty,max=200"`
	MetaDescription string   `json:"meta_description,omitempty" validate:"omitempty,max=500"`
}

// IsValidPostStatus reports whether s is one of the known post statuses.
func IsValidPostStatus(s string) bool {
	switch s {
	case PostStatusDraft, PostStatusPublished, PostStatusArchived, PostStatusTrashed:
		return true
	}
	return false
}
