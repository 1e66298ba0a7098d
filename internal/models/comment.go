package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Comment represents a single comment on a post, stored in MongoDB.
// ParentID is nil for top-level comments; replies point at their parent's ID.
// The author fields are a snapshot taken at creation time and are not updated
// when the author later changes their profile.
type Comment struct {
	ID              primitive.ObjectID  `json:"id,omitempty" bson:"_id,omitempty"`
	PostID          primitive.ObjectID  `json:"post_id" bson:"post_id"`
	ParentID        *primitive.ObjectID `json:"parent_id,omitempty" bson:"parent_id,omitempty"`
	AuthorID        string              `json:"author_id" bson:"author_id"` // identifier of the commenting user
	AuthorName      string              `json:"author_name" bson:"author_name"`
	AuthorAvatarURL string              `json:"author_avatar_url,omitempty" bson:"author_avatar_url,omitempty"`
	Text            string              `json:"text" bson:"text"` // rendered as escaped plain text
	LikeUserIDs     []string            `json:"like_user_ids" bson:"like_user_ids"`
	Approved        bool                `json:"approved" bson:"approved"`
	CreatedAt       time.Time           `json:"created_at" bson:"created_at"`
}

// CreateCommentRequest defines the request body for creating a new comment or reply
type CreateCommentRequest struct {
	Text     string `json:"text" validate:"required,min=1,max=2000"`
	ParentID string `json:"parent_id,omitempty"`
}
