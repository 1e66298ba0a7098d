package models

import "time"

// Bookmark marks a post as saved by a user for later reading
type Bookmark struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    uint      `json:"user_id" gorm:"index;uniqueIndex:idx_user_post_bookmark"`
	PostID    string    `json:"post_id" gorm:"index;uniqueIndex:idx_user_post_bookmark"` // MongoDB ObjectID as string
	CreatedAt time.Time `json:"created_at"`
}
