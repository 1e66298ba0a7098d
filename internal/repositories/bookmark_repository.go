package repositories

import (
	"fmt"

	"github.com/chiarivoices/backend/internal/models"
	"gorm.io/gorm"
)

// BookmarkRepository defines the interface for bookmark operations
type BookmarkRepository interface {
	AddBookmark(bookmark *models.Bookmark) error
	RemoveBookmark(userID uint, postID string) error
	IsBookmarked(userID uint, postID string) (bool, error)
	GetBookmarksByUser(userID uint) ([]models.Bookmark, error)
}

// PostgresBookmarkRepository implements BookmarkRepository for PostgreSQL
type PostgresBookmarkRepository struct {
	db *gorm.DB
}

// NewPostgresBookmarkRepository creates a new PostgresBookmarkRepository
func NewPostgresBookmarkRepository(db *gorm.DB) *PostgresBookmarkRepository {
	return &PostgresBookmarkRepository{db: db}
}

// AddBookmark saves a post for a user
func (r *PostgresBookmarkRepository) AddBookmark(bookmark *models.Bookmark) error {
	return r.db.Create(bookmark).Error
}

// RemoveBookmark removes a saved post for a user
func (r *PostgresBookmarkRepository) RemoveBookmark(userID uint, postID string) error {
	res := r.db.Where("user_id = ? AND post_id = ?", userID, postID).Delete(&models.Bookmark{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("bookmark not found")
	}
	return nil
}

// IsBookmarked reports whether a user has saved a post
func (r *PostgresBookmarkRepository) IsBookmarked(userID uint, postID string) (bool, error) {
	var count int64
	err := r.db.Model(&models.Bookmark{}).Where("user_id = ? AND post_id = ?", userID, postID).Count(&count).Error
	return count > 0, err
}

// GetBookmarksByUser retrieves all bookmarks of a user, newest first
func (r *PostgresBookmarkRepository) GetBookmarksByUser(userID uint) ([]models.Bookmark, error) {
	var bookmarks []models.Bookmark
	err := r.db.Where("user_id = ?", userID).Order("created_at DESC").Find(&bookmarks).Error
	if err != nil {
		return nil, err
	}
	return bookmarks, nil
}
