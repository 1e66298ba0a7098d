package handlers

import (
	"net/http"

	"github.com/chiarivoices/backend/internal/models"
	"github.com/chiarivoices/backend/internal/repositories"
	"github.com/labstack/echo/v4"
)

// BookmarkHandler handles bookmark HTTP requests
type BookmarkHandler struct {
	bookmarkRepository repositories.BookmarkRepository
	postRepository     repositories.PostRepository
}

// NewBookmarkHandler creates a new BookmarkHandler
func NewBookmarkHandler(bookmarkRepo repositories.BookmarkRepository, postRepo repositories.PostRepository) *BookmarkHandler {
	return &BookmarkHandler{
		bookmarkRepository: bookmarkRepo,
		postRepository:     postRepo,
	}
}

// RegisterBookmarkRoutes registers bookmark routes
func (h *BookmarkHandler) RegisterBookmarkRoutes(g *echo.Group) {
	g.GET("/bookmarks", h.ListBookmarks)
	g.POST("/posts/:id/bookmark", h.AddBookmark)
	g.DELETE("/posts/:id/bookmark", h.RemoveBookmark)
}

// ListBookmarks lists the authenticated user's saved posts
func (h *BookmarkHandler) ListBookmarks(c echo.Context) error {
	claims := getUserFromContext(c)
	if claims == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	bookmarks, err := h.bookmarkRepository.GetBookmarksByUser(claims.UserID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, bookmarks)
}

// AddBookmark saves a post for the authenticated user
func (h *BookmarkHandler) AddBookmark(c echo.Context) error {
	claims := getUserFromContext(c)
	if claims == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	postID := c.Param("id")

	// Verify post exists
	_, err := h.postRepository.GetPostByID(c.Request().Context(), postID)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Post not found")
	}

	// Check if already bookmarked
	isBookmarked, _ := h.bookmarkRepository.IsBookmarked(claims.UserID, postID)
	if isBookmarked {
		return echo.NewHTTPError(http.StatusConflict, "Post already bookmarked")
	}

	bookmark := &models.Bookmark{
		UserID: claims.UserID,
		PostID: postID,
	}

	if err := h.bookmarkRepository.AddBookmark(bookmark); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"bookmarked": true}})
}

// RemoveBookmark removes a saved post for the authenticated user
func (h *BookmarkHandler) RemoveBookmark(c echo.Context) error {
	claims := getUserFromContext(c)
	if claims == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	postID := c.Param("id")

	if err := h.bookmarkRepository.RemoveBookmark(claims.UserID, postID); err != nil {
		if err.Error() == "bookmark not found" {
			return echo.NewHTTPError(http.StatusNotFound, "Bookmark not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"bookmarked": false}})
}
