package handlers

import (
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/chiarivoices/backend/internal/models"
	"github.com/chiarivoices/backend/internal/repositories"
	"github.com/chiarivoices/backend/internal/threads"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CommentHandler handles HTTP requests related to comments
type CommentHandler struct {
	commentRepository repositories.CommentRepository
	postRepository    repositories.PostRepository // To verify posts exist before commenting
	userRepository    repositories.UserRepository // To snapshot author details into comments
}

// NewCommentHandler creates a new CommentHandler
func NewCommentHandler(commentRepo repositories.CommentRepository, postRepo repositories.PostRepository, userRepo repositories.UserRepository) *CommentHandler {
	return &CommentHandler{
		commentRepository: commentRepo,
		postRepository:    postRepo,
		userRepository:    userRepo,
	}
}

// RegisterPublicRoutes registers the reader-facing comment routes
func (h *CommentHandler) RegisterPublicRoutes(g *echo.Group) {
	g.GET("/posts/:post_id/comments", h.GetCommentThreads)
}

// RegisterCommentRoutes registers the authenticated comment routes
func (h *CommentHandler) RegisterCommentRoutes(g *echo.Group) {
	g.POST("/posts/:post_id/comments", h.CreateComment)
	g.POST("/comments/:id/like", h.ToggleLike)
}

// RegisterModerationRoutes registers the moderation-only comment routes
func (h *CommentHandler) RegisterModerationRoutes(g *echo.Group) {
	g.GET("/comments/unapproved", h.GetUnapprovedComments)
	g.PUT("/comments/:id/approve", h.SetApproved)
	g.DELETE("/comments/:id", h.DeleteComment)
}

// GetCommentThreads retrieves all comments for a post assembled into reply
// threads, in conversation order (oldest roots first).
func (h *CommentHandler) GetCommentThreads(c echo.Context) error {
	postID := c.Param("post_id")

	// Verify post exists
	_, err := h.postRepository.GetPostByID(c.Request().Context(), postID)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Post not found")
	}

	comments, err := h.commentRepository.GetCommentsByPostID(c.Request().Context(), postID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to load comments")
	}

	forest, orphans := threads.Build(comments)
	if orphans > 0 {
		log.Printf("Post %s has %d comment(s) with unresolvable parents, promoted to root", postID, orphans)
	}

	return c.JSON(http.StatusOK, forest)
}

// CreateComment creates a new comment or reply on a post
func (h *CommentHandler) CreateComment(c echo.Context) error {
	claims := getUserFromContext(c)
	if claims == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}
	postID := c.Param("post_id")

	var req models.CreateCommentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	text := strings.TrimSpace(req.Text)
	if text == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Comment text cannot be empty")
	}

	// Verify post exists
	post, err := h.postRepository.GetPostByID(c.Request().Context(), postID)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Post not found")
	}

	user, err := h.userRepository.GetUserByID(claims.UserID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Authenticated user not found in database")
	}

	var parentID *primitive.ObjectID
	if req.ParentID != "" {
		// A reply must point at a comment on the same post. A stale parent
		// is rejected here; anything that slips through is tolerated at
		// read time by orphan promotion.
		parent, err := h.commentRepository.GetCommentByID(c.Request().Context(), req.ParentID)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "Parent comment not found")
		}
		if parent.PostID != post.ID {
			return echo.NewHTTPError(http.StatusBadRequest, "Parent comment belongs to a different post")
		}
		parentID = &parent.ID
	}

	comment := &models.Comment{
		PostID:          post.ID,
		ParentID:        parentID,
		AuthorID:        strconv.FormatUint(uint64(user.ID), 10),
		AuthorName:      user.Name,
		AuthorAvatarURL: user.AvatarURL,
		Text:            text,
		Approved:        true,
	}

	if err := h.commentRepository.CreateComment(c.Request().Context(), comment); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusCreated, comment)
}

// ToggleLike adds or removes the authenticated user's like on a comment
func (h *CommentHandler) ToggleLike(c echo.Context) error {
	claims := getUserFromContext(c)
	if claims == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}
	commentID := c.Param("id")
	userID := strconv.FormatUint(uint64(claims.UserID), 10)

	liked, err := h.commentRepository.ToggleLike(c.Request().Context(), commentID, userID)
	if err != nil {
		if err.Error() == "comment not found" {
			return echo.NewHTTPError(http.StatusNotFound, "Comment not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"liked": liked}})
}

// GetUnapprovedComments lists comments awaiting moderation
func (h *CommentHandler) GetUnapprovedComments(c echo.Context) error {
	skip, limit := paginationParams(c)

	comments, err := h.commentRepository.GetUnapprovedComments(c.Request().Context(), skip, limit)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, comments)
}

// SetApproved toggles the moderation approval flag on a comment
func (h *CommentHandler) SetApproved(c echo.Context) error {
	commentID := c.Param("id")

	var req struct {
		Approved bool `json:"approved"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	if err := h.commentRepository.SetApproved(c.Request().Context(), commentID, req.Approved); err != nil {
		if err.Error() == "comment not found" {
			return echo.NewHTTPError(http.StatusNotFound, "Comment not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"approved": req.Approved}})
}

// DeleteComment deletes a comment (moderation surface only; readers never
// delete comments)
func (h *CommentHandler) DeleteComment(c echo.Context) error {
	commentID := c.Param("id")

	if err := h.commentRepository.DeleteComment(c.Request().Context(), commentID); err != nil {
		if err.Error() == "comment not found" {
			return echo.NewHTTPError(http.StatusNotFound, "Comment not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.NoContent(http.StatusNoContent)
}
