package handlers

import (
	"context"
	"log"
	"net/http"
	"strconv"

	"github.com/chiarivoices/backend/internal/models"
	"github.com/chiarivoices/backend/internal/repositories"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

// PostHandler handles HTTP requests related to posts, covering both the
// public reader and the admin content-management surface.
type PostHandler struct {
	postRepository    repositories.PostRepository
	commentRepository repositories.CommentRepository // To cascade deletes from emptied trash
}

// NewPostHandler creates a new PostHandler
func NewPostHandler(postRepo repositories.PostRepository, commentRepo repositories.CommentRepository) *PostHandler {
	return &PostHandler{
		postRepository:    postRepo,
		commentRepository: commentRepo,
	}
}

// RegisterPublicRoutes registers the reader-facing post routes
func (h *PostHandler) RegisterPublicRoutes(g *echo.Group) {
	g.GET("/posts", h.ListPublishedPosts)
	g.GET("/posts/slug/:slug", h.GetPostBySlug)
}

// RegisterAdminRoutes registers the content-management routes
func (h *PostHandler) RegisterAdminRoutes(g *echo.Group) {
	g.POST("/posts", h.CreatePost)
	g.GET("/posts", h.ListPostsByStatus)
	g.GET("/posts/:id", h.GetPost)
	g.PUT("/posts/:id", h.UpdatePost)
	g.PUT("/posts/:id/status", h.SetPostStatus)
	g.DELETE("/posts/:id", h.DeletePost)
}

// ListPublishedPosts lists published posts for the reader, with optional
// title search (q) and tag filter, newest first.
func (h *PostHandler) ListPublishedPosts(c echo.Context) error {
	query := c.QueryParam("q")
	tag := c.QueryParam("tag")
	skip, limit := paginationParams(c)

	posts, err := h.postRepository.SearchPublishedPosts(c.Request().Context(), query, tag, skip, limit)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to load posts")
	}

	return c.JSON(http.StatusOK, posts)
}

// GetPostBySlug retrieves a single published post for the reader
func (h *PostHandler) GetPostBySlug(c echo.Context) error {
	post, err := h.postRepository.GetPostBySlug(c.Request().Context(), c.Param("slug"))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Post not found")
	}
	return c.JSON(http.StatusOK, post)
}

// CreatePost creates a new draft post
func (h *PostHandler) CreatePost(c echo.Context) error {
	claims := getUserFromContext(c)
	if claims == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	var req models.CreatePostRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	post := &models.Post{
		AuthorID:        strconv.FormatUint(uint64(claims.UserID), 10),
		Slug:            req.Slug,
		Title:           req.Title,
		Excerpt:         req.Excerpt,
		Content:         req.Content,
		Tags:            req.Tags,
		Status:          models.PostStatusDraft,
		CoverImageURL:   req.CoverImageURL,
		MetaTitle:       req.MetaTitle,
		MetaDescription: req.MetaDescription,
	}

	if err := h.postRepository.CreatePost(c.Request().Context(), post); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusCreated, post)
}

// ListPostsByStatus lists posts for one admin tab (drafts, published,
// archived or trash), newest first.
func (h *PostHandler) ListPostsByStatus(c echo.Context) error {
	status := c.QueryParam("status")
	if status == "" {
		status = models.PostStatusDraft
	}
	if !models.IsValidPostStatus(status) {
		return echo.NewHTTPError(http.StatusBadRequest, "Unknown post status")
	}
	skip, limit := paginationParams(c)

	posts, err := h.postRepository.GetPostsByStatus(c.Request().Context(), status, skip, limit)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, posts)
}

// GetPost retrieves a post by ID regardless of status (admin editor view)
func (h *PostHandler) GetPost(c echo.Context) error {
	post, err := h.postRepository.GetPostByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Post not found")
	}
	return c.JSON(http.StatusOK, post)
}

// UpdatePost updates the editable fields of an existing post
func (h *PostHandler) UpdatePost(c echo.Context) error {
	postID := c.Param("id")

	var req models.UpdatePostRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	post, err := h.postRepository.GetPostByID(c.Request().Context(), postID)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Post not found")
	}

	if req.Slug != "" {
		post.Slug = req.Slug
	}
	if req.Title != "" {
		post.Title = req.Title
	}
	if req.Excerpt != "" {
		post.Excerpt = req.Excerpt
	}
	if req.Content != "" {
		post.Content = req.Content
	}
	if req.Tags != nil {
		post.Tags = req.Tags
	}
	if req.CoverImageURL != "" {
		post.CoverImageURL = req.CoverImageURL
	}
	if req.MetaTitle != "" {
		post.MetaTitle = req.MetaTitle
	}
	if req.MetaDescription != "" {
		post.MetaDescription = req.MetaDescription
	}

	if err := h.postRepository.UpdatePost(c.Request().Context(), postID, post); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, post)
}

// SetPostStatus moves a post through its lifecycle: publish, archive,
// move to trash, or restore to draft.
func (h *PostHandler) SetPostStatus(c echo.Context) error {
	postID := c.Param("id")

	var req struct {
		Status string `json:"status" validate:"required,oneof=draft published archived trashed"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.postRepository.SetPostStatus(c.Request().Context(), postID, req.Status); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"status": req.Status}})
}

// DeletePost permanently deletes a trashed post and its comments
func (h *PostHandler) DeletePost(c echo.Context) error {
	postID := c.Param("id")

	post, err := h.postRepository.GetPostByID(c.Request().Context(), postID)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Post not found")
	}
	if post.Status != models.PostStatusTrashed {
		return echo.NewHTTPError(http.StatusConflict, "Only trashed posts can be permanently deleted")
	}

	if err := h.postRepository.DeletePost(c.Request().Context(), postID); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	// Cascade the comment cleanup off the request path
	go func() {
		if err := h.commentRepository.DeleteCommentsByPostID(context.Background(), postID); err != nil {
			log.Printf("Failed to delete comments for post %s: %v", postID, err)
		}
	}()

	return c.NoContent(http.StatusNoContent)
}

// paginationParams reads skip/limit style pagination from query params,
// clamping the limit to something sane.
func paginationParams(c echo.Context) (int64, int64) {
	skip, _ := strconv.ParseInt(c.QueryParam("skip"), 10, 64)
	if skip < 0 {
		skip = 0
	}
	limit, _ := strconv.ParseInt(c.QueryParam("limit"), 10, 64)
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return skip, limit
}
