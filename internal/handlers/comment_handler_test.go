package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/chiarivoices/backend/internal/models"
	"github.com/chiarivoices/backend/internal/repositories"
	"github.com/chiarivoices/backend/internal/threads"
)

// Stubs embed the repository interfaces so each test only fills in the
// methods it exercises.

type stubPostRepo struct {
	repositories.PostRepository
	post *models.Post
	err  error
}

func (s *stubPostRepo) GetPostByID(ctx context.Context, id string) (*models.Post, error) {
	return s.post, s.err
}

type stubCommentRepo struct {
	repositories.CommentRepository
	comments []models.Comment
	created  *models.Comment
	liked    bool
	err      error
}

func (s *stubCommentRepo) GetCommentsByPostID(ctx context.Context, postID string) ([]models.Comment, error) {
	return s.comments, s.err
}

func (s *stubCommentRepo) CreateComment(ctx context.Context, comment *models.Comment) error {
	if s.err != nil {
		return s.err
	}
	comment.ID = primitive.NewObjectID()
	s.created = comment
	return nil
}

func (s *stubCommentRepo) ToggleLike(ctx context.Context, commentID, userID string) (bool, error) {
	return s.liked, s.err
}

type stubUserRepo struct {
	repositories.UserRepository
	user *models.User
	err  error
}

func (s *stubUserRepo) GetUserByID(id uint) (*models.User, error) {
	return s.user, s.err
}

func testOID(n int) primitive.ObjectID {
	id, err := primitive.ObjectIDFromHex(fmt.Sprintf("%024x", n))
	if err != nil {
		panic(err)
	}
	return id
}

func testComment(id int, postID primitive.ObjectID, parent *primitive.ObjectID, text string) models.Comment {
	return models.Comment{
		ID:       testOID(id),
		PostID:   postID,
		ParentID: parent,
		Text:     text,
	}
}

func authedContext(e *echo.Echo, req *http.Request, rec *httptest.ResponseRecorder) echo.Context {
	c := e.NewContext(req, rec)
	c.Set("user", &models.JwtCustomClaims{UserID: 7, Email: "pat@example.org", Role: models.RoleUser})
	return c
}

func TestGetCommentThreads_ReturnsForest(t *testing.T) {
	postID := testOID(100)
	parentID := testOID(1)
	commentRepo := &stubCommentRepo{
		comments: []models.Comment{
			testComment(1, postID, nil, "root"),
			testComment(2, postID, &parentID, "reply"),
		},
	}
	h := NewCommentHandler(commentRepo, &stubPostRepo{post: &models.Post{ID: postID}}, &stubUserRepo{})

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("post_id")
	c.SetParamValues(postID.Hex())

	require.NoError(t, h.GetCommentThreads(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var forest []*threads.Thread
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &forest))
	require.Len(t, forest, 1)
	assert.Equal(t, "root", forest[0].Text)
	require.Len(t, forest[0].Replies, 1)
	assert.Equal(t, "reply", forest[0].Replies[0].Text)
}

func TestGetCommentThreads_PostNotFound(t *testing.T) {
	h := NewCommentHandler(&stubCommentRepo{}, &stubPostRepo{err: fmt.Errorf("post not found")}, &stubUserRepo{})

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("post_id")
	c.SetParamValues(testOID(100).Hex())

	err := h.GetCommentThreads(c)
	var httpErr *echo.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusNotFound, httpErr.Code)
}

func TestCreateComment_RejectsWhitespaceText(t *testing.T) {
	postID := testOID(100)
	commentRepo := &stubCommentRepo{}
	h := NewCommentHandler(commentRepo, &stubPostRepo{post: &models.Post{ID: postID}}, &stubUserRepo{user: &models.User{ID: 7, Name: "Pat"}})

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"text":"   "}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := authedContext(e, req, rec)
	c.SetParamNames("post_id")
	c.SetParamValues(postID.Hex())

	err := h.CreateComment(c)
	var httpErr *echo.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusBadRequest, httpErr.Code)
	assert.Nil(t, commentRepo.created, "no write may be issued for invalid input")
}

func TestCreateComment_RequiresAuthentication(t *testing.T) {
	h := NewCommentHandler(&stubCommentRepo{}, &stubPostRepo{}, &stubUserRepo{})

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"text":"hello"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := h.CreateComment(c)
	var httpErr *echo.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusUnauthorized, httpErr.Code)
}

func TestCreateComment_SnapshotsAuthor(t *testing.T) {
	postID := testOID(100)
	commentRepo := &stubCommentRepo{}
	userRepo := &stubUserRepo{user: &models.User{ID: 7, Name: "Pat", AvatarURL: "https://cdn.example.org/pat.png"}}
	h := NewCommentHandler(commentRepo, &stubPostRepo{post: &models.Post{ID: postID}}, userRepo)

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"text":"  hello there  "}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := authedContext(e, req, rec)
	c.SetParamNames("post_id")
	c.SetParamValues(postID.Hex())

	require.NoError(t, h.CreateComment(c))
	assert.Equal(t, http.StatusCreated, rec.Code)

	require.NotNil(t, commentRepo.created)
	assert.Equal(t, "hello there", commentRepo.created.Text, "text is trimmed")
	assert.Equal(t, "7", commentRepo.created.AuthorID)
	assert.Equal(t, "Pat", commentRepo.created.AuthorName)
	assert.Equal(t, "https://cdn.example.org/pat.png", commentRepo.created.AuthorAvatarURL)
	assert.Equal(t, postID, commentRepo.created.PostID)
	assert.Nil(t, commentRepo.created.ParentID)
}

func TestToggleLike(t *testing.T) {
	commentRepo := &stubCommentRepo{liked: true}
	h := NewCommentHandler(commentRepo, &stubPostRepo{}, &stubUserRepo{})

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	rec := httptest.NewRecorder()
	c := authedContext(e, req, rec)
	c.SetParamNames("id")
	c.SetParamValues(testOID(1).Hex())

	require.NoError(t, h.ToggleLike(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"liked":true`)
}

func TestToggleLike_CommentNotFound(t *testing.T) {
	commentRepo := &stubCommentRepo{err: fmt.Errorf("comment not found")}
	h := NewCommentHandler(commentRepo, &stubPostRepo{}, &stubUserRepo{})

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	rec := httptest.NewRecorder()
	c := authedContext(e, req, rec)
	c.SetParamNames("id")
	c.SetParamValues(testOID(1).Hex())

	err := h.ToggleLike(c)
	var httpErr *echo.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusNotFound, httpErr.Code)
}
