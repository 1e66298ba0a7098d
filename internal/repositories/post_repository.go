package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/chiarivoices/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// PostRepository defines the interface for post data operations
type PostRepository interface {
	CreatePost(ctx context.Context, post *models.Post) error
	GetPostByID(ctx context.Context, id string) (*models.Post, error)
	GetPostBySlug(ctx context.Context, slug string) (*models.Post, error)
	GetPostsByStatus(ctx context.Context, status string, skip, limit int64) ([]models.Post, error)
	SearchPublishedPosts(ctx context.Context, query, tag string, skip, limit int64) ([]models.Post, error)
	UpdatePost(ctx context.Context, id string, post *models.Post) error
	SetPostStatus(ctx context.Context, id, status string) error
	DeletePost(ctx context.Context, id string) error

	// Sitemap read contract
	PublishedPosts(ctx context.Context) ([]models.Post, error)
	PublishedTags(ctx context.Context) ([]string, error)
}

// MongoPostRepository implements PostRepository for MongoDB
type MongoPostRepository struct {
	collection *mongo.Collection
}

// NewMongoPostRepository creates a new MongoPostRepository
func NewMongoPostRepository(db *mongo.Database) *MongoPostRepository {
	return &MongoPostRepository{collection: db.Collection("posts")}
}

// Collection exposes the underlying posts collection for the change-stream watcher
func (r *MongoPostRepository) Collection() *mongo.Collection {
	return r.collection
}

// CreatePost creates a new post in MongoDB. New posts start as drafts unless
// the caller set a status explicitly.
func (r *MongoPostRepository) CreatePost(ctx context.Context, post *models.Post) error {
	post.ID = primitive.NewObjectID()
	if post.Status == "" {
		post.Status = models.PostStatusDraft
	}
	post.CreatedAt = time.Now()
	post.UpdatedAt = time.Now()
	_, err := r.collection.InsertOne(ctx, post)
	return err
}

// GetPostByID retrieves a post by ID from MongoDB
func (r *MongoPostRepository) GetPostByID(ctx context.Context, id string) (*models.Post, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("invalid post ID format: %w", err)
	}

	var post models.Post
	err = r.collection.FindOne(ctx, bson.M{"_id": objID}).Decode(&post)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("post not found")
		}
		return nil, err
	}
	return &post, nil
}

// GetPostBySlug retrieves a published post by its slug for the public reader
func (r *MongoPostRepository) GetPostBySlug(ctx context.Context, slug string) (*models.Post, error) {
	var post models.Post
	filter := bson.M{"slug": slug, "status": models.PostStatusPublished}
	err := r.collection.FindOne(ctx, filter).Decode(&post)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("post not found")
		}
		return nil, err
	}
	return &post, nil
}

// GetPostsByStatus retrieves posts with the given status, newest first.
// The admin area uses this for the drafts, published, archived and trash tabs.
func (r *MongoPostRepository) GetPostsByStatus(ctx context.Context, status string, skip, limit int64) ([]models.Post, error) {
	var posts []models.Post
	findOptions := options.Find().SetSkip(skip).SetLimit(limit).SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{"status": status}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// SearchPublishedPosts retrieves published posts for the public reader,
// optionally filtered by a case-insensitive title match and/or a tag.
func (r *MongoPostRepository) SearchPublishedPosts(ctx context.Context, query, tag string, skip, limit int64) ([]models.Post, error) {
	filter := bson.M{"status": models.PostStatusPublished}
	if query != "" {
		filter["title"] = bson.M{"$regex": query, "$options": "i"}
	}
	if tag != "" {
		filter["tags"] = tag
	}

	var posts []models.Post
	findOptions := options.Find().SetSkip(skip).SetLimit(limit).SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// UpdatePost updates the editable fields of an existing post in MongoDB
func (r *MongoPostRepository) UpdatePost(ctx context.Context, id string, post *models.Post) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("invalid post ID format: %w", err)
	}

	post.UpdatedAt = time.Now()
	update := bson.M{
		"$set": bson.M{
			"slug":             post.Slug,
			"title":            post.Title,
			"excerpt":          post.Excerpt,
			"content":          post.Content,
			"tags":             post.Tags,
			"cover_image_url":  post.CoverImageURL,
			"meta_title":       post.MetaTitle,
			"meta_description": post.MetaDescription,
			"updated_at":       post.UpdatedAt,
		},
	}
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": objID}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("post not found")
	}
	return nil
}

// SetPostStatus moves a post through its lifecycle (publish, archive, trash, restore)
func (r *MongoPostRepository) SetPostStatus(ctx context.Context, id, status string) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("invalid post ID format: %w", err)
	}

	update := bson.M{"$set": bson.M{"status": status, "updated_at": time.Now()}}
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": objID}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("post not found")
	}
	return nil
}

// DeletePost permanently deletes a post by ID from MongoDB (empty-trash path)
func (r *MongoPostRepository) DeletePost(ctx context.Context, id string) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("invalid post ID format: %w", err)
	}

	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": objID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("post not found")
	}
	return nil
}

// PublishedPosts retrieves all published posts ordered by created_at descending
func (r *MongoPostRepository) PublishedPosts(ctx context.Context) ([]models.Post, error) {
	var posts []models.Post
	findOptions := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{"status": models.PostStatusPublished}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// PublishedTags returns the tags of all published posts flattened in
// first-seen order (posts newest first). Duplicates are left in; the sitemap
// generator deduplicates.
func (r *MongoPostRepository) PublishedTags(ctx context.Context) ([]string, error) {
	findOptions := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetProjection(bson.M{"tags": 1})
	cursor, err := r.collection.Find(ctx, bson.M{"status": models.PostStatusPublished}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []struct {
		Tags []string `bson:"tags"`
	}
	if err = cursor.All(ctx, &docs); err != nil {
		return nil, err
	}

	var tags []string
	for _, doc := range docs {
		tags = append(tags, doc.Tags...)
	}
	return tags, nil
}
