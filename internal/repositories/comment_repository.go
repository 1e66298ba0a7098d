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

// CommentRepository defines the interface for comment data operations
type CommentRepository interface {
	CreateComment(ctx context.Context, comment *models.Comment) error
	GetCommentByID(ctx context.Context, id string) (*models.Comment, error)
	GetCommentsByPostID(ctx context.Context, postID string) ([]models.Comment, error)
	ToggleLike(ctx context.Context, commentID, userID string) (bool, error)
	SetApproved(ctx context.Context, commentID string, approved bool) error
	GetUnapprovedComments(ctx context.Context, skip, limit int64) ([]models.Comment, error)
	DeleteComment(ctx context.Context, id string) error
	DeleteCommentsByPostID(ctx context.Context, postID string) error
}

// MongoCommentRepository implements CommentRepository for MongoDB
type MongoCommentRepository struct {
	collection *mongo.Collection
}

// NewMongoCommentRepository creates a new MongoCommentRepository
func NewMongoCommentRepository(db *mongo.Database) *MongoCommentRepository {
	return &MongoCommentRepository{collection: db.Collection("comments")}
}

// CreateComment creates a new comment in MongoDB. The timestamp is assigned
// here rather than trusted from the client, and the like set starts empty.
func (r *MongoCommentRepository) CreateComment(ctx context.Context, comment *models.Comment) error {
	comment.ID = primitive.NewObjectID()
	comment.CreatedAt = time.Now()
	if comment.LikeUserIDs == nil {
		comment.LikeUserIDs = []string{}
	}
	_, err := r.collection.InsertOne(ctx, comment)
	return err
}

// GetCommentByID retrieves a comment by ID from MongoDB
func (r *MongoCommentRepository) GetCommentByID(ctx context.Context, id string) (*models.Comment, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("invalid comment ID format: %w", err)
	}

	var comment models.Comment
	err = r.collection.FindOne(ctx, bson.M{"_id": objID}).Decode(&comment)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("comment not found")
		}
		return nil, err
	}
	return &comment, nil
}

// GetCommentsByPostID retrieves all comments for a post ordered by created_at
// ascending, the natural conversation order the thread builder expects.
func (r *MongoCommentRepository) GetCommentsByPostID(ctx context.Context, postID string) ([]models.Comment, error) {
	objID, err := primitive.ObjectIDFromHex(postID)
	if err != nil {
		return nil, fmt.Errorf("invalid post ID format: %w", err)
	}

	var comments []models.Comment
	findOptions := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{"post_id": objID}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &comments); err != nil {
		return nil, err
	}
	return comments, nil
}

// ToggleLike atomically adds or removes a user from a comment's like set and
// reports whether the comment ends up liked by that user. Both branches are
// single set-membership updates ($pull / $addToSet) so two users liking
// concurrently can never lose each other's update.
func (r *MongoCommentRepository) ToggleLike(ctx context.Context, commentID, userID string) (bool, error) {
	objID, err := primitive.ObjectIDFromHex(commentID)
	if err != nil {
		return false, fmt.Errorf("invalid comment ID format: %w", err)
	}

	// Un-like: only matches when the user is currently in the set.
	res, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": objID, "like_user_ids": userID},
		bson.M{"$pull": bson.M{"like_user_ids": userID}},
	)
	if err != nil {
		return false, err
	}
	if res.ModifiedCount > 0 {
		return false, nil
	}

	// Like: $addToSet keeps the operation idempotent under races with the
	// branch above.
	res, err = r.collection.UpdateOne(ctx,
		bson.M{"_id": objID},
		bson.M{"$addToSet": bson.M{"like_user_ids": userID}},
	)
	if err != nil {
		return false, err
	}
	if res.MatchedCount == 0 {
		return false, fmt.Errorf("comment not found")
	}
	return true, nil
}

// SetApproved toggles the moderation approval flag on a comment
func (r *MongoCommentRepository) SetApproved(ctx context.Context, commentID string, approved bool) error {
	objID, err := primitive.ObjectIDFromHex(commentID)
	if err != nil {
		return fmt.Errorf("invalid comment ID format: %w", err)
	}

	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": objID}, bson.M{"$set": bson.M{"approved": approved}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("comment not found")
	}
	return nil
}

// GetUnapprovedComments retrieves comments awaiting moderation, newest first
func (r *MongoCommentRepository) GetUnapprovedComments(ctx context.Context, skip, limit int64) ([]models.Comment, error) {
	var comments []models.Comment
	findOptions := options.Find().SetSkip(skip).SetLimit(limit).SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{"approved": false}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &comments); err != nil {
		return nil, err
	}
	return comments, nil
}

// DeleteComment deletes a comment by ID from MongoDB (moderation path only)
func (r *MongoCommentRepository) DeleteComment(ctx context.Context, id string) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("invalid comment ID format: %w", err)
	}

	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": objID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("comment not found")
	}
	return nil
}

// DeleteCommentsByPostID removes all comments of a post when the post is
// permanently deleted from trash
func (r *MongoCommentRepository) DeleteCommentsByPostID(ctx context.Context, postID string) error {
	objID, err := primitive.ObjectIDFromHex(postID)
	if err != nil {
		return fmt.Errorf("invalid post ID format: %w", err)
	}

	_, err = r.collection.DeleteMany(ctx, bson.M{"post_id": objID})
	return err
}
