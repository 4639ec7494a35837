package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/Dias221467/activity_notifier/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type CommentRepository struct {
	collection *mongo.Collection
}

func NewCommentRepository(db *mongo.Database) *CommentRepository {
	return &CommentRepository{
		collection: db.Collection("comments"),
	}
}

func (r *CommentRepository) CreateComment(ctx context.Context, comment *models.Comment) (*models.Comment, error) {
	comment.CreatedAt = time.Now()

	result, err := r.collection.InsertOne(ctx, comment)
	if err != nil {
		return nil, fmt.Errorf("failed to insert comment: %w", err)
	}
	if id, ok := result.InsertedID.(primitive.ObjectID); ok {
		comment.ID = id
	}
	return comment, nil
}

// CreatorsByPage returns the distinct users who commented on the page.
func (r *CommentRepository) CreatorsByPage(ctx context.Context, pageID primitive.ObjectID) ([]primitive.ObjectID, error) {
	values, err := r.collection.Distinct(ctx, "creator", bson.M{"page": pageID})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch comment creators: %w", err)
	}
	return objectIDs(values), nil
}

func (r *CommentRepository) DeleteByPage(ctx context.Context, pageID primitive.ObjectID) error {
	if _, err := r.collection.DeleteMany(ctx, bson.M{"page": pageID}); err != nil {
		return fmt.Errorf("failed to delete comments: %w", err)
	}
	return nil
}

func (r *CommentRepository) DeleteByID(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete comment: %w", err)
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("comment %s: %w", id.Hex(), models.ErrNotFound)
	}
	return nil
}
