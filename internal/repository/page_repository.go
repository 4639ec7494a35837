package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/Dias221467/activity_notifier/internal/models"
	"github.com/Dias221467/activity_notifier/pkg/logger"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// PageRepository reads and deletes the page fields the notifier needs.
type PageRepository struct {
	collection *mongo.Collection
}

func NewPageRepository(db *mongo.Database) *PageRepository {
	return &PageRepository{
		collection: db.Collection("pages"),
	}
}

func (r *PageRepository) CreatePage(ctx context.Context, page *models.Page) (*models.Page, error) {
	page.CreatedAt = time.Now()
	page.UpdatedAt = page.CreatedAt

	result, err := r.collection.InsertOne(ctx, page)
	if err != nil {
		logger.Log.WithError(err).Error("Failed to insert page")
		return nil, fmt.Errorf("failed to insert page: %w", err)
	}
	if id, ok := result.InsertedID.(primitive.ObjectID); ok {
		page.ID = id
	}
	return page, nil
}

// GetPageByID fetches a page; a missing page yields models.ErrNotFound.
func (r *PageRepository) GetPageByID(ctx context.Context, id primitive.ObjectID) (*models.Page, error) {
	var page models.Page
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&page); err != nil {
		if isNoDocuments(err) {
			return nil, fmt.Errorf("page %s: %w", id.Hex(), models.ErrNotFound)
		}
		logger.Log.WithError(err).WithField("page_id", id.Hex()).Error("Failed to find page by ID")
		return nil, fmt.Errorf("failed to find page: %w", err)
	}
	return &page, nil
}

func (r *PageRepository) DeletePage(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete page: %w", err)
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("page %s: %w", id.Hex(), models.ErrNotFound)
	}
	logger.Log.WithField("page_id", id.Hex()).Info("Page deleted successfully")
	return nil
}
