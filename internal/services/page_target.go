package services

import (
	"context"

	"github.com/Dias221467/activity_notifier/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PageTarget is a loaded page. Its interested parties are the creator, the last
// updater and everyone who commented on it.
type PageTarget struct {
	Page     *models.Page
	comments CommentRepository
}

func (t *PageTarget) InterestedParties(ctx context.Context) ([]primitive.ObjectID, error) {
	users := []primitive.ObjectID{t.Page.Creator}
	if t.Page.LastUpdateUser != nil {
		users = append(users, *t.Page.LastUpdateUser)
	}

	commenters, err := t.comments.CreatorsByPage(ctx, t.Page.ID)
	if err != nil {
		return nil, err
	}
	return append(users, commenters...), nil
}

// NewPageLoader returns the TargetLoader for models.TargetModelPage.
func NewPageLoader(pages PageRepository, comments CommentRepository) TargetLoader {
	return TargetLoaderFunc(func(ctx context.Context, id primitive.ObjectID) (Target, error) {
		page, err := pages.GetPageByID(ctx, id)
		if err != nil {
			return nil, err
		}
		return &PageTarget{Page: page, comments: comments}, nil
	})
}
