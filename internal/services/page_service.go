package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/Dias221467/activity_notifier/internal/models"
	"github.com/Dias221467/activity_notifier/pkg/logger"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PageService holds the page-side actions that produce or remove activities.
type PageService struct {
	pages      PageRepository
	comments   CommentRepository
	watchers   WatcherRepository
	activities *ActivityService
}

func NewPageService(pages PageRepository, comments CommentRepository, watchers WatcherRepository, activities *ActivityService) *PageService {
	return &PageService{
		pages:      pages,
		comments:   comments,
		watchers:   watchers,
		activities: activities,
	}
}

// Create stores a new page owned by creator.
func (s *PageService) Create(ctx context.Context, creator primitive.ObjectID, path string, grant models.PageGrant) (*models.Page, error) {
	path = strings.TrimSpace(path)
	if !strings.HasPrefix(path, "/") {
		return nil, models.NewValidationError("path", "must start with /")
	}
	if grant == 0 {
		grant = models.GrantPublic
	}
	if !grant.IsValid() {
		return nil, models.NewValidationError("grant", fmt.Sprintf("`%d` is not a supported grant", grant))
	}

	return s.pages.CreatePage(ctx, &models.Page{
		Path:    path,
		Grant:   grant,
		Creator: creator,
	})
}

// AddComment stores a comment on the page and logs a COMMENT activity for it.
// The comment is removed again when the activity cannot be logged.
func (s *PageService) AddComment(ctx context.Context, pageID, creator primitive.ObjectID, text string) (*models.Comment, *models.Activity, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil, models.NewValidationError("comment", "is required")
	}
	if _, err := s.pages.GetPageByID(ctx, pageID); err != nil {
		return nil, nil, err
	}

	comment, err := s.comments.CreateComment(ctx, &models.Comment{
		PageID:  pageID,
		Creator: creator,
		Comment: text,
	})
	if err != nil {
		return nil, nil, err
	}

	activity, err := s.activities.CreateByPageComment(ctx, comment)
	if err != nil {
		if delErr := s.comments.DeleteByID(ctx, comment.ID); delErr != nil {
			logger.Log.WithError(delErr).WithField("comment_id", comment.ID.Hex()).Error("Failed to roll back comment")
		}
		return nil, nil, fmt.Errorf("failed to log comment activity: %w", err)
	}
	return comment, activity, nil
}

func (s *PageService) Like(ctx context.Context, pageID, userID primitive.ObjectID) (*models.Activity, error) {
	if _, err := s.pages.GetPageByID(ctx, pageID); err != nil {
		return nil, err
	}
	return s.activities.CreateByPageLike(ctx, pageID, userID)
}

func (s *PageService) Unlike(ctx context.Context, pageID, userID primitive.ObjectID) (int64, error) {
	return s.activities.RemoveByPageUnlike(ctx, pageID, userID)
}

// Delete removes the page's activities (retracting their notifications) before the page itself.
func (s *PageService) Delete(ctx context.Context, pageID primitive.ObjectID) error {
	if _, err := s.pages.GetPageByID(ctx, pageID); err != nil {
		return err
	}

	removed, err := s.activities.RemoveByPage(ctx, pageID)
	if err != nil {
		return err
	}
	if err := s.comments.DeleteByPage(ctx, pageID); err != nil {
		return err
	}
	if err := s.watchers.DeleteByTarget(ctx, pageID); err != nil {
		return err
	}
	if err := s.pages.DeletePage(ctx, pageID); err != nil {
		return err
	}

	logger.Log.WithField("page_id", pageID.Hex()).WithField("activities", removed).Info("Page and its activities deleted")
	return nil
}
