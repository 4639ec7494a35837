package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/Dias221467/activity_notifier/internal/models"
	"github.com/Dias221467/activity_notifier/pkg/logger"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PageActions is the page-side behaviour the handler drives.
type PageActions interface {
	Create(ctx context.Context, creator primitive.ObjectID, path string, grant models.PageGrant) (*models.Page, error)
	AddComment(ctx context.Context, pageID, creator primitive.ObjectID, text string) (*models.Comment, *models.Activity, error)
	Like(ctx context.Context, pageID, userID primitive.ObjectID) (*models.Activity, error)
	Unlike(ctx context.Context, pageID, userID primitive.ObjectID) (int64, error)
	Delete(ctx context.Context, pageID primitive.ObjectID) error
}

// WatchSetter records watch/ignore state.
type WatchSetter interface {
	Watch(ctx context.Context, userID primitive.ObjectID, targetModel models.TargetModel, targetID primitive.ObjectID, status models.WatchStatus) (*models.Watcher, error)
}

type PageHandler struct {
	Pages    PageActions
	Watchers WatchSetter
}

func NewPageHandler(pages PageActions, watchers WatchSetter) *PageHandler {
	return &PageHandler{Pages: pages, Watchers: watchers}
}

type createPageRequest struct {
	Path  string           `json:"path"`
	Grant models.PageGrant `json:"grant"`
}

type commentRequest struct {
	Comment string `json:"comment"`
}

type watchRequest struct {
	Status models.WatchStatus `json:"status"`
}

// POST /pages
func (h *PageHandler) CreatePageHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req createPageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	page, err := h.Pages.Create(r.Context(), userID, req.Path, req.Grant)
	if err != nil {
		respondError(w, err, "Failed to create page")
		return
	}
	respondJSON(w, http.StatusCreated, page)
}

// POST /pages/{id}/comments
func (h *PageHandler) AddCommentHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	pageID, ok := pathID(w, r, "page")
	if !ok {
		return
	}

	var req commentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	comment, activity, err := h.Pages.AddComment(r.Context(), pageID, userID, req.Comment)
	if err != nil {
		respondError(w, err, "Failed to add comment")
		return
	}

	logger.Log.WithField("page_id", pageID.Hex()).Info("Comment added")
	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"comment":  comment,
		"activity": activity,
	})
}

// POST /pages/{id}/like
func (h *PageHandler) LikeHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	pageID, ok := pathID(w, r, "page")
	if !ok {
		return
	}

	activity, err := h.Pages.Like(r.Context(), pageID, userID)
	if err != nil {
		respondError(w, err, "Failed to like page")
		return
	}
	respondJSON(w, http.StatusCreated, activity)
}

// DELETE /pages/{id}/like
func (h *PageHandler) UnlikeHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	pageID, ok := pathID(w, r, "page")
	if !ok {
		return
	}

	removed, err := h.Pages.Unlike(r.Context(), pageID, userID)
	if err != nil {
		respondError(w, err, "Failed to unlike page")
		return
	}
	respondJSON(w, http.StatusOK, map[string]int64{"removed": removed})
}

// DELETE /pages/{id}
func (h *PageHandler) DeletePageHandler(w http.ResponseWriter, r *http.Request) {
	if _, ok := currentUser(w, r); !ok {
		return
	}
	pageID, ok := pathID(w, r, "page")
	if !ok {
		return
	}

	if err := h.Pages.Delete(r.Context(), pageID); err != nil {
		respondError(w, err, "Failed to delete page")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "Page deleted"})
}

// PUT /pages/{id}/watch
func (h *PageHandler) WatchHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	pageID, ok := pathID(w, r, "page")
	if !ok {
		return
	}

	var req watchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	watcher, err := h.Watchers.Watch(r.Context(), userID, models.TargetModelPage, pageID, req.Status)
	if err != nil {
		respondError(w, err, "Failed to update watch status")
		return
	}
	respondJSON(w, http.StatusOK, watcher)
}
