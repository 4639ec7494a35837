package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/Dias221467/activity_notifier/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	defaultNotificationLimit = 50
	maxNotificationLimit     = 200
)

type NotificationReader interface {
	GetUserNotifications(ctx context.Context, userID primitive.ObjectID, limit int64) ([]models.Notification, error)
	UnreadCount(ctx context.Context, userID primitive.ObjectID) (int64, error)
	MarkNotificationAsRead(ctx context.Context, id, userID primitive.ObjectID) error
}

type NotificationHandler struct {
	Service NotificationReader
}

func NewNotificationHandler(service NotificationReader) *NotificationHandler {
	return &NotificationHandler{Service: service}
}

// GET /notifications?limit=N
func (h *NotificationHandler) GetUserNotificationsHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	limit := int64(defaultNotificationLimit)
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || n <= 0 {
			http.Error(w, "Invalid limit", http.StatusBadRequest)
			return
		}
		limit = min(n, maxNotificationLimit)
	}

	notifications, err := h.Service.GetUserNotifications(r.Context(), userID, limit)
	if err != nil {
		respondError(w, err, "Failed to get notifications")
		return
	}
	if notifications == nil {
		notifications = []models.Notification{}
	}
	respondJSON(w, http.StatusOK, notifications)
}

// GET /notifications/unread-count
func (h *NotificationHandler) UnreadCountHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	count, err := h.Service.UnreadCount(r.Context(), userID)
	if err != nil {
		respondError(w, err, "Failed to count notifications")
		return
	}
	respondJSON(w, http.StatusOK, map[string]int64{"count": count})
}

// POST /notifications/{id}/read
func (h *NotificationHandler) MarkAsReadHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	notifID, ok := pathID(w, r, "notification")
	if !ok {
		return
	}

	if err := h.Service.MarkNotificationAsRead(r.Context(), notifID, userID); err != nil {
		respondError(w, err, "Failed to mark as read")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "Notification marked as read"})
}
