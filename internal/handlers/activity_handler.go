package handlers

import (
	"context"
	"net/http"

	"github.com/Dias221467/activity_notifier/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ActivityLister interface {
	FindByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Activity, error)
}

type ActivityHandler struct {
	Service ActivityLister
}

func NewActivityHandler(service ActivityLister) *ActivityHandler {
	return &ActivityHandler{Service: service}
}

// GET /users/{id}/activities
func (h *ActivityHandler) GetUserActivitiesHandler(w http.ResponseWriter, r *http.Request) {
	if _, ok := currentUser(w, r); !ok {
		return
	}
	userID, ok := pathID(w, r, "user")
	if !ok {
		return
	}

	activities, err := h.Service.FindByUser(r.Context(), userID)
	if err != nil {
		respondError(w, err, "Failed to get activities")
		return
	}
	if activities == nil {
		activities = []models.Activity{}
	}
	respondJSON(w, http.StatusOK, activities)
}
