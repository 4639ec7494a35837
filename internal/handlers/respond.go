package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Dias221467/activity_notifier/internal/models"
	"github.com/Dias221467/activity_notifier/pkg/logger"
	"github.com/Dias221467/activity_notifier/pkg/middleware"
	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func respondJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Log.WithError(err).Warn("Failed to encode response")
	}
}

// respondError maps the domain error taxonomy onto HTTP status codes.
func respondError(w http.ResponseWriter, err error, msg string) {
	var verr *models.ValidationError
	switch {
	case errors.As(err, &verr):
		http.Error(w, verr.Error(), http.StatusBadRequest)
	case errors.Is(err, models.ErrConflict):
		http.Error(w, "Already exists", http.StatusConflict)
	case errors.Is(err, models.ErrNotFound), errors.Is(err, models.ErrTargetNotFound):
		http.Error(w, "Not found", http.StatusNotFound)
	default:
		logger.Log.WithError(err).Error(msg)
		http.Error(w, msg, http.StatusInternalServerError)
	}
}

// currentUser returns the authenticated actor, writing 401 when there is none.
func currentUser(w http.ResponseWriter, r *http.Request) (primitive.ObjectID, bool) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return primitive.NilObjectID, false
	}
	userID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		http.Error(w, "Invalid user ID in token", http.StatusUnauthorized)
		return primitive.NilObjectID, false
	}
	return userID, true
}

// pathID parses the {id} route variable, writing 400 when it is malformed.
func pathID(w http.ResponseWriter, r *http.Request, what string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid "+what+" ID", http.StatusBadRequest)
		return primitive.NilObjectID, false
	}
	return id, true
}
