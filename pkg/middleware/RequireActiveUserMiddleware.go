package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/Dias221467/activity_notifier/internal/models"
	"github.com/Dias221467/activity_notifier/pkg/logger"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserLookup loads the account behind a token.
type UserLookup interface {
	GetUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
}

// RequireActiveUserMiddleware rejects tokens whose account is missing or not active,
// so suspended and deleted users cannot produce activities.
func RequireActiveUserMiddleware(users UserLookup) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := GetUserFromContext(r.Context())
			if claims == nil {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}
			userID, err := primitive.ObjectIDFromHex(claims.UserID)
			if err != nil {
				http.Error(w, "Invalid token", http.StatusUnauthorized)
				return
			}

			user, err := users.GetUserByID(r.Context(), userID)
			if err != nil {
				if errors.Is(err, models.ErrNotFound) {
					http.Error(w, "Unauthorized", http.StatusUnauthorized)
					return
				}
				logger.Log.WithError(err).Error("Failed to load user for request")
				http.Error(w, "Internal server error", http.StatusInternalServerError)
				return
			}
			if !user.IsActive() {
				http.Error(w, "Account is not active", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
