package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type NotificationStatus string

const (
	NotificationUnread   NotificationStatus = "UNREAD"
	NotificationUnopened NotificationStatus = "UNOPENED"
	NotificationOpened   NotificationStatus = "OPENED"
)

// Notification is the consolidated, per-recipient view of every activity on (target, action).
type Notification struct {
	ID          primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	UserID      primitive.ObjectID   `bson:"user" json:"user"`
	TargetModel TargetModel          `bson:"targetModel" json:"target_model"`
	TargetID    primitive.ObjectID   `bson:"target" json:"target"`
	Action      Action               `bson:"action" json:"action"`
	Activities  []primitive.ObjectID `bson:"activities" json:"activities"` // newest first
	Status      NotificationStatus   `bson:"status" json:"status"`
	CreatedAt   time.Time            `bson:"createdAt" json:"created_at"`
}
