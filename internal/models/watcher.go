package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type WatchStatus string

const (
	WatchStatusWatch  WatchStatus = "WATCH"
	WatchStatusIgnore WatchStatus = "IGNORE"
)

func (s WatchStatus) IsValid() bool {
	return s == WatchStatusWatch || s == WatchStatusIgnore
}

// Watcher is a user's explicit subscription state for one target.
type Watcher struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID      primitive.ObjectID `bson:"user" json:"user"`
	TargetModel TargetModel        `bson:"targetModel" json:"target_model"`
	TargetID    primitive.ObjectID `bson:"target" json:"target"`
	Status      WatchStatus        `bson:"status" json:"status"`
	CreatedAt   time.Time          `bson:"createdAt" json:"created_at"`
}
