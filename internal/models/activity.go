package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TargetModel names the kind of entity an activity is performed on.
type TargetModel string

// Action names what the user did to the target.
type Action string

// EventModel names the kind of sub-entity that triggered an activity.
type EventModel string

const (
	TargetModelPage TargetModel = "Page"

	ActionComment Action = "COMMENT"
	ActionLike    Action = "LIKE"
	ActionEdit    Action = "EDIT"

	EventModelComment  EventModel = "Comment"
	EventModelRevision EventModel = "Revision"
)

// These values are persisted; never rename or remove one.
var (
	supportedTargetModels = []TargetModel{TargetModelPage}
	supportedActions      = []Action{ActionComment, ActionLike, ActionEdit}
	supportedEventModels  = []EventModel{EventModelComment, EventModelRevision}
)

func SupportedTargetModels() []TargetModel { return append([]TargetModel(nil), supportedTargetModels...) }
func SupportedActions() []Action           { return append([]Action(nil), supportedActions...) }
func SupportedEventModels() []EventModel   { return append([]EventModel(nil), supportedEventModels...) }

func (m TargetModel) IsValid() bool {
	for _, s := range supportedTargetModels {
		if m == s {
			return true
		}
	}
	return false
}

func (a Action) IsValid() bool {
	for _, s := range supportedActions {
		if a == s {
			return true
		}
	}
	return false
}

func (m EventModel) IsValid() bool {
	for _, s := range supportedEventModels {
		if m == s {
			return true
		}
	}
	return false
}

// Activity is an immutable log entry of one user action against one target.
type Activity struct {
	ID          primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	UserID      primitive.ObjectID  `bson:"user" json:"user"`
	TargetModel TargetModel         `bson:"targetModel" json:"target_model"`
	TargetID    primitive.ObjectID  `bson:"target" json:"target"`
	Action      Action              `bson:"action" json:"action"`
	EventID     *primitive.ObjectID `bson:"event,omitempty" json:"event,omitempty"`
	EventModel  EventModel          `bson:"eventModel,omitempty" json:"event_model,omitempty"`
	CreatedAt   time.Time           `bson:"createdAt" json:"created_at"`
}

// Validate checks required fields and registered enum values.
func (a *Activity) Validate() error {
	if a.UserID.IsZero() {
		return NewValidationError("user", "is required")
	}
	if a.TargetID.IsZero() {
		return NewValidationError("target", "is required")
	}
	if a.TargetModel == "" {
		return NewValidationError("targetModel", "is required")
	}
	if !a.TargetModel.IsValid() {
		return NewValidationError("targetModel", "`"+string(a.TargetModel)+"` is not a supported target model")
	}
	if a.Action == "" {
		return NewValidationError("action", "is required")
	}
	if !a.Action.IsValid() {
		return NewValidationError("action", "`"+string(a.Action)+"` is not a supported action")
	}
	if a.EventID != nil {
		if a.EventID.IsZero() {
			return NewValidationError("event", "must not be empty when set")
		}
		if a.EventModel == "" {
			return NewValidationError("eventModel", "is required when event is set")
		}
	}
	if a.EventModel != "" && !a.EventModel.IsValid() {
		return NewValidationError("eventModel", "`"+string(a.EventModel)+"` is not a supported event model")
	}
	return nil
}

// ActivityFilter selects activities for lookup or removal. Zero fields are ignored.
type ActivityFilter struct {
	UserID      primitive.ObjectID
	TargetModel TargetModel
	TargetID    primitive.ObjectID
	Action      Action
}

func (f ActivityFilter) IsEmpty() bool {
	return f.UserID.IsZero() && f.TargetModel == "" && f.TargetID.IsZero() && f.Action == ""
}
