package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type PageGrant int

const (
	GrantPublic     PageGrant = 1
	GrantRestricted PageGrant = 2
	GrantOwner      PageGrant = 4
)

func (g PageGrant) IsValid() bool {
	return g == GrantPublic || g == GrantRestricted || g == GrantOwner
}

type Page struct {
	ID             primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	Path           string              `bson:"path" json:"path"`
	Grant          PageGrant           `bson:"grant" json:"grant"`
	Creator        primitive.ObjectID  `bson:"creator" json:"creator"`
	LastUpdateUser *primitive.ObjectID `bson:"lastUpdateUser,omitempty" json:"last_update_user,omitempty"`
	CreatedAt      time.Time           `bson:"createdAt" json:"created_at"`
	UpdatedAt      time.Time           `bson:"updatedAt" json:"updated_at"`
}

type Comment struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	PageID    primitive.ObjectID `bson:"page" json:"page"`
	Creator   primitive.ObjectID `bson:"creator" json:"creator"`
	Comment   string             `bson:"comment" json:"comment"`
	CreatedAt time.Time          `bson:"createdAt" json:"created_at"`
}
