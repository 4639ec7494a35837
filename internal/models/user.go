package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type UserStatus int

const (
	UserStatusRegistered UserStatus = 1
	UserStatusActive     UserStatus = 2
	UserStatusSuspended  UserStatus = 3
	UserStatusDeleted    UserStatus = 4
	UserStatusInvited    UserStatus = 5
)

// User is the subset of an account the notifier reads.
type User struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Username  string             `bson:"username" json:"username"`
	Email     string             `bson:"email" json:"email"`
	Status    UserStatus         `bson:"status" json:"status"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updated_at"`
}

func (u *User) IsActive() bool {
	return u.Status == UserStatusActive
}
