package models

import (
	"time"

	"github.com/google/uuid"
)

// Role determines what a user is allowed to do on the platform.
type Role string

const (
	RoleResident Role = "resident"
	RoleAdmin    Role = "admin"
)

// UserStatus tracks account standing. Only active users receive
// notifications or direct messages.
type UserStatus string

const (
	StatusActive    UserStatus = "active"
	StatusInactive  UserStatus = "inactive"
	StatusSuspended UserStatus = "suspended"
)

type User struct {
	ID             uuid.UUID  `json:"id" bson:"_id"`
	Name           string     `json:"name" bson:"name"`
	Email          string     `json:"email,omitempty" bson:"email"`
	HashedPassword string     `json:"-" bson:"passwordHash"`
	Role           Role       `json:"role" bson:"role"`
	Status         UserStatus `json:"status" bson:"status"`
	Phone          string     `json:"phone,omitempty" bson:"phone,omitempty"`
	Unit           string     `json:"unit,omitempty" bson:"unit,omitempty"`
	CallOriginated bool       `json:"callOriginated" bson:"callOriginated"`
	CreatedAt      time.Time  `json:"createdAt" bson:"createdAt"`
	LastActive     time.Time  `json:"lastActive" bson:"lastActive"`
}

// CanReceiveMessages reports whether the user is a valid direct-message
// receiver. Suspended and inactive accounts are not reachable.
func (u *User) CanReceiveMessages() bool {
	return u.Status == StatusActive
}
