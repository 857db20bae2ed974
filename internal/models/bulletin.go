package models

import (
	"time"

	"github.com/google/uuid"
)

// Audience is the target filter for announcements and broadcasts.
type Audience string

const (
	AudienceAll       Audience = "all"
	AudienceResidents Audience = "residents"
	AudienceAdmins    Audience = "admins"
)

// ValidAudience reports whether a is one of the supported audiences.
func ValidAudience(a Audience) bool {
	switch a {
	case AudienceAll, AudienceResidents, AudienceAdmins:
		return true
	}
	return false
}

// Announcement is an admin-published notice addressed to an audience.
type Announcement struct {
	ID        uuid.UUID  `json:"id"`
	Title     string     `json:"title"`
	Content   string     `json:"content"`
	Audience  Audience   `json:"audience"`
	Priority  Priority   `json:"priority"`
	Active    bool       `json:"active"`
	ExpiresAt *time.Time `json:"expiresAt,omitempty"`
	CreatedBy uuid.UUID  `json:"createdBy"`
	CreatedAt time.Time  `json:"createdAt"`
}

// CommunityEvent is a scheduled community happening. Only public, active
// events are announced to residents.
type CommunityEvent struct {
	ID        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	Details   string    `json:"details"`
	Location  string    `json:"location"`
	StartsAt  time.Time `json:"startsAt"`
	Public    bool      `json:"public"`
	Active    bool      `json:"active"`
	CreatedBy uuid.UUID `json:"createdBy"`
	CreatedAt time.Time `json:"createdAt"`
}
