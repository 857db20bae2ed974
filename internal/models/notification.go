package models

import (
	"time"

	"github.com/google/uuid"
)

type NotificationType string

const (
	NotificationIssueUpdate  NotificationType = "issue_update"
	NotificationAnnouncement NotificationType = "announcement"
	NotificationEvent        NotificationType = "event"
	NotificationSystem       NotificationType = "system"
	NotificationSecurity     NotificationType = "security"
)

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// ValidNotificationType reports whether t is one of the supported types.
func ValidNotificationType(t NotificationType) bool {
	switch t {
	case NotificationIssueUpdate, NotificationAnnouncement, NotificationEvent,
		NotificationSystem, NotificationSecurity:
		return true
	}
	return false
}

// ValidPriority reports whether p is one of the supported priorities.
func ValidPriority(p Priority) bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

// Notification is one per-recipient record produced by the fan-out engine.
// Only the recipient may mutate or delete it.
type Notification struct {
	ID             uuid.UUID        `json:"id"`
	RecipientID    uuid.UUID        `json:"recipientId"`
	Title          string           `json:"title"`
	Message        string           `json:"message"`
	Type           NotificationType `json:"type"`
	Priority       Priority         `json:"priority"`
	Read           bool             `json:"read"`
	RelatedIssueID *uuid.UUID       `json:"relatedIssueId,omitempty"`
	ActionURL      string           `json:"actionUrl,omitempty"`
	CreatedAt      time.Time        `json:"createdAt"`
	ExpiresAt      *time.Time       `json:"expiresAt,omitempty"`
}
