package models

import (
	"time"

	"github.com/google/uuid"
)

type IssueStatus string

const (
	IssuePending    IssueStatus = "pending"
	IssueInProgress IssueStatus = "in-progress"
	IssueResolved   IssueStatus = "resolved"
	IssueRejected   IssueStatus = "rejected"
)

// ValidIssueStatus reports whether s is one of the supported statuses.
func ValidIssueStatus(s IssueStatus) bool {
	switch s {
	case IssuePending, IssueInProgress, IssueResolved, IssueRejected:
		return true
	}
	return false
}

// Issue sources. Voice-originated issues carry call metadata so admins can
// see where a report came from.
const (
	IssueSourceApp   = "app"
	IssueSourceVoice = "voice-call"
)

// CallMetadata is the context an inbound voice-call webhook attaches to the
// issue it creates.
type CallMetadata struct {
	CallID    string            `json:"callId,omitempty"`
	AgentID   string            `json:"agentId,omitempty"`
	Duration  int               `json:"duration,omitempty"`
	Summary   string            `json:"summary,omitempty"`
	Extracted map[string]string `json:"extracted,omitempty"`
}

// Issue is a resident-reported (or call-reported) maintenance/complaint
// record. ResidentID is nil when no resident is on file.
type Issue struct {
	ID          uuid.UUID     `json:"id"`
	ResidentID  *uuid.UUID    `json:"residentId,omitempty"`
	Category    string        `json:"category"`
	Priority    Priority      `json:"priority"`
	Description string        `json:"description"`
	Location    string        `json:"location"`
	Status      IssueStatus   `json:"status"`
	Source      string        `json:"source"`
	CallMeta    *CallMetadata `json:"callMeta,omitempty"`
	CreatedAt   time.Time     `json:"createdAt"`
	UpdatedAt   time.Time     `json:"updatedAt"`
}
