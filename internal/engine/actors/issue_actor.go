package actors

import (
	"log"
	"sort"
	"time"

	stdctx "context"

	"commons-hub/internal/database"
	"commons-hub/internal/models"
	"commons-hub/internal/utils"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/google/uuid"
)

// issueTypeDefaults maps an inbound issue type to category and priority.
// Unrecognized types are never rejected, they fall back to general/medium.
var issueTypeDefaults = map[string]struct {
	Category string
	Priority models.Priority
}{
	"plumbing":    {"maintenance", models.PriorityHigh},
	"electrical":  {"maintenance", models.PriorityHigh},
	"heating":     {"maintenance", models.PriorityHigh},
	"appliance":   {"maintenance", models.PriorityMedium},
	"pest":        {"maintenance", models.PriorityMedium},
	"noise":       {"complaint", models.PriorityLow},
	"parking":     {"complaint", models.PriorityLow},
	"neighbor":    {"complaint", models.PriorityMedium},
	"security":    {"security", models.PriorityUrgent},
	"emergency":   {"security", models.PriorityUrgent},
	"cleanliness": {"common-area", models.PriorityLow},
	"amenity":     {"common-area", models.PriorityMedium},
}

// ClassifyIssueType resolves an inbound issue type to category/priority with
// the general/medium default.
func ClassifyIssueType(issueType string) (string, models.Priority) {
	if mapped, ok := issueTypeDefaults[issueType]; ok {
		return mapped.Category, mapped.Priority
	}
	return "general", models.PriorityMedium
}

// Message types for IssueActor
type (
	CreateIssueMsg struct {
		ResidentID  *uuid.UUID           `json:"residentId,omitempty"`
		IssueType   string               `json:"issueType"`
		Description string               `json:"description"`
		Location    string               `json:"location"`
		Source      string               `json:"source"`
		CallMeta    *models.CallMetadata `json:"callMeta,omitempty"`
	}

	GetIssueMsg struct {
		IssueID uuid.UUID `json:"issueId"`
	}

	ListIssuesMsg struct {
		ResidentID *uuid.UUID `json:"residentId,omitempty"`
	}

	UpdateIssueStatusMsg struct {
		IssueID uuid.UUID          `json:"issueId"`
		Status  models.IssueStatus `json:"status"`
	}
)

// IssueStatusChange is the result of a status update. It carries everything
// the fan-out engine needs to notify the issue's resident.
type IssueStatusChange struct {
	Issue     *models.Issue      `json:"issue"`
	OldStatus models.IssueStatus `json:"oldStatus"`
	NewStatus models.IssueStatus `json:"newStatus"`
}

// IssueActor owns the issue records.
type IssueActor struct {
	issues  map[uuid.UUID]*models.Issue
	db      *database.MongoDB
	metrics *utils.MetricsCollector
}

func NewIssueActor(db *database.MongoDB, metrics *utils.MetricsCollector) actor.Actor {
	return &IssueActor{
		issues:  make(map[uuid.UUID]*models.Issue),
		db:      db,
		metrics: metrics,
	}
}

func (a *IssueActor) Receive(context actor.Context) {
	switch msg := context.Message().(type) {
	case *CreateIssueMsg:
		a.handleCreate(context, msg)
	case *GetIssueMsg:
		a.handleGet(context, msg)
	case *ListIssuesMsg:
		a.handleList(context, msg)
	case *UpdateIssueStatusMsg:
		a.handleUpdateStatus(context, msg)
	case *GetCountsMsg:
		context.Respond(len(a.issues))
	}
}

func (a *IssueActor) handleCreate(context actor.Context, msg *CreateIssueMsg) {
	startTime := time.Now()

	if msg.IssueType == "" || msg.Location == "" || msg.Description == "" {
		context.Respond(utils.NewValidationError("issue type, location and description are required"))
		return
	}

	category, priority := ClassifyIssueType(msg.IssueType)
	source := msg.Source
	if source == "" {
		source = models.IssueSourceApp
	}

	now := time.Now()
	issue := &models.Issue{
		ID:          uuid.New(),
		ResidentID:  msg.ResidentID,
		Category:    category,
		Priority:    priority,
		Description: msg.Description,
		Location:    msg.Location,
		Status:      models.IssuePending,
		Source:      source,
		CallMeta:    msg.CallMeta,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if a.db != nil {
		ctx, cancel := stdctx.WithTimeout(stdctx.Background(), 5*time.Second)
		err := a.db.SaveIssue(ctx, issue)
		cancel()
		if err != nil {
			// Issue creation is the primary action of webhook ingestion;
			// unlike counters, a lost issue is not reconstructible, so a
			// store failure here is surfaced for the caller's retry.
			context.Respond(utils.NewAppError(utils.ErrDatabase, "Failed to save issue", err))
			return
		}
	}

	a.issues[issue.ID] = issue
	a.metrics.AddOperationLatency("create_issue", time.Since(startTime))
	log.Printf("Issue %s created (%s/%s, source %s)", issue.ID, issue.Category, issue.Priority, issue.Source)
	context.Respond(issue)
}

func (a *IssueActor) handleGet(context actor.Context, msg *GetIssueMsg) {
	if issue, exists := a.issues[msg.IssueID]; exists {
		context.Respond(issue)
		return
	}
	context.Respond(utils.NewAppError(utils.ErrIssueNotFound, "Issue not found: "+msg.IssueID.String(), nil))
}

func (a *IssueActor) handleList(context actor.Context, msg *ListIssuesMsg) {
	var issues []*models.Issue
	for _, issue := range a.issues {
		if msg.ResidentID != nil {
			if issue.ResidentID == nil || *issue.ResidentID != *msg.ResidentID {
				continue
			}
		}
		issues = append(issues, issue)
	}
	sort.Slice(issues, func(i, j int) bool {
		return issues[i].CreatedAt.After(issues[j].CreatedAt)
	})
	context.Respond(issues)
}

func (a *IssueActor) handleUpdateStatus(context actor.Context, msg *UpdateIssueStatusMsg) {
	issue, exists := a.issues[msg.IssueID]
	if !exists {
		context.Respond(utils.NewAppError(utils.ErrIssueNotFound, "Issue not found: "+msg.IssueID.String(), nil))
		return
	}
	if !models.ValidIssueStatus(msg.Status) {
		context.Respond(utils.NewValidationError("unsupported issue status: " + string(msg.Status)))
		return
	}

	oldStatus := issue.Status
	issue.Status = msg.Status
	issue.UpdatedAt = time.Now()

	if a.db != nil {
		ctx, cancel := stdctx.WithTimeout(stdctx.Background(), 5*time.Second)
		defer cancel()
		if err := a.db.UpdateIssueStatus(ctx, issue.ID, issue.Status, issue.UpdatedAt); err != nil {
			log.Printf("Failed to persist status of issue %s: %v", issue.ID, err)
		}
	}

	context.Respond(&IssueStatusChange{
		Issue:     issue,
		OldStatus: oldStatus,
		NewStatus: msg.Status,
	})
}
