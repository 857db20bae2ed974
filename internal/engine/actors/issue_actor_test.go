package actors

import (
	"testing"

	"commons-hub/internal/models"
	"commons-hub/internal/utils"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func spawnIssueActor(t *testing.T) (*actor.ActorSystem, *actor.PID) {
	t.Helper()
	system := actor.NewActorSystem()
	props := actor.PropsFromProducer(func() actor.Actor {
		return NewIssueActor(nil, utils.NewMetricsCollector())
	})
	return system, system.Root.Spawn(props)
}

func TestClassifyIssueType(t *testing.T) {
	tests := []struct {
		issueType string
		category  string
		priority  models.Priority
	}{
		{"plumbing", "maintenance", models.PriorityHigh},
		{"noise", "complaint", models.PriorityLow},
		{"security", "security", models.PriorityUrgent},
		{"amenity", "common-area", models.PriorityMedium},
		{"something-novel", "general", models.PriorityMedium},
		{"", "general", models.PriorityMedium},
	}
	for _, tt := range tests {
		category, priority := ClassifyIssueType(tt.issueType)
		assert.Equal(t, tt.category, category, "issue type %q", tt.issueType)
		assert.Equal(t, tt.priority, priority, "issue type %q", tt.issueType)
	}
}

func TestCreateIssueFromVoiceCall(t *testing.T) {
	system, pid := spawnIssueActor(t)
	residentID := uuid.New()

	result := request(t, system, pid, &CreateIssueMsg{
		ResidentID:  &residentID,
		IssueType:   "plumbing",
		Description: "Kitchen sink leaking under the cabinet",
		Location:    "Unit 4B",
		Source:      models.IssueSourceVoice,
		CallMeta: &models.CallMetadata{
			CallID:   "call-123",
			Duration: 95,
			Summary:  "Resident reports a leak",
		},
	})
	issue, ok := result.(*models.Issue)
	require.True(t, ok, "expected issue, got %v", result)

	assert.Equal(t, "maintenance", issue.Category)
	assert.Equal(t, models.PriorityHigh, issue.Priority)
	assert.Equal(t, models.IssuePending, issue.Status)
	assert.Equal(t, models.IssueSourceVoice, issue.Source)
	require.NotNil(t, issue.CallMeta)
	assert.Equal(t, "call-123", issue.CallMeta.CallID)
}

func TestCreateIssueValidation(t *testing.T) {
	system, pid := spawnIssueActor(t)

	result := request(t, system, pid, &CreateIssueMsg{
		IssueType:   "plumbing",
		Description: "missing location",
	})
	appErr, ok := result.(*utils.AppError)
	require.True(t, ok)
	assert.Equal(t, utils.ErrInvalidInput, appErr.Code)
}

func TestListIssuesFiltersByResident(t *testing.T) {
	system, pid := spawnIssueActor(t)
	residentA := uuid.New()
	residentB := uuid.New()

	request(t, system, pid, &CreateIssueMsg{
		ResidentID: &residentA, IssueType: "noise", Description: "loud music", Location: "5A",
	})
	request(t, system, pid, &CreateIssueMsg{
		ResidentID: &residentB, IssueType: "pest", Description: "ants in kitchen", Location: "2C",
	})

	all := request(t, system, pid, &ListIssuesMsg{}).([]*models.Issue)
	assert.Len(t, all, 2)

	mine := request(t, system, pid, &ListIssuesMsg{ResidentID: &residentA}).([]*models.Issue)
	require.Len(t, mine, 1)
	assert.Equal(t, residentA, *mine[0].ResidentID)
}

func TestUpdateIssueStatus(t *testing.T) {
	system, pid := spawnIssueActor(t)
	residentID := uuid.New()

	issue := request(t, system, pid, &CreateIssueMsg{
		ResidentID: &residentID, IssueType: "electrical", Description: "outlet sparking", Location: "3F",
	}).(*models.Issue)

	result := request(t, system, pid, &UpdateIssueStatusMsg{
		IssueID: issue.ID,
		Status:  models.IssueInProgress,
	})
	change, ok := result.(*IssueStatusChange)
	require.True(t, ok)
	assert.Equal(t, models.IssuePending, change.OldStatus)
	assert.Equal(t, models.IssueInProgress, change.NewStatus)
	assert.Equal(t, models.IssueInProgress, change.Issue.Status)

	bad := request(t, system, pid, &UpdateIssueStatusMsg{
		IssueID: issue.ID,
		Status:  "escalated",
	})
	_, ok = bad.(*utils.AppError)
	assert.True(t, ok)

	missing := request(t, system, pid, &UpdateIssueStatusMsg{
		IssueID: uuid.New(),
		Status:  models.IssueResolved,
	})
	appErr, ok := missing.(*utils.AppError)
	require.True(t, ok)
	assert.Equal(t, utils.ErrIssueNotFound, appErr.Code)
}
