package engine

import (
	"strings"
	"testing"
	"time"

	"commons-hub/internal/engine/actors"
	"commons-hub/internal/models"
	"commons-hub/internal/utils"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEngine(t *testing.T) (*actor.ActorSystem, *Engine) {
	t.Helper()
	system := actor.NewActorSystem()
	return system, NewEngine(system, nil, nil, utils.NewMetricsCollector(), 5*time.Second)
}

func registerResident(t *testing.T, system *actor.ActorSystem, eng *Engine, email string) *models.User {
	t.Helper()
	future := system.Root.RequestFuture(eng.GetDirectoryActor(), &actors.RegisterUserMsg{
		Name:     "Resident " + email,
		Email:    email,
		Password: "password123",
	}, 5*time.Second)
	result, err := future.Result()
	require.NoError(t, err)
	user, ok := result.(*models.User)
	require.True(t, ok, "registration failed: %v", result)
	return user
}

func notificationsFor(t *testing.T, system *actor.ActorSystem, eng *Engine, userID uuid.UUID) []*models.Notification {
	t.Helper()
	future := system.Root.RequestFuture(eng.GetNotificationActor(), &actors.ListNotificationsMsg{
		UserID: userID,
	}, 5*time.Second)
	result, err := future.Result()
	require.NoError(t, err)
	return result.([]*models.Notification)
}

func TestFanoutAnnouncementReachesEveryResident(t *testing.T) {
	system, eng := newTestEngine(t)

	residents := []*models.User{
		registerResident(t, system, eng, "r1@example.com"),
		registerResident(t, system, eng, "r2@example.com"),
		registerResident(t, system, eng, "r3@example.com"),
	}

	announcement := &models.Announcement{
		ID:       uuid.New(),
		Title:    "Pool closure",
		Content:  "The pool closes for cleaning this weekend.",
		Audience: models.AudienceResidents,
		Priority: models.PriorityMedium,
		Active:   true,
	}

	fanout, err := eng.FanoutAnnouncement(announcement)
	require.NoError(t, err)
	assert.Equal(t, 3, fanout.Requested)
	assert.Equal(t, 3, fanout.Created)
	assert.Equal(t, 0, fanout.Failed)

	for _, resident := range residents {
		list := notificationsFor(t, system, eng, resident.ID)
		require.Len(t, list, 1)
		assert.Equal(t, "Pool closure", list[0].Title)
		assert.Equal(t, models.NotificationAnnouncement, list[0].Type)
	}
}

func TestFanoutInactiveAnnouncementIsSkipped(t *testing.T) {
	system, eng := newTestEngine(t)
	resident := registerResident(t, system, eng, "r1@example.com")

	fanout, err := eng.FanoutAnnouncement(&models.Announcement{
		ID: uuid.New(), Title: "Draft", Content: "c", Active: false,
	})
	require.NoError(t, err)
	assert.Equal(t, 0, fanout.Requested)
	assert.Empty(t, notificationsFor(t, system, eng, resident.ID))
}

func TestFanoutWithNoRecipients(t *testing.T) {
	_, eng := newTestEngine(t)

	// An empty community is a zero result, not an error.
	fanout, err := eng.FanoutAnnouncement(&models.Announcement{
		ID: uuid.New(), Title: "Hello?", Content: "anyone there", Active: true,
	})
	require.NoError(t, err)
	assert.Equal(t, 0, fanout.Requested)
	assert.Equal(t, 0, fanout.Created)
}

func TestNotifyIssueStatusChange(t *testing.T) {
	system, eng := newTestEngine(t)
	resident := registerResident(t, system, eng, "r1@example.com")
	residentID := resident.ID

	issue := &models.Issue{
		ID:         uuid.New(),
		ResidentID: &residentID,
		Category:   "maintenance",
	}

	notification, err := eng.NotifyIssueStatusChange(&actors.IssueStatusChange{
		Issue:     issue,
		OldStatus: models.IssuePending,
		NewStatus: models.IssueInProgress,
	})
	require.NoError(t, err)
	require.NotNil(t, notification)
	assert.Equal(t, models.NotificationIssueUpdate, notification.Type)
	assert.Equal(t, models.PriorityHigh, notification.Priority)
	require.NotNil(t, notification.RelatedIssueID)
	assert.Equal(t, issue.ID, *notification.RelatedIssueID)

	list := notificationsFor(t, system, eng, resident.ID)
	assert.Len(t, list, 1)
}

func TestNotifyIssueStatusChangeWithoutResident(t *testing.T) {
	_, eng := newTestEngine(t)

	// Call-originated issues may predate any resident linkage.
	notification, err := eng.NotifyIssueStatusChange(&actors.IssueStatusChange{
		Issue:     &models.Issue{ID: uuid.New()},
		NewStatus: models.IssueResolved,
	})
	require.NoError(t, err)
	assert.Nil(t, notification)
}

func TestFanoutEventTargetsResidents(t *testing.T) {
	system, eng := newTestEngine(t)
	resident := registerResident(t, system, eng, "r1@example.com")

	event := &models.CommunityEvent{
		ID:       uuid.New(),
		Title:    "Movie night",
		Location: "Common room",
		StartsAt: time.Now().Add(72 * time.Hour),
		Public:   true,
		Active:   true,
	}

	fanout, err := eng.FanoutEvent(event)
	require.NoError(t, err)
	assert.Equal(t, 1, fanout.Created)

	list := notificationsFor(t, system, eng, resident.ID)
	require.Len(t, list, 1)
	assert.Contains(t, list[0].Message, "Common room")

	// Private events stay off the notification feed.
	fanout, err = eng.FanoutEvent(&models.CommunityEvent{
		ID: uuid.New(), Title: "Board only", StartsAt: time.Now(), Public: false, Active: true,
	})
	require.NoError(t, err)
	assert.Equal(t, 0, fanout.Requested)
}

func TestTruncateContent(t *testing.T) {
	short := "short announcement"
	assert.Equal(t, short, TruncateContent(short))

	long := strings.Repeat("a", announcementPreviewLimit+50)
	truncated := TruncateContent(long)
	assert.Len(t, []rune(truncated), announcementPreviewLimit+3)
	assert.True(t, strings.HasSuffix(truncated, "..."))

	// Rune-safe: multibyte content is cut on rune boundaries.
	wide := strings.Repeat("ü", announcementPreviewLimit+10)
	truncated = TruncateContent(wide)
	assert.Equal(t, announcementPreviewLimit+3, len([]rune(truncated)))
}
