package actors

import (
	"testing"
	"time"

	"commons-hub/internal/models"
	"commons-hub/internal/utils"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func spawnBulletinActor(t *testing.T) (*actor.ActorSystem, *actor.PID) {
	t.Helper()
	system := actor.NewActorSystem()
	props := actor.PropsFromProducer(func() actor.Actor {
		return NewBulletinActor(nil, utils.NewMetricsCollector())
	})
	return system, system.Root.Spawn(props)
}

func TestPublishAnnouncement(t *testing.T) {
	system, pid := spawnBulletinActor(t)

	result := request(t, system, pid, &PublishAnnouncementMsg{
		Title:     "Elevator maintenance",
		Content:   "The east elevator is out of service Thursday.",
		Active:    true,
		CreatedBy: uuid.New(),
	})
	announcement, ok := result.(*models.Announcement)
	require.True(t, ok, "expected announcement, got %v", result)
	assert.Equal(t, models.AudienceAll, announcement.Audience)
	assert.Equal(t, models.PriorityMedium, announcement.Priority)

	bad := request(t, system, pid, &PublishAnnouncementMsg{Title: "no content"})
	appErr, ok := bad.(*utils.AppError)
	require.True(t, ok)
	assert.Equal(t, utils.ErrInvalidInput, appErr.Code)

	bad = request(t, system, pid, &PublishAnnouncementMsg{
		Title: "x", Content: "y", Audience: "board-members",
	})
	_, ok = bad.(*utils.AppError)
	assert.True(t, ok)
}

func TestListAnnouncementsSkipsInactive(t *testing.T) {
	system, pid := spawnBulletinActor(t)

	request(t, system, pid, &PublishAnnouncementMsg{
		Title: "Visible", Content: "c", Active: true, CreatedBy: uuid.New(),
	})
	request(t, system, pid, &PublishAnnouncementMsg{
		Title: "Draft", Content: "c", Active: false, CreatedBy: uuid.New(),
	})

	list := request(t, system, pid, &ListAnnouncementsMsg{}).([]*models.Announcement)
	require.Len(t, list, 1)
	assert.Equal(t, "Visible", list[0].Title)
}

func TestSweepDeactivatesExpiredAnnouncements(t *testing.T) {
	system, pid := spawnBulletinActor(t)

	past := time.Now().Add(-time.Hour)
	future := time.Now().Add(time.Hour)
	request(t, system, pid, &PublishAnnouncementMsg{
		Title: "Old", Content: "c", Active: true, ExpiresAt: &past, CreatedBy: uuid.New(),
	})
	request(t, system, pid, &PublishAnnouncementMsg{
		Title: "Current", Content: "c", Active: true, ExpiresAt: &future, CreatedBy: uuid.New(),
	})

	expired := request(t, system, pid, &SweepExpiredAnnouncementsMsg{Now: time.Now()})
	assert.Equal(t, 1, expired)

	list := request(t, system, pid, &ListAnnouncementsMsg{}).([]*models.Announcement)
	require.Len(t, list, 1)
	assert.Equal(t, "Current", list[0].Title)
}

func TestPublishAndListEvents(t *testing.T) {
	system, pid := spawnBulletinActor(t)

	later := time.Now().Add(48 * time.Hour)
	sooner := time.Now().Add(24 * time.Hour)

	request(t, system, pid, &PublishEventMsg{
		Title: "Rooftop BBQ", StartsAt: later, Public: true, Active: true, CreatedBy: uuid.New(),
	})
	request(t, system, pid, &PublishEventMsg{
		Title: "Board meeting", StartsAt: sooner, Public: false, Active: true, CreatedBy: uuid.New(),
	})

	events := request(t, system, pid, &ListEventsMsg{}).([]*models.CommunityEvent)
	require.Len(t, events, 2)
	assert.Equal(t, "Board meeting", events[0].Title, "soonest event first")

	bad := request(t, system, pid, &PublishEventMsg{Title: "no start time"})
	_, ok := bad.(*utils.AppError)
	assert.True(t, ok)
}
