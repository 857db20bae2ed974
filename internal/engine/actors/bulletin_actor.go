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

// Message types for BulletinActor
type (
	PublishAnnouncementMsg struct {
		Title     string          `json:"title"`
		Content   string          `json:"content"`
		Audience  models.Audience `json:"audience"`
		Priority  models.Priority `json:"priority"`
		Active    bool            `json:"active"`
		ExpiresAt *time.Time      `json:"expiresAt,omitempty"`
		CreatedBy uuid.UUID       `json:"createdBy"`
	}

	PublishEventMsg struct {
		Title     string    `json:"title"`
		Details   string    `json:"details"`
		Location  string    `json:"location"`
		StartsAt  time.Time `json:"startsAt"`
		Public    bool      `json:"public"`
		Active    bool      `json:"active"`
		CreatedBy uuid.UUID `json:"createdBy"`
	}

	ListAnnouncementsMsg struct{}

	ListEventsMsg struct{}

	SweepExpiredAnnouncementsMsg struct {
		Now time.Time `json:"now"`
	}
)

// BulletinActor owns announcements and community events.
type BulletinActor struct {
	announcements map[uuid.UUID]*models.Announcement
	events        map[uuid.UUID]*models.CommunityEvent
	db            *database.MongoDB
	metrics       *utils.MetricsCollector
}

func NewBulletinActor(db *database.MongoDB, metrics *utils.MetricsCollector) actor.Actor {
	return &BulletinActor{
		announcements: make(map[uuid.UUID]*models.Announcement),
		events:        make(map[uuid.UUID]*models.CommunityEvent),
		db:            db,
		metrics:       metrics,
	}
}

func (a *BulletinActor) Receive(context actor.Context) {
	switch msg := context.Message().(type) {
	case *PublishAnnouncementMsg:
		a.handlePublishAnnouncement(context, msg)
	case *PublishEventMsg:
		a.handlePublishEvent(context, msg)
	case *ListAnnouncementsMsg:
		a.handleListAnnouncements(context)
	case *ListEventsMsg:
		a.handleListEvents(context)
	case *SweepExpiredAnnouncementsMsg:
		a.handleSweep(context, msg)
	case *GetCountsMsg:
		context.Respond(len(a.announcements) + len(a.events))
	}
}

func (a *BulletinActor) handlePublishAnnouncement(context actor.Context, msg *PublishAnnouncementMsg) {
	startTime := time.Now()

	if msg.Title == "" || msg.Content == "" {
		context.Respond(utils.NewValidationError("announcement title and content are required"))
		return
	}
	audience := msg.Audience
	if audience == "" {
		audience = models.AudienceAll
	}
	if !models.ValidAudience(audience) {
		context.Respond(utils.NewValidationError("unsupported audience: " + string(audience)))
		return
	}
	priority := msg.Priority
	if priority == "" {
		priority = models.PriorityMedium
	}
	if !models.ValidPriority(priority) {
		context.Respond(utils.NewValidationError("unsupported priority: " + string(priority)))
		return
	}

	announcement := &models.Announcement{
		ID:        uuid.New(),
		Title:     msg.Title,
		Content:   msg.Content,
		Audience:  audience,
		Priority:  priority,
		Active:    msg.Active,
		ExpiresAt: msg.ExpiresAt,
		CreatedBy: msg.CreatedBy,
		CreatedAt: time.Now(),
	}

	if a.db != nil {
		ctx, cancel := stdctx.WithTimeout(stdctx.Background(), 5*time.Second)
		err := a.db.SaveAnnouncement(ctx, announcement)
		cancel()
		if err != nil {
			context.Respond(utils.NewAppError(utils.ErrDatabase, "Failed to save announcement", err))
			return
		}
	}

	a.announcements[announcement.ID] = announcement
	a.metrics.AddOperationLatency("publish_announcement", time.Since(startTime))
	log.Printf("Announcement %s published to %s", announcement.ID, announcement.Audience)
	context.Respond(announcement)
}

func (a *BulletinActor) handlePublishEvent(context actor.Context, msg *PublishEventMsg) {
	startTime := time.Now()

	if msg.Title == "" || msg.StartsAt.IsZero() {
		context.Respond(utils.NewValidationError("event title and start time are required"))
		return
	}

	event := &models.CommunityEvent{
		ID:        uuid.New(),
		Title:     msg.Title,
		Details:   msg.Details,
		Location:  msg.Location,
		StartsAt:  msg.StartsAt,
		Public:    msg.Public,
		Active:    msg.Active,
		CreatedBy: msg.CreatedBy,
		CreatedAt: time.Now(),
	}

	if a.db != nil {
		ctx, cancel := stdctx.WithTimeout(stdctx.Background(), 5*time.Second)
		err := a.db.SaveEvent(ctx, event)
		cancel()
		if err != nil {
			context.Respond(utils.NewAppError(utils.ErrDatabase, "Failed to save event", err))
			return
		}
	}

	a.events[event.ID] = event
	a.metrics.AddOperationLatency("publish_event", time.Since(startTime))
	log.Printf("Community event %s published", event.ID)
	context.Respond(event)
}

func (a *BulletinActor) handleListAnnouncements(context actor.Context) {
	var announcements []*models.Announcement
	for _, announcement := range a.announcements {
		if announcement.Active {
			announcements = append(announcements, announcement)
		}
	}
	sort.Slice(announcements, func(i, j int) bool {
		return announcements[i].CreatedAt.After(announcements[j].CreatedAt)
	})
	context.Respond(announcements)
}

func (a *BulletinActor) handleListEvents(context actor.Context) {
	var events []*models.CommunityEvent
	for _, event := range a.events {
		if event.Active {
			events = append(events, event)
		}
	}
	sort.Slice(events, func(i, j int) bool {
		return events[i].StartsAt.Before(events[j].StartsAt)
	})
	context.Respond(events)
}

func (a *BulletinActor) handleSweep(context actor.Context, msg *SweepExpiredAnnouncementsMsg) {
	now := msg.Now
	if now.IsZero() {
		now = time.Now()
	}

	expired := 0
	for _, announcement := range a.announcements {
		if announcement.Active && announcement.ExpiresAt != nil && announcement.ExpiresAt.Before(now) {
			announcement.Active = false
			expired++
		}
	}

	if expired > 0 {
		log.Printf("Deactivated %d expired announcements", expired)
		if a.db != nil {
			ctx, cancel := stdctx.WithTimeout(stdctx.Background(), 5*time.Second)
			defer cancel()
			if _, err := a.db.DeactivateExpiredAnnouncements(ctx, now); err != nil {
				log.Printf("Failed to persist announcement expiry: %v", err)
			}
		}
	}
	context.Respond(expired)
}
