package database

import (
	"context"
	"fmt"
	"time"

	"commons-hub/internal/models"

	"go.mongodb.org/mongo-driver/bson"
)

// AnnouncementDocument represents the MongoDB document structure for
// announcements.
type AnnouncementDocument struct {
	ID        string     `bson:"_id"`
	Title     string     `bson:"title"`
	Content   string     `bson:"content"`
	Audience  string     `bson:"audience"`
	Priority  string     `bson:"priority"`
	Active    bool       `bson:"active"`
	ExpiresAt *time.Time `bson:"expiresAt,omitempty"`
	CreatedBy string     `bson:"createdBy"`
	CreatedAt time.Time  `bson:"createdAt"`
}

// EventDocument represents the MongoDB document structure for community
// events.
type EventDocument struct {
	ID        string    `bson:"_id"`
	Title     string    `bson:"title"`
	Details   string    `bson:"details"`
	Location  string    `bson:"location"`
	StartsAt  time.Time `bson:"startsAt"`
	Public    bool      `bson:"public"`
	Active    bool      `bson:"active"`
	CreatedBy string    `bson:"createdBy"`
	CreatedAt time.Time `bson:"createdAt"`
}

// SaveAnnouncement stores a published announcement.
func (m *MongoDB) SaveAnnouncement(ctx context.Context, ann *models.Announcement) error {
	doc := AnnouncementDocument{
		ID:        ann.ID.String(),
		Title:     ann.Title,
		Content:   ann.Content,
		Audience:  string(ann.Audience),
		Priority:  string(ann.Priority),
		Active:    ann.Active,
		ExpiresAt: ann.ExpiresAt,
		CreatedBy: ann.CreatedBy.String(),
		CreatedAt: ann.CreatedAt,
	}
	_, err := m.Announcements.InsertOne(ctx, doc)
	if err != nil {
		return fmt.Errorf("failed to save announcement: %v", err)
	}
	return nil
}

// SaveEvent stores a published community event.
func (m *MongoDB) SaveEvent(ctx context.Context, ev *models.CommunityEvent) error {
	doc := EventDocument{
		ID:        ev.ID.String(),
		Title:     ev.Title,
		Details:   ev.Details,
		Location:  ev.Location,
		StartsAt:  ev.StartsAt,
		Public:    ev.Public,
		Active:    ev.Active,
		CreatedBy: ev.CreatedBy.String(),
		CreatedAt: ev.CreatedAt,
	}
	_, err := m.Events.InsertOne(ctx, doc)
	if err != nil {
		return fmt.Errorf("failed to save event: %v", err)
	}
	return nil
}

// DeactivateExpiredAnnouncements flips the active flag on announcements
// whose expiry has passed.
func (m *MongoDB) DeactivateExpiredAnnouncements(ctx context.Context, now time.Time) (int64, error) {
	result, err := m.Announcements.UpdateMany(ctx,
		bson.M{"active": true, "expiresAt": bson.M{"$lt": now}},
		bson.M{"$set": bson.M{"active": false}},
	)
	if err != nil {
		return 0, fmt.Errorf("failed to deactivate expired announcements: %v", err)
	}
	return result.ModifiedCount, nil
}
