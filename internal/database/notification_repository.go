package database

import (
	"context"
	"fmt"
	"time"

	"commons-hub/internal/models"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
)

// NotificationDocument represents the MongoDB document structure for
// notifications.
type NotificationDocument struct {
	ID             string     `bson:"_id"`
	RecipientID    string     `bson:"recipientId"`
	Title          string     `bson:"title"`
	Message        string     `bson:"message"`
	Type           string     `bson:"type"`
	Priority       string     `bson:"priority"`
	Read           bool       `bson:"read"`
	RelatedIssueID string     `bson:"relatedIssueId,omitempty"`
	ActionURL      string     `bson:"actionUrl,omitempty"`
	CreatedAt      time.Time  `bson:"createdAt"`
	ExpiresAt      *time.Time `bson:"expiresAt,omitempty"`
}

func notificationToDocument(n *models.Notification) NotificationDocument {
	doc := NotificationDocument{
		ID:          n.ID.String(),
		RecipientID: n.RecipientID.String(),
		Title:       n.Title,
		Message:     n.Message,
		Type:        string(n.Type),
		Priority:    string(n.Priority),
		Read:        n.Read,
		ActionURL:   n.ActionURL,
		CreatedAt:   n.CreatedAt,
		ExpiresAt:   n.ExpiresAt,
	}
	if n.RelatedIssueID != nil {
		doc.RelatedIssueID = n.RelatedIssueID.String()
	}
	return doc
}

// SaveNotification stores a single notification record.
func (m *MongoDB) SaveNotification(ctx context.Context, n *models.Notification) error {
	_, err := m.Notifications.InsertOne(ctx, notificationToDocument(n))
	if err != nil {
		return fmt.Errorf("failed to save notification: %v", err)
	}
	return nil
}

// SetNotificationRead flips the read flag on one notification.
func (m *MongoDB) SetNotificationRead(ctx context.Context, id uuid.UUID) error {
	_, err := m.Notifications.UpdateOne(ctx,
		bson.M{"_id": id.String()},
		bson.M{"$set": bson.M{"read": true}},
	)
	if err != nil {
		return fmt.Errorf("failed to mark notification read: %v", err)
	}
	return nil
}

// MarkAllNotificationsRead flips the read flag on every notification
// addressed to the recipient.
func (m *MongoDB) MarkAllNotificationsRead(ctx context.Context, recipientID uuid.UUID) error {
	_, err := m.Notifications.UpdateMany(ctx,
		bson.M{"recipientId": recipientID.String(), "read": false},
		bson.M{"$set": bson.M{"read": true}},
	)
	if err != nil {
		return fmt.Errorf("failed to mark notifications read: %v", err)
	}
	return nil
}

// DeleteNotification removes one notification record.
func (m *MongoDB) DeleteNotification(ctx context.Context, id uuid.UUID) error {
	_, err := m.Notifications.DeleteOne(ctx, bson.M{"_id": id.String()})
	if err != nil {
		return fmt.Errorf("failed to delete notification: %v", err)
	}
	return nil
}

// DeleteAllNotifications removes every notification addressed to the
// recipient.
func (m *MongoDB) DeleteAllNotifications(ctx context.Context, recipientID uuid.UUID) error {
	_, err := m.Notifications.DeleteMany(ctx, bson.M{"recipientId": recipientID.String()})
	if err != nil {
		return fmt.Errorf("failed to clear notifications: %v", err)
	}
	return nil
}

// DeleteExpiredNotifications removes records whose expiry has passed.
func (m *MongoDB) DeleteExpiredNotifications(ctx context.Context, now time.Time) (int64, error) {
	result, err := m.Notifications.DeleteMany(ctx, bson.M{"expiresAt": bson.M{"$lt": now}})
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired notifications: %v", err)
	}
	return result.DeletedCount, nil
}
