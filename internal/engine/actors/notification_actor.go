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

// NotificationPayload is the recipient-independent part of a notification.
// Fan-out stamps one record per recipient from a single payload.
type NotificationPayload struct {
	Title          string                  `json:"title"`
	Message        string                  `json:"message"`
	Type           models.NotificationType `json:"type"`
	Priority       models.Priority         `json:"priority"`
	RelatedIssueID *uuid.UUID              `json:"relatedIssueId,omitempty"`
	ActionURL      string                  `json:"actionUrl,omitempty"`
	ExpiresAt      *time.Time              `json:"expiresAt,omitempty"`
}

// FanoutResult reports exactly how a bulk creation went. Failed > 0 means a
// partial fan-out: the caller decides whether to retry or alert, the records
// already created stand.
type FanoutResult struct {
	Requested int `json:"requested"`
	Created   int `json:"created"`
	Failed    int `json:"failed"`
}

// Message types for NotificationActor
type (
	NotifyOneMsg struct {
		RecipientID uuid.UUID           `json:"recipientId"`
		Payload     NotificationPayload `json:"payload"`
	}

	NotifyBatchMsg struct {
		Recipients []uuid.UUID         `json:"recipients"`
		Payload    NotificationPayload `json:"payload"`
	}

	ListNotificationsMsg struct {
		UserID   uuid.UUID `json:"userId"`
		Page     int       `json:"page"`
		PageSize int       `json:"pageSize"`
	}

	UnreadNotificationCountMsg struct {
		UserID uuid.UUID `json:"userId"`
	}

	MarkNotificationReadMsg struct {
		NotificationID uuid.UUID `json:"notificationId"`
		UserID         uuid.UUID `json:"userId"` // The user marking the notification as read
	}

	MarkAllNotificationsReadMsg struct {
		UserID uuid.UUID `json:"userId"`
	}

	DeleteNotificationMsg struct {
		NotificationID uuid.UUID `json:"notificationId"`
		UserID         uuid.UUID `json:"userId"`
	}

	ClearNotificationsMsg struct {
		UserID uuid.UUID `json:"userId"`
	}

	SweepExpiredMsg struct {
		Now time.Time `json:"now"`
	}
)

// NotificationActor owns all notification records, partitioned by recipient.
// Recipients never share records, so there is no cross-recipient
// coordination to worry about.
type NotificationActor struct {
	byID        map[uuid.UUID]*models.Notification
	byRecipient map[uuid.UUID][]*models.Notification
	db          *database.MongoDB
	metrics     *utils.MetricsCollector
}

func NewNotificationActor(db *database.MongoDB, metrics *utils.MetricsCollector) actor.Actor {
	return &NotificationActor{
		byID:        make(map[uuid.UUID]*models.Notification),
		byRecipient: make(map[uuid.UUID][]*models.Notification),
		db:          db,
		metrics:     metrics,
	}
}

func (a *NotificationActor) Receive(context actor.Context) {
	switch msg := context.Message().(type) {
	case *NotifyOneMsg:
		a.handleNotifyOne(context, msg)
	case *NotifyBatchMsg:
		a.handleNotifyBatch(context, msg)
	case *ListNotificationsMsg:
		a.handleList(context, msg)
	case *UnreadNotificationCountMsg:
		a.handleUnreadCount(context, msg)
	case *MarkNotificationReadMsg:
		a.handleMarkRead(context, msg)
	case *MarkAllNotificationsReadMsg:
		a.handleMarkAllRead(context, msg)
	case *DeleteNotificationMsg:
		a.handleDelete(context, msg)
	case *ClearNotificationsMsg:
		a.handleClearAll(context, msg)
	case *SweepExpiredMsg:
		a.handleSweep(context, msg)
	case *GetCountsMsg:
		context.Respond(len(a.byID))
	}
}

func (a *NotificationActor) handleNotifyOne(context actor.Context, msg *NotifyOneMsg) {
	notification, err := a.create(msg.RecipientID, msg.Payload)
	if err != nil {
		context.Respond(err)
		return
	}
	context.Respond(notification)
}

func (a *NotificationActor) handleNotifyBatch(context actor.Context, msg *NotifyBatchMsg) {
	startTime := time.Now()

	result := &FanoutResult{Requested: len(msg.Recipients)}
	seen := make(map[uuid.UUID]bool, len(msg.Recipients))
	for _, recipient := range msg.Recipients {
		if seen[recipient] {
			continue
		}
		seen[recipient] = true

		if _, err := a.create(recipient, msg.Payload); err != nil {
			log.Printf("Fan-out to %s failed: %v", recipient, err)
			result.Failed++
			continue
		}
		result.Created++
	}

	a.metrics.AddOperationLatency("notify_batch", time.Since(startTime))
	context.Respond(result)
}

// create builds and stores one notification record. A persistence failure
// undoes the in-memory record so the reported counts stay exact.
func (a *NotificationActor) create(recipient uuid.UUID, payload NotificationPayload) (*models.Notification, *utils.AppError) {
	if recipient == uuid.Nil {
		return nil, utils.NewValidationError("notification recipient is required")
	}
	if payload.Title == "" && payload.Message == "" {
		return nil, utils.NewValidationError("notification needs a title or a message")
	}
	priority := payload.Priority
	if priority == "" {
		priority = models.PriorityMedium
	}
	if !models.ValidPriority(priority) {
		return nil, utils.NewValidationError("unsupported priority: " + string(priority))
	}
	notificationType := payload.Type
	if notificationType == "" {
		notificationType = models.NotificationSystem
	}
	if !models.ValidNotificationType(notificationType) {
		return nil, utils.NewValidationError("unsupported notification type: " + string(notificationType))
	}

	notification := &models.Notification{
		ID:             uuid.New(),
		RecipientID:    recipient,
		Title:          payload.Title,
		Message:        payload.Message,
		Type:           notificationType,
		Priority:       priority,
		RelatedIssueID: payload.RelatedIssueID,
		ActionURL:      payload.ActionURL,
		CreatedAt:      time.Now(),
		ExpiresAt:      payload.ExpiresAt,
	}

	if a.db != nil {
		ctx, cancel := stdctx.WithTimeout(stdctx.Background(), 5*time.Second)
		err := a.db.SaveNotification(ctx, notification)
		cancel()
		if err != nil {
			return nil, utils.NewAppError(utils.ErrDatabase, "Failed to save notification", err)
		}
	}

	a.byID[notification.ID] = notification
	a.byRecipient[recipient] = append(a.byRecipient[recipient], notification)
	return notification, nil
}

func (a *NotificationActor) handleList(context actor.Context, msg *ListNotificationsMsg) {
	records := a.byRecipient[msg.UserID]

	// Newest first for the inbox view.
	ordered := make([]*models.Notification, len(records))
	copy(ordered, records)
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].CreatedAt.After(ordered[j].CreatedAt)
	})

	pageSize := msg.PageSize
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	page := msg.Page
	if page < 1 {
		page = 1
	}
	start := (page - 1) * pageSize
	if start > len(ordered) {
		start = len(ordered)
	}
	end := start + pageSize
	if end > len(ordered) {
		end = len(ordered)
	}

	context.Respond(ordered[start:end])
}

func (a *NotificationActor) handleUnreadCount(context actor.Context, msg *UnreadNotificationCountMsg) {
	count := 0
	for _, notification := range a.byRecipient[msg.UserID] {
		if !notification.Read {
			count++
		}
	}
	context.Respond(count)
}

// authorize returns the notification only if the acting user is its
// recipient. Touching another user's notification is a capability
// violation, not a not-found.
func (a *NotificationActor) authorize(notificationID, userID uuid.UUID) (*models.Notification, *utils.AppError) {
	notification, exists := a.byID[notificationID]
	if !exists {
		return nil, utils.NewAppError(utils.ErrNotificationNotFound, "Notification not found: "+notificationID.String(), nil)
	}
	if notification.RecipientID != userID {
		return nil, utils.NewForbiddenError("notification belongs to another user")
	}
	return notification, nil
}

func (a *NotificationActor) handleMarkRead(context actor.Context, msg *MarkNotificationReadMsg) {
	notification, err := a.authorize(msg.NotificationID, msg.UserID)
	if err != nil {
		context.Respond(err)
		return
	}

	notification.Read = true
	if a.db != nil {
		ctx, cancel := stdctx.WithTimeout(stdctx.Background(), 5*time.Second)
		defer cancel()
		if err := a.db.SetNotificationRead(ctx, notification.ID); err != nil {
			log.Printf("Failed to persist read flag for notification %s: %v", notification.ID, err)
		}
	}
	context.Respond(notification)
}

func (a *NotificationActor) handleMarkAllRead(context actor.Context, msg *MarkAllNotificationsReadMsg) {
	updated := 0
	for _, notification := range a.byRecipient[msg.UserID] {
		if !notification.Read {
			notification.Read = true
			updated++
		}
	}

	if updated > 0 && a.db != nil {
		ctx, cancel := stdctx.WithTimeout(stdctx.Background(), 5*time.Second)
		defer cancel()
		if err := a.db.MarkAllNotificationsRead(ctx, msg.UserID); err != nil {
			log.Printf("Failed to persist mark-all-read for user %s: %v", msg.UserID, err)
		}
	}
	context.Respond(updated)
}

func (a *NotificationActor) handleDelete(context actor.Context, msg *DeleteNotificationMsg) {
	notification, err := a.authorize(msg.NotificationID, msg.UserID)
	if err != nil {
		context.Respond(err)
		return
	}

	a.remove(notification)
	if a.db != nil {
		ctx, cancel := stdctx.WithTimeout(stdctx.Background(), 5*time.Second)
		defer cancel()
		if err := a.db.DeleteNotification(ctx, notification.ID); err != nil {
			log.Printf("Failed to delete notification %s: %v", notification.ID, err)
		}
	}
	context.Respond(true)
}

func (a *NotificationActor) handleClearAll(context actor.Context, msg *ClearNotificationsMsg) {
	removed := len(a.byRecipient[msg.UserID])
	for _, notification := range a.byRecipient[msg.UserID] {
		delete(a.byID, notification.ID)
	}
	delete(a.byRecipient, msg.UserID)

	if removed > 0 && a.db != nil {
		ctx, cancel := stdctx.WithTimeout(stdctx.Background(), 5*time.Second)
		defer cancel()
		if err := a.db.DeleteAllNotifications(ctx, msg.UserID); err != nil {
			log.Printf("Failed to clear notifications for user %s: %v", msg.UserID, err)
		}
	}
	context.Respond(removed)
}

func (a *NotificationActor) handleSweep(context actor.Context, msg *SweepExpiredMsg) {
	now := msg.Now
	if now.IsZero() {
		now = time.Now()
	}

	removed := 0
	for _, notification := range a.byID {
		if notification.ExpiresAt != nil && notification.ExpiresAt.Before(now) {
			a.remove(notification)
			removed++
		}
	}

	if removed > 0 {
		log.Printf("Swept %d expired notifications", removed)
		if a.db != nil {
			ctx, cancel := stdctx.WithTimeout(stdctx.Background(), 5*time.Second)
			defer cancel()
			if _, err := a.db.DeleteExpiredNotifications(ctx, now); err != nil {
				log.Printf("Failed to delete expired notifications: %v", err)
			}
		}
	}
	context.Respond(removed)
}

func (a *NotificationActor) remove(notification *models.Notification) {
	delete(a.byID, notification.ID)
	records := a.byRecipient[notification.RecipientID]
	for i, candidate := range records {
		if candidate.ID == notification.ID {
			a.byRecipient[notification.RecipientID] = append(records[:i], records[i+1:]...)
			break
		}
	}
	if len(a.byRecipient[notification.RecipientID]) == 0 {
		delete(a.byRecipient, notification.RecipientID)
	}
}
