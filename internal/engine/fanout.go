package engine

import (
	"encoding/json"
	"fmt"
	"log"

	"commons-hub/internal/engine/actors"
	"commons-hub/internal/models"
	"commons-hub/internal/utils"

	"github.com/google/uuid"
)

// announcementPreviewLimit caps the notification body derived from an
// announcement's content.
const announcementPreviewLimit = 150

// statusNotificationPriority maps a new issue status to the priority of the
// notification it triggers.
var statusNotificationPriority = map[models.IssueStatus]models.Priority{
	models.IssuePending:    models.PriorityMedium,
	models.IssueInProgress: models.PriorityHigh,
	models.IssueResolved:   models.PriorityMedium,
	models.IssueRejected:   models.PriorityMedium,
}

// statusNotificationMessage holds the fixed per-status templates.
var statusNotificationMessage = map[models.IssueStatus]string{
	models.IssuePending:    "Your issue has been received and is pending review.",
	models.IssueInProgress: "Work on your issue has started.",
	models.IssueResolved:   "Your issue has been resolved.",
	models.IssueRejected:   "Your issue could not be actioned. Contact the office for details.",
}

// TruncateContent shortens announcement content for the notification body.
func TruncateContent(content string) string {
	runes := []rune(content)
	if len(runes) <= announcementPreviewLimit {
		return content
	}
	return string(runes[:announcementPreviewLimit]) + "..."
}

// resolveRecipients asks the directory for the active users matching the
// selector. The set is computed at call time.
func (e *Engine) resolveRecipients(selector actors.RecipientSelector) ([]uuid.UUID, error) {
	result, err := e.request(e.directoryActor, &actors.ListRecipientsMsg{Selector: selector})
	if err != nil {
		return nil, err
	}
	if appErr, ok := result.(*utils.AppError); ok {
		return nil, appErr
	}
	recipients, _ := result.([]uuid.UUID)
	return recipients, nil
}

// NotifyMany resolves the selector and files one notification per recipient.
// An empty recipient set yields a zero result, not an error. A partial
// failure comes back in the result counts, never as a hard error.
func (e *Engine) NotifyMany(selector actors.RecipientSelector, payload actors.NotificationPayload) (*actors.FanoutResult, error) {
	recipients, err := e.resolveRecipients(selector)
	if err != nil {
		return nil, err
	}
	if len(recipients) == 0 {
		return &actors.FanoutResult{}, nil
	}

	result, err := e.request(e.notificationActor, &actors.NotifyBatchMsg{
		Recipients: recipients,
		Payload:    payload,
	})
	if err != nil {
		return nil, err
	}
	fanout, ok := result.(*actors.FanoutResult)
	if !ok {
		return nil, utils.NewAppError(utils.ErrMessageRejected, "unexpected fan-out response", nil)
	}

	if fanout.Failed > 0 {
		log.Printf("Partial fan-out: %d of %d notifications created", fanout.Created, fanout.Requested)
	}
	e.pushNotifications(recipients)
	return fanout, nil
}

// NotifyOne files a single notification.
func (e *Engine) NotifyOne(recipient uuid.UUID, payload actors.NotificationPayload) (*models.Notification, error) {
	result, err := e.request(e.notificationActor, &actors.NotifyOneMsg{
		RecipientID: recipient,
		Payload:     payload,
	})
	if err != nil {
		return nil, err
	}
	if appErr, ok := result.(*utils.AppError); ok {
		return nil, appErr
	}
	notification := result.(*models.Notification)
	e.pushNotifications([]uuid.UUID{recipient})
	return notification, nil
}

// FanoutAnnouncement notifies the announcement's audience. Inactive
// announcements are not fanned out. The caller treats a failure here as
// best-effort relative to the publish itself.
func (e *Engine) FanoutAnnouncement(announcement *models.Announcement) (*actors.FanoutResult, error) {
	if announcement == nil || !announcement.Active {
		return &actors.FanoutResult{}, nil
	}

	return e.NotifyMany(actors.SelectorForAudience(announcement.Audience), actors.NotificationPayload{
		Title:     announcement.Title,
		Message:   TruncateContent(announcement.Content),
		Type:      models.NotificationAnnouncement,
		Priority:  announcement.Priority,
		ExpiresAt: announcement.ExpiresAt,
	})
}

// FanoutEvent notifies all residents of a public, active community event.
func (e *Engine) FanoutEvent(event *models.CommunityEvent) (*actors.FanoutResult, error) {
	if event == nil || !event.Public || !event.Active {
		return &actors.FanoutResult{}, nil
	}

	message := fmt.Sprintf("%s on %s", event.Title, event.StartsAt.Format("Mon, Jan 2 at 3:04 PM"))
	if event.Location != "" {
		message += " at " + event.Location
	}

	return e.NotifyMany(actors.SelectResidents(), actors.NotificationPayload{
		Title:    "Community event: " + event.Title,
		Message:  message,
		Type:     models.NotificationEvent,
		Priority: models.PriorityMedium,
	})
}

// NotifyIssueStatusChange notifies the issue's resident about a status
// transition. Issues with no resident on file are skipped entirely.
func (e *Engine) NotifyIssueStatusChange(change *actors.IssueStatusChange) (*models.Notification, error) {
	if change == nil || change.Issue.ResidentID == nil {
		return nil, nil
	}

	priority, ok := statusNotificationPriority[change.NewStatus]
	if !ok {
		priority = models.PriorityMedium
	}
	issueID := change.Issue.ID

	return e.NotifyOne(*change.Issue.ResidentID, actors.NotificationPayload{
		Title:          fmt.Sprintf("Issue update: %s", change.Issue.Category),
		Message:        statusNotificationMessage[change.NewStatus],
		Type:           models.NotificationIssueUpdate,
		Priority:       priority,
		RelatedIssueID: &issueID,
	})
}

// Broadcast sends an admin broadcast to the selected audience with a
// caller-supplied payload.
func (e *Engine) Broadcast(selector actors.RecipientSelector, payload actors.NotificationPayload) (*actors.FanoutResult, error) {
	if payload.Type == "" {
		payload.Type = models.NotificationSystem
	}
	return e.NotifyMany(selector, payload)
}

// PushMessage delivers a freshly appended direct message to the receiver's
// open connections. Purely best-effort; the message is already in the log.
func (e *Engine) PushMessage(message *models.Message) {
	if e.hub == nil || message == nil {
		return
	}
	payload, err := json.Marshal(map[string]interface{}{
		"kind":    "message",
		"message": message,
	})
	if err != nil {
		return
	}
	e.hub.SendToUser(message.ReceiverID, payload)
}

// pushNotifications nudges connected recipients over the websocket hub.
// Purely best-effort.
func (e *Engine) pushNotifications(recipients []uuid.UUID) {
	if e.hub == nil {
		return
	}
	payload, err := json.Marshal(map[string]string{"kind": "notification"})
	if err != nil {
		return
	}
	for _, recipient := range recipients {
		e.hub.SendToUser(recipient, payload)
	}
}
