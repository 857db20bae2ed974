package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"commons-hub/internal/engine/actors"
	"commons-hub/internal/middleware"
	"commons-hub/internal/models"
	"commons-hub/internal/utils"

	"github.com/google/uuid"
)

// BroadcastRequest represents an admin request to notify an audience.
type BroadcastRequest struct {
	Title     string     `json:"title"`
	Message   string     `json:"message"`
	Type      string     `json:"type,omitempty"`
	Priority  string     `json:"priority,omitempty"`
	Audience  string     `json:"audience,omitempty"`
	ActionURL string     `json:"actionUrl,omitempty"`
	ExpiresAt *time.Time `json:"expiresAt,omitempty"`
}

// HandleNotifications handles listing the caller's notifications and
// clearing them all.
func (s *Server) HandleNotifications() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		callerID, _, ok := middleware.CallerFromContext(r.Context())
		if !ok {
			respondAppError(w, utils.NewAppError(utils.ErrUnauthorized, "Authentication required", nil))
			return
		}

		switch r.Method {
		case http.MethodGet:
			page := 0
			if pageStr := r.URL.Query().Get("page"); pageStr != "" {
				page, _ = strconv.Atoi(pageStr)
			}
			pageSize := 0
			if sizeStr := r.URL.Query().Get("pageSize"); sizeStr != "" {
				pageSize, _ = strconv.Atoi(sizeStr)
			}

			future := s.Context.RequestFuture(
				s.Engine.GetNotificationActor(),
				&actors.ListNotificationsMsg{UserID: callerID, Page: page, PageSize: pageSize},
				s.RequestTimeout,
			)

			result, ok := handleActorResult(w, future)
			if !ok {
				return
			}
			respondJSON(w, http.StatusOK, result)

		case http.MethodDelete:
			future := s.Context.RequestFuture(
				s.Engine.GetNotificationActor(),
				&actors.ClearNotificationsMsg{UserID: callerID},
				s.RequestTimeout,
			)

			result, ok := handleActorResult(w, future)
			if !ok {
				return
			}
			respondJSON(w, http.StatusOK, map[string]interface{}{"cleared": result})

		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	}
}

// HandleUnreadNotificationCount handles badge count requests.
func (s *Server) HandleUnreadNotificationCount() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		callerID, _, ok := middleware.CallerFromContext(r.Context())
		if !ok {
			respondAppError(w, utils.NewAppError(utils.ErrUnauthorized, "Authentication required", nil))
			return
		}

		future := s.Context.RequestFuture(
			s.Engine.GetNotificationActor(),
			&actors.UnreadNotificationCountMsg{UserID: callerID},
			s.RequestTimeout,
		)

		result, ok := handleActorResult(w, future)
		if !ok {
			return
		}
		respondJSON(w, http.StatusOK, map[string]interface{}{"unread": result})
	}
}

// HandleMarkNotificationRead marks a single notification read, or all of
// them when no id is given.
func (s *Server) HandleMarkNotificationRead() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		callerID, _, ok := middleware.CallerFromContext(r.Context())
		if !ok {
			respondAppError(w, utils.NewAppError(utils.ErrUnauthorized, "Authentication required", nil))
			return
		}

		var req struct {
			NotificationID string `json:"notificationId,omitempty"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}

		var msg interface{}
		if req.NotificationID == "" {
			msg = &actors.MarkAllNotificationsReadMsg{UserID: callerID}
		} else {
			notificationID, err := uuid.Parse(req.NotificationID)
			if err != nil {
				http.Error(w, "Invalid notification ID", http.StatusBadRequest)
				return
			}
			msg = &actors.MarkNotificationReadMsg{NotificationID: notificationID, UserID: callerID}
		}

		future := s.Context.RequestFuture(s.Engine.GetNotificationActor(), msg, s.RequestTimeout)
		result, ok := handleActorResult(w, future)
		if !ok {
			return
		}
		respondJSON(w, http.StatusOK, result)
	}
}

// HandleDeleteNotification deletes one of the caller's notifications.
func (s *Server) HandleDeleteNotification() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		callerID, _, ok := middleware.CallerFromContext(r.Context())
		if !ok {
			respondAppError(w, utils.NewAppError(utils.ErrUnauthorized, "Authentication required", nil))
			return
		}

		notificationID, err := uuid.Parse(r.URL.Query().Get("notificationId"))
		if err != nil {
			http.Error(w, "Invalid notification ID", http.StatusBadRequest)
			return
		}

		future := s.Context.RequestFuture(
			s.Engine.GetNotificationActor(),
			&actors.DeleteNotificationMsg{NotificationID: notificationID, UserID: callerID},
			s.RequestTimeout,
		)

		result, ok := handleActorResult(w, future)
		if !ok {
			return
		}
		respondJSON(w, http.StatusOK, map[string]interface{}{"deleted": result})
	}
}

// HandleBroadcast handles an admin notifying an audience directly. The
// response carries the fan-out counts so a partial failure is visible to the
// caller.
func (s *Server) HandleBroadcast() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		_, role, ok := middleware.CallerFromContext(r.Context())
		if !ok {
			respondAppError(w, utils.NewAppError(utils.ErrUnauthorized, "Authentication required", nil))
			return
		}
		if role != models.RoleAdmin {
			respondAppError(w, utils.NewForbiddenError("admin access required"))
			return
		}

		var req BroadcastRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		if req.Title == "" || req.Message == "" {
			respondAppError(w, utils.NewValidationError("title and message are required"))
			return
		}

		priority := models.Priority(req.Priority)
		if req.Priority == "" {
			priority = models.PriorityMedium
		}
		if !models.ValidPriority(priority) {
			respondAppError(w, utils.NewValidationError("invalid priority"))
			return
		}

		notificationType := models.NotificationType(req.Type)
		if req.Type == "" {
			notificationType = models.NotificationSystem
		}
		if !models.ValidNotificationType(notificationType) {
			respondAppError(w, utils.NewValidationError("invalid notification type"))
			return
		}

		selector := actors.SelectAll()
		if req.Audience != "" {
			audience := models.Audience(req.Audience)
			if !models.ValidAudience(audience) {
				respondAppError(w, utils.NewValidationError("invalid audience"))
				return
			}
			selector = actors.SelectorForAudience(audience)
		}

		result, err := s.Engine.Broadcast(selector, actors.NotificationPayload{
			Title:     req.Title,
			Message:   req.Message,
			Type:      notificationType,
			Priority:  priority,
			ActionURL: req.ActionURL,
			ExpiresAt: req.ExpiresAt,
		})
		if err != nil {
			if appErr, ok := err.(*utils.AppError); ok {
				respondAppError(w, appErr)
				return
			}
			http.Error(w, "Failed to broadcast", http.StatusInternalServerError)
			return
		}

		respondJSON(w, http.StatusOK, result)
	}
}
