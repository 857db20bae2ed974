package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"commons-hub/internal/engine/actors"
	"commons-hub/internal/middleware"
	"commons-hub/internal/models"
	"commons-hub/internal/utils"
)

// PublishAnnouncementRequest represents an admin posting an announcement.
type PublishAnnouncementRequest struct {
	Title     string     `json:"title"`
	Content   string     `json:"content"`
	Audience  string     `json:"audience,omitempty"`
	Priority  string     `json:"priority,omitempty"`
	ExpiresAt *time.Time `json:"expiresAt,omitempty"`
}

// PublishEventRequest represents an admin posting a community event.
type PublishEventRequest struct {
	Title    string    `json:"title"`
	Details  string    `json:"details"`
	Location string    `json:"location,omitempty"`
	StartsAt time.Time `json:"startsAt"`
	Public   bool      `json:"public"`
}

// HandleAnnouncements handles publishing and listing announcements. The
// publish persists first; fan-out failures are logged, reported in the
// response counts and never roll the announcement back.
func (s *Server) HandleAnnouncements() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		callerID, role, ok := middleware.CallerFromContext(r.Context())
		if !ok {
			respondAppError(w, utils.NewAppError(utils.ErrUnauthorized, "Authentication required", nil))
			return
		}

		switch r.Method {
		case http.MethodPost:
			if role != models.RoleAdmin {
				respondAppError(w, utils.NewForbiddenError("admin access required"))
				return
			}

			var req PublishAnnouncementRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				http.Error(w, "Invalid request body", http.StatusBadRequest)
				return
			}

			audience := models.Audience(req.Audience)
			if req.Audience == "" {
				audience = models.AudienceAll
			}
			priority := models.Priority(req.Priority)
			if req.Priority == "" {
				priority = models.PriorityMedium
			}

			future := s.Context.RequestFuture(
				s.Engine.GetBulletinActor(),
				&actors.PublishAnnouncementMsg{
					Title:     req.Title,
					Content:   req.Content,
					Audience:  audience,
					Priority:  priority,
					Active:    true,
					ExpiresAt: req.ExpiresAt,
					CreatedBy: callerID,
				},
				s.RequestTimeout,
			)

			result, ok := handleActorResult(w, future)
			if !ok {
				return
			}

			announcement, ok := result.(*models.Announcement)
			if !ok {
				http.Error(w, "Internal server error", http.StatusInternalServerError)
				return
			}

			fanout, err := s.Engine.FanoutAnnouncement(announcement)
			if err != nil {
				log.Printf("Announcement %s persisted but fan-out failed: %v", announcement.ID, err)
				fanout = &actors.FanoutResult{}
			}

			respondJSON(w, http.StatusCreated, map[string]interface{}{
				"announcement": announcement,
				"fanout":       fanout,
			})

		case http.MethodGet:
			future := s.Context.RequestFuture(
				s.Engine.GetBulletinActor(),
				&actors.ListAnnouncementsMsg{},
				s.RequestTimeout,
			)

			result, ok := handleActorResult(w, future)
			if !ok {
				return
			}
			respondJSON(w, http.StatusOK, result)

		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	}
}

// HandleEvents handles publishing and listing community events.
func (s *Server) HandleEvents() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		callerID, role, ok := middleware.CallerFromContext(r.Context())
		if !ok {
			respondAppError(w, utils.NewAppError(utils.ErrUnauthorized, "Authentication required", nil))
			return
		}

		switch r.Method {
		case http.MethodPost:
			if role != models.RoleAdmin {
				respondAppError(w, utils.NewForbiddenError("admin access required"))
				return
			}

			var req PublishEventRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				http.Error(w, "Invalid request body", http.StatusBadRequest)
				return
			}

			future := s.Context.RequestFuture(
				s.Engine.GetBulletinActor(),
				&actors.PublishEventMsg{
					Title:     req.Title,
					Details:   req.Details,
					Location:  req.Location,
					StartsAt:  req.StartsAt,
					Public:    req.Public,
					Active:    true,
					CreatedBy: callerID,
				},
				s.RequestTimeout,
			)

			result, ok := handleActorResult(w, future)
			if !ok {
				return
			}

			event, ok := result.(*models.CommunityEvent)
			if !ok {
				http.Error(w, "Internal server error", http.StatusInternalServerError)
				return
			}

			fanout, err := s.Engine.FanoutEvent(event)
			if err != nil {
				log.Printf("Event %s persisted but fan-out failed: %v", event.ID, err)
				fanout = &actors.FanoutResult{}
			}

			respondJSON(w, http.StatusCreated, map[string]interface{}{
				"event":  event,
				"fanout": fanout,
			})

		case http.MethodGet:
			future := s.Context.RequestFuture(
				s.Engine.GetBulletinActor(),
				&actors.ListEventsMsg{},
				s.RequestTimeout,
			)

			result, ok := handleActorResult(w, future)
			if !ok {
				return
			}
			respondJSON(w, http.StatusOK, result)

		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	}
}
