package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"commons-hub/internal/engine/actors"
	"commons-hub/internal/middleware"
	"commons-hub/internal/models"
	"commons-hub/internal/utils"

	"github.com/google/uuid"
)

// CreateIssueRequest represents a resident reporting an issue in-app.
type CreateIssueRequest struct {
	IssueType   string `json:"issueType"`
	Description string `json:"description"`
	Location    string `json:"location"`
}

// UpdateIssueStatusRequest represents an admin moving an issue through its
// lifecycle.
type UpdateIssueStatusRequest struct {
	IssueID string `json:"issueId"`
	Status  string `json:"status"`
}

// HandleIssues handles creating and listing issues. Residents only see their
// own issues; admins see everything.
func (s *Server) HandleIssues() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		callerID, role, ok := middleware.CallerFromContext(r.Context())
		if !ok {
			respondAppError(w, utils.NewAppError(utils.ErrUnauthorized, "Authentication required", nil))
			return
		}

		switch r.Method {
		case http.MethodPost:
			var req CreateIssueRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				http.Error(w, "Invalid request body", http.StatusBadRequest)
				return
			}

			residentID := callerID
			future := s.Context.RequestFuture(
				s.Engine.GetIssueActor(),
				&actors.CreateIssueMsg{
					ResidentID:  &residentID,
					IssueType:   req.IssueType,
					Description: req.Description,
					Location:    req.Location,
					Source:      models.IssueSourceApp,
				},
				s.RequestTimeout,
			)

			result, ok := handleActorResult(w, future)
			if !ok {
				return
			}
			respondJSON(w, http.StatusCreated, result)

		case http.MethodGet:
			msg := &actors.ListIssuesMsg{}
			if role != models.RoleAdmin {
				id := callerID
				msg.ResidentID = &id
			}

			future := s.Context.RequestFuture(s.Engine.GetIssueActor(), msg, s.RequestTimeout)
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

// HandleGetIssue handles fetching a single issue by id.
func (s *Server) HandleGetIssue() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		callerID, role, ok := middleware.CallerFromContext(r.Context())
		if !ok {
			respondAppError(w, utils.NewAppError(utils.ErrUnauthorized, "Authentication required", nil))
			return
		}

		issueID, err := uuid.Parse(r.URL.Query().Get("issueId"))
		if err != nil {
			http.Error(w, "Invalid issue ID", http.StatusBadRequest)
			return
		}

		future := s.Context.RequestFuture(
			s.Engine.GetIssueActor(),
			&actors.GetIssueMsg{IssueID: issueID},
			s.RequestTimeout,
		)

		result, ok := handleActorResult(w, future)
		if !ok {
			return
		}

		issue, ok := result.(*models.Issue)
		if !ok {
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		// Residents can only read their own issues.
		if role != models.RoleAdmin {
			if issue.ResidentID == nil || *issue.ResidentID != callerID {
				respondAppError(w, utils.NewForbiddenError("issue belongs to another resident"))
				return
			}
		}

		respondJSON(w, http.StatusOK, issue)
	}
}

// HandleUpdateIssueStatus handles an admin moving an issue to a new status.
// The resident notification is best effort and never blocks the update.
func (s *Server) HandleUpdateIssueStatus() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut {
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

		var req UpdateIssueStatusRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}

		issueID, err := uuid.Parse(req.IssueID)
		if err != nil {
			http.Error(w, "Invalid issue ID", http.StatusBadRequest)
			return
		}

		status := models.IssueStatus(req.Status)
		if !models.ValidIssueStatus(status) {
			respondAppError(w, utils.NewValidationError("invalid issue status"))
			return
		}

		future := s.Context.RequestFuture(
			s.Engine.GetIssueActor(),
			&actors.UpdateIssueStatusMsg{IssueID: issueID, Status: status},
			s.RequestTimeout,
		)

		result, ok := handleActorResult(w, future)
		if !ok {
			return
		}

		change, ok := result.(*actors.IssueStatusChange)
		if !ok {
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		if _, err := s.Engine.NotifyIssueStatusChange(change); err != nil {
			log.Printf("Failed to notify resident of issue %s status change: %v", issueID, err)
		}

		respondJSON(w, http.StatusOK, change.Issue)
	}
}
