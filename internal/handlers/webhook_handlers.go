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

// VoiceWebhookPayload is what the external call service posts after a call
// completes. Field names follow its wire format.
type VoiceWebhookPayload struct {
	CallID      string            `json:"call_id"`
	AgentID     string            `json:"agent_id,omitempty"`
	PhoneNumber string            `json:"phone_number"`
	Duration    int               `json:"duration,omitempty"`
	Summary     string            `json:"summary,omitempty"`
	IssueType   string            `json:"issue_type"`
	Description string            `json:"description"`
	Location    string            `json:"location"`
	Extracted   map[string]string `json:"extracted,omitempty"`
}

// VoiceWebhookResponse acknowledges a processed webhook delivery.
type VoiceWebhookResponse struct {
	Success    bool   `json:"success"`
	IssueID    string `json:"issueId,omitempty"`
	ResidentID string `json:"residentId,omitempty"`
	Error      string `json:"error,omitempty"`
}

// InitiateCallRequest represents an admin asking the call service to ring a
// resident.
type InitiateCallRequest struct {
	PhoneNumber string `json:"phoneNumber"`
	ResidentID  string `json:"residentId,omitempty"`
	IssueID     string `json:"issueId,omitempty"`
}

// HandleVoiceWebhook ingests completed-call reports from the external voice
// service. Validation failures return 400 so the service stops retrying;
// failures after validation return 500 so it retries. Retries are safe: the
// phone lookup is idempotent and issue creation only succeeds once persisted.
func (s *Server) HandleVoiceWebhook() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		var payload VoiceWebhookPayload
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			respondJSON(w, http.StatusBadRequest, VoiceWebhookResponse{Error: "invalid payload"})
			return
		}

		if payload.PhoneNumber == "" || payload.IssueType == "" || payload.Description == "" || payload.Location == "" {
			respondJSON(w, http.StatusBadRequest, VoiceWebhookResponse{
				Error: "phone_number, issue_type, description and location are required",
			})
			return
		}

		log.Printf("Voice webhook: call %s from %s, issue type %q", payload.CallID, payload.PhoneNumber, payload.IssueType)

		resolveFuture := s.Context.RequestFuture(
			s.Engine.GetDirectoryActor(),
			&actors.ResolveByPhoneMsg{Phone: payload.PhoneNumber},
			s.RequestTimeout,
		)
		resolveResult, err := resolveFuture.Result()
		if err != nil {
			respondJSON(w, http.StatusInternalServerError, VoiceWebhookResponse{Error: "failed to resolve resident"})
			return
		}
		if appErr, ok := resolveResult.(*utils.AppError); ok {
			respondJSON(w, http.StatusInternalServerError, VoiceWebhookResponse{Error: appErr.Message})
			return
		}
		resident, ok := resolveResult.(*models.User)
		if !ok {
			respondJSON(w, http.StatusInternalServerError, VoiceWebhookResponse{Error: "failed to resolve resident"})
			return
		}

		residentID := resident.ID
		issueFuture := s.Context.RequestFuture(
			s.Engine.GetIssueActor(),
			&actors.CreateIssueMsg{
				ResidentID:  &residentID,
				IssueType:   payload.IssueType,
				Description: payload.Description,
				Location:    payload.Location,
				Source:      models.IssueSourceVoice,
				CallMeta: &models.CallMetadata{
					CallID:    payload.CallID,
					AgentID:   payload.AgentID,
					Duration:  payload.Duration,
					Summary:   payload.Summary,
					Extracted: payload.Extracted,
				},
			},
			s.RequestTimeout,
		)
		issueResult, err := issueFuture.Result()
		if err != nil {
			respondJSON(w, http.StatusInternalServerError, VoiceWebhookResponse{Error: "failed to record issue"})
			return
		}
		if appErr, ok := issueResult.(*utils.AppError); ok {
			// Input already passed validation, so this is a server-side
			// failure and the service should retry.
			respondJSON(w, http.StatusInternalServerError, VoiceWebhookResponse{Error: appErr.Message})
			return
		}
		issue, ok := issueResult.(*models.Issue)
		if !ok {
			respondJSON(w, http.StatusInternalServerError, VoiceWebhookResponse{Error: "failed to record issue"})
			return
		}

		respondJSON(w, http.StatusOK, VoiceWebhookResponse{
			Success:    true,
			IssueID:    issue.ID.String(),
			ResidentID: resident.ID.String(),
		})
	}
}

// HandleInitiateCall lets an admin ask the voice service to call a resident.
func (s *Server) HandleInitiateCall() http.HandlerFunc {
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

		var req InitiateCallRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}

		var residentID, issueID *uuid.UUID
		if req.ResidentID != "" {
			id, err := uuid.Parse(req.ResidentID)
			if err != nil {
				http.Error(w, "Invalid resident ID", http.StatusBadRequest)
				return
			}
			residentID = &id
		}
		if req.IssueID != "" {
			id, err := uuid.Parse(req.IssueID)
			if err != nil {
				http.Error(w, "Invalid issue ID", http.StatusBadRequest)
				return
			}
			issueID = &id
		}

		callResp, err := s.Voice.InitiateCall(r.Context(), req.PhoneNumber, residentID, issueID)
		if err != nil {
			if appErr, ok := err.(*utils.AppError); ok {
				respondAppError(w, appErr)
				return
			}
			http.Error(w, "Failed to initiate call", http.StatusInternalServerError)
			return
		}

		respondJSON(w, http.StatusOK, callResp)
	}
}
