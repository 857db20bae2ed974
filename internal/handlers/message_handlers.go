package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"commons-hub/internal/engine/actors"
	"commons-hub/internal/middleware"
	"commons-hub/internal/models"
	"commons-hub/internal/utils"

	"github.com/google/uuid"
)

// SendMessageRequest represents a request to send a direct message
type SendMessageRequest struct {
	ReceiverID string `json:"receiverId"`
	Content    string `json:"content"`
	Type       string `json:"type,omitempty"`
}

// HandleMessages handles sending direct messages and listing the caller's
// conversations.
func (s *Server) HandleMessages() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		callerID, _, ok := middleware.CallerFromContext(r.Context())
		if !ok {
			respondAppError(w, utils.NewAppError(utils.ErrUnauthorized, "Authentication required", nil))
			return
		}

		switch r.Method {
		case http.MethodPost:
			var req SendMessageRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				http.Error(w, "Invalid request body", http.StatusBadRequest)
				return
			}

			receiverID, err := uuid.Parse(req.ReceiverID)
			if err != nil {
				http.Error(w, "Invalid receiver ID", http.StatusBadRequest)
				return
			}

			msgType := models.MessageType(req.Type)
			if req.Type == "" {
				msgType = models.MessageText
			}

			// The directory, not the conversation log, knows whether the
			// receiver can currently accept messages.
			if !s.receiverCanAcceptMessages(w, receiverID) {
				return
			}

			future := s.Context.RequestFuture(
				s.Engine.GetConversationActor(),
				&actors.SendMessageMsg{
					SenderID:   callerID,
					ReceiverID: receiverID,
					Content:    req.Content,
					Type:       msgType,
				},
				s.RequestTimeout,
			)

			result, ok := handleActorResult(w, future)
			if !ok {
				return
			}
			if message, ok := result.(*models.Message); ok {
				s.Engine.PushMessage(message)
			}
			respondJSON(w, http.StatusCreated, result)

		case http.MethodGet:
			future := s.Context.RequestFuture(
				s.Engine.GetConversationActor(),
				&actors.ListConversationsMsg{UserID: callerID},
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

// receiverCanAcceptMessages checks the receiver's directory record before a
// send is attempted. Writes the error response itself on failure.
func (s *Server) receiverCanAcceptMessages(w http.ResponseWriter, receiverID uuid.UUID) bool {
	future := s.Context.RequestFuture(
		s.Engine.GetDirectoryActor(),
		&actors.GetUserMsg{UserID: receiverID},
		s.RequestTimeout,
	)

	result, ok := handleActorResult(w, future)
	if !ok {
		return false
	}

	receiver, ok := result.(*models.User)
	if !ok {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return false
	}
	if !receiver.CanReceiveMessages() {
		respondAppError(w, utils.NewAppError(utils.ErrMessageRejected, "Recipient cannot receive messages", nil))
		return false
	}
	return true
}

// HandleOpenConversation handles opening a conversation: it returns a page of
// messages and marks the counterpart's messages read in the same step.
func (s *Server) HandleOpenConversation() http.HandlerFunc {
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

		conversationID, err := uuid.Parse(r.URL.Query().Get("conversationId"))
		if err != nil {
			http.Error(w, "Invalid conversation ID", http.StatusBadRequest)
			return
		}

		afterSeq := uint64(0)
		if cursor := r.URL.Query().Get("cursor"); cursor != "" {
			afterSeq, err = strconv.ParseUint(cursor, 10, 64)
			if err != nil {
				http.Error(w, "Invalid cursor", http.StatusBadRequest)
				return
			}
		}

		pageSize := 0
		if sizeStr := r.URL.Query().Get("pageSize"); sizeStr != "" {
			pageSize, err = strconv.Atoi(sizeStr)
			if err != nil {
				http.Error(w, "Invalid page size", http.StatusBadRequest)
				return
			}
		}

		future := s.Context.RequestFuture(
			s.Engine.GetConversationActor(),
			&actors.OpenConversationMsg{
				ConversationID: conversationID,
				ReaderID:       callerID,
				AfterSeq:       afterSeq,
				PageSize:       pageSize,
			},
			s.RequestTimeout,
		)

		result, ok := handleActorResult(w, future)
		if !ok {
			return
		}
		respondJSON(w, http.StatusOK, result)
	}
}

// HandleStartConversation handles requests to look up or create the caller's
// conversation with another user.
func (s *Server) HandleStartConversation() http.HandlerFunc {
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
			UserID string `json:"userId"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}

		otherID, err := uuid.Parse(req.UserID)
		if err != nil {
			http.Error(w, "Invalid user ID", http.StatusBadRequest)
			return
		}

		future := s.Context.RequestFuture(
			s.Engine.GetConversationActor(),
			&actors.GetOrCreateConversationMsg{UserA: callerID, UserB: otherID},
			s.RequestTimeout,
		)

		result, ok := handleActorResult(w, future)
		if !ok {
			return
		}
		respondJSON(w, http.StatusOK, result)
	}
}

// HandleMarkConversationRead handles explicit mark-read requests, for clients
// that keep a conversation open while new messages arrive.
func (s *Server) HandleMarkConversationRead() http.HandlerFunc {
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
			ConversationID string `json:"conversationId"`
			CounterpartID  string `json:"counterpartId"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}

		conversationID, err := uuid.Parse(req.ConversationID)
		if err != nil {
			http.Error(w, "Invalid conversation ID", http.StatusBadRequest)
			return
		}
		counterpartID, err := uuid.Parse(req.CounterpartID)
		if err != nil {
			http.Error(w, "Invalid counterpart ID", http.StatusBadRequest)
			return
		}

		future := s.Context.RequestFuture(
			s.Engine.GetConversationActor(),
			&actors.MarkReadFromMsg{
				ConversationID: conversationID,
				ReaderID:       callerID,
				CounterpartID:  counterpartID,
			},
			s.RequestTimeout,
		)

		result, ok := handleActorResult(w, future)
		if !ok {
			return
		}
		respondJSON(w, http.StatusOK, map[string]interface{}{"markedRead": result})
	}
}
