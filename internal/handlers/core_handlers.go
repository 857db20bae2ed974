package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"commons-hub/internal/engine/actors"
)

// HandleHealth handles health check requests
func (s *Server) HandleHealth() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// Only allow GET requests
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		// Get the user count from DirectoryActor
		futureUsers := s.Context.RequestFuture(s.Engine.GetDirectoryActor(), &actors.GetCountsMsg{}, s.RequestTimeout)
		userResult, err := futureUsers.Result()
		if err != nil {
			http.Error(w, "Failed to get user count", http.StatusInternalServerError)
			return
		}
		userCount := userResult.(int)

		// Get the conversation count from ConversationActor
		futureConversations := s.Context.RequestFuture(s.Engine.GetConversationActor(), &actors.GetCountsMsg{}, s.RequestTimeout)
		conversationResult, err := futureConversations.Result()
		if err != nil {
			http.Error(w, "Failed to get conversation count", http.StatusInternalServerError)
			return
		}
		conversationCount := conversationResult.(int)

		// Get the open issue count from IssueActor
		futureIssues := s.Context.RequestFuture(s.Engine.GetIssueActor(), &actors.GetCountsMsg{}, s.RequestTimeout)
		issueResult, err := futureIssues.Result()
		if err != nil {
			http.Error(w, "Failed to get issue count", http.StatusInternalServerError)
			return
		}
		issueCount := issueResult.(int)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status":             "healthy",
			"user_count":         userCount,
			"conversation_count": conversationCount,
			"issue_count":        issueCount,
			"server_time":        time.Now(),
		})
	}
}

// HandleStats exposes the in-process operation metrics.
func (s *Server) HandleStats() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		requests, errors, uptime, ops := s.Metrics.Snapshot()
		respondJSON(w, http.StatusOK, map[string]interface{}{
			"requests":      requests,
			"errors":        errors,
			"uptimeSeconds": uptime.Seconds(),
			"operations":    ops,
		})
	}
}
