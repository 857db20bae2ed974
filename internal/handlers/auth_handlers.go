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

// RegisterRequest represents a request to register a new user
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Phone    string `json:"phone,omitempty"`
	Unit     string `json:"unit,omitempty"`
}

// LoginRequest represents a request to log in a user
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse represents a response to a login request
type LoginResponse struct {
	Success bool   `json:"success"`
	Token   string `json:"token,omitempty"`
	UserID  string `json:"userId"`
	Role    string `json:"role"`
}

// userProfile is the wire shape for a directory record. The password hash
// never leaves the server.
type userProfile struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Role       string    `json:"role"`
	Status     string    `json:"status"`
	Phone      string    `json:"phone,omitempty"`
	Unit       string    `json:"unit,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
	LastActive time.Time `json:"lastActive"`
}

func profileFromUser(user *models.User) userProfile {
	return userProfile{
		ID:         user.ID.String(),
		Name:       user.Name,
		Email:      user.Email,
		Role:       string(user.Role),
		Status:     string(user.Status),
		Phone:      user.Phone,
		Unit:       user.Unit,
		CreatedAt:  user.CreatedAt,
		LastActive: user.LastActive,
	}
}

// HandleRegister handles requests to register a new resident account.
// Registration always produces a resident; admins are provisioned out of
// band.
func (s *Server) HandleRegister() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		var req RegisterRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}

		future := s.Context.RequestFuture(
			s.Engine.GetDirectoryActor(),
			&actors.RegisterUserMsg{
				Name:     req.Name,
				Email:    req.Email,
				Password: req.Password,
				Role:     models.RoleResident,
				Phone:    req.Phone,
				Unit:     req.Unit,
			},
			s.RequestTimeout,
		)

		result, ok := handleActorResult(w, future)
		if !ok {
			return
		}

		user, ok := result.(*models.User)
		if !ok {
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		respondJSON(w, http.StatusCreated, profileFromUser(user))
	}
}

// HandleLogin handles requests to log in a user
func (s *Server) HandleLogin() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		var req LoginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}

		future := s.Context.RequestFuture(
			s.Engine.GetDirectoryActor(),
			&actors.VerifyCredentialsMsg{
				Email:    req.Email,
				Password: req.Password,
			},
			s.RequestTimeout,
		)

		result, ok := handleActorResult(w, future)
		if !ok {
			return
		}

		user, ok := result.(*models.User)
		if !ok {
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		token, err := middleware.GenerateToken(user.ID, user.Role)
		if err != nil {
			log.Printf("HTTP Handler: Failed to generate token: %v", err)
			http.Error(w, "Failed to generate auth token", http.StatusInternalServerError)
			return
		}

		respondJSON(w, http.StatusOK, LoginResponse{
			Success: true,
			Token:   token,
			UserID:  user.ID.String(),
			Role:    string(user.Role),
		})
	}
}

// HandleProfile handles requests for the caller's own directory record.
func (s *Server) HandleProfile() http.HandlerFunc {
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
			s.Engine.GetDirectoryActor(),
			&actors.GetUserMsg{UserID: callerID},
			s.RequestTimeout,
		)

		result, ok := handleActorResult(w, future)
		if !ok {
			return
		}

		user, ok := result.(*models.User)
		if !ok {
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		respondJSON(w, http.StatusOK, profileFromUser(user))
	}
}
