package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"commons-hub/internal/database"
	"commons-hub/internal/engine"
	"commons-hub/internal/utils"
	"commons-hub/internal/voice"
	"commons-hub/internal/websocket"

	"github.com/asynkron/protoactor-go/actor"
)

// Server holds all server dependencies, including the actor system and engine
type Server struct {
	System         *actor.ActorSystem
	Context        *actor.RootContext
	Engine         *engine.Engine
	Metrics        *utils.MetricsCollector
	DB             *database.MongoDB
	Hub            *websocket.Hub
	Voice          *voice.Client
	RequestTimeout time.Duration
}

// NewServer creates a new Server instance with the given components
func NewServer(
	system *actor.ActorSystem,
	eng *engine.Engine,
	metrics *utils.MetricsCollector,
	db *database.MongoDB,
	hub *websocket.Hub,
	voiceClient *voice.Client,
) *Server {
	return &Server{
		System:         system,
		Context:        system.Root,
		Engine:         eng,
		Metrics:        metrics,
		DB:             db,
		Hub:            hub,
		Voice:          voiceClient,
		RequestTimeout: 5 * time.Second, // Default timeout for actor requests
	}
}

// respondJSON writes v as the JSON response body.
func respondJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// respondAppError maps an AppError to its HTTP status and writes it out.
func respondAppError(w http.ResponseWriter, appErr *utils.AppError) {
	respondJSON(w, utils.AppErrorToHTTPStatus(appErr.Code), map[string]string{
		"error": appErr.Message,
		"code":  appErr.Code,
	})
}

// handleActorResult funnels the common tail of a RequestFuture round-trip:
// transport errors become timeouts, AppErrors map to their status, anything
// else is the payload. Returns the payload and whether the caller should
// proceed.
func handleActorResult(w http.ResponseWriter, future *actor.Future) (interface{}, bool) {
	result, err := future.Result()
	if err != nil {
		if appErr, ok := err.(*utils.AppError); ok {
			respondAppError(w, appErr)
			return nil, false
		}
		http.Error(w, "Request timed out", http.StatusGatewayTimeout)
		return nil, false
	}
	if appErr, ok := result.(*utils.AppError); ok {
		respondAppError(w, appErr)
		return nil, false
	}
	return result, true
}
