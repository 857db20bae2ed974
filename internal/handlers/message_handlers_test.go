package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"commons-hub/internal/config"
	"commons-hub/internal/engine"
	"commons-hub/internal/engine/actors"
	"commons-hub/internal/middleware"
	"commons-hub/internal/models"
	"commons-hub/internal/utils"
	"commons-hub/internal/voice"
	"commons-hub/internal/websocket"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServerWithHub(t *testing.T) *Server {
	t.Helper()
	hub := websocket.NewHub()
	go hub.Run()
	system := actor.NewActorSystem()
	metrics := utils.NewMetricsCollector()
	eng := engine.NewEngine(system, nil, hub, metrics, 5*time.Second)
	return NewServer(system, eng, metrics, nil, hub, voice.NewClient(&config.VoiceConfig{}))
}

func registerUser(t *testing.T, server *Server, email string) *models.User {
	t.Helper()
	future := server.Context.RequestFuture(server.Engine.GetDirectoryActor(), &actors.RegisterUserMsg{
		Name:     "User " + email,
		Email:    email,
		Password: "password123",
	}, 5*time.Second)
	result, err := future.Result()
	require.NoError(t, err)
	user, ok := result.(*models.User)
	require.True(t, ok, "registration failed: %v", result)
	return user
}

func authRequest(t *testing.T, method, target string, body interface{}, userID uuid.UUID, role models.Role) *http.Request {
	t.Helper()
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(encoded)
	}
	req := httptest.NewRequest(method, target, reader)
	return req.WithContext(middleware.ContextWithCaller(req.Context(), userID, role))
}

func TestSendMessageDeliversAndLists(t *testing.T) {
	server := newTestServer(t)
	alice := registerUser(t, server, "alice@example.com")
	bob := registerUser(t, server, "bob@example.com")

	recorder := httptest.NewRecorder()
	req := authRequest(t, http.MethodPost, "/messages", SendMessageRequest{
		ReceiverID: bob.ID.String(),
		Content:    "hello bob",
	}, alice.ID, alice.Role)
	server.HandleMessages()(recorder, req)
	require.Equal(t, http.StatusCreated, recorder.Code, recorder.Body.String())

	var message models.Message
	require.NoError(t, json.NewDecoder(recorder.Body).Decode(&message))
	assert.Equal(t, alice.ID, message.SenderID)
	assert.Equal(t, bob.ID, message.ReceiverID)
	assert.Equal(t, "hello bob", message.Content)

	recorder = httptest.NewRecorder()
	req = authRequest(t, http.MethodGet, "/messages", nil, bob.ID, bob.Role)
	server.HandleMessages()(recorder, req)
	require.Equal(t, http.StatusOK, recorder.Code, recorder.Body.String())

	var conversations []models.Conversation
	require.NoError(t, json.NewDecoder(recorder.Body).Decode(&conversations))
	require.Len(t, conversations, 1)
	assert.Equal(t, 1, conversations[0].UnreadCount[bob.ID])
}

func TestSendMessageToUnknownReceiverFails(t *testing.T) {
	server := newTestServer(t)
	alice := registerUser(t, server, "alice@example.com")

	recorder := httptest.NewRecorder()
	req := authRequest(t, http.MethodPost, "/messages", SendMessageRequest{
		ReceiverID: uuid.New().String(),
		Content:    "anyone there?",
	}, alice.ID, alice.Role)
	server.HandleMessages()(recorder, req)
	assert.Equal(t, http.StatusNotFound, recorder.Code)
}

func TestSendMessagePushesToReceiverSocket(t *testing.T) {
	server := newTestServerWithHub(t)
	alice := registerUser(t, server, "alice@example.com")
	bob := registerUser(t, server, "bob@example.com")

	client := &websocket.Client{
		Hub:    server.Hub,
		UserID: bob.ID,
		Send:   make(chan []byte, 4),
	}
	server.Hub.Register <- client

	recorder := httptest.NewRecorder()
	req := authRequest(t, http.MethodPost, "/messages", SendMessageRequest{
		ReceiverID: bob.ID.String(),
		Content:    "knock knock",
	}, alice.ID, alice.Role)
	server.HandleMessages()(recorder, req)
	require.Equal(t, http.StatusCreated, recorder.Code, recorder.Body.String())

	select {
	case payload := <-client.Send:
		var pushed struct {
			Kind    string         `json:"kind"`
			Message models.Message `json:"message"`
		}
		require.NoError(t, json.Unmarshal(payload, &pushed))
		assert.Equal(t, "message", pushed.Kind)
		assert.Equal(t, bob.ID, pushed.Message.ReceiverID)
		assert.Equal(t, "knock knock", pushed.Message.Content)
	case <-time.After(2 * time.Second):
		t.Fatal("no payload pushed to the receiver's connection")
	}
}

func TestOpenConversationMarksRead(t *testing.T) {
	server := newTestServer(t)
	alice := registerUser(t, server, "alice@example.com")
	bob := registerUser(t, server, "bob@example.com")

	recorder := httptest.NewRecorder()
	req := authRequest(t, http.MethodPost, "/messages", SendMessageRequest{
		ReceiverID: bob.ID.String(),
		Content:    "unread until opened",
	}, alice.ID, alice.Role)
	server.HandleMessages()(recorder, req)
	require.Equal(t, http.StatusCreated, recorder.Code)

	var message models.Message
	require.NoError(t, json.NewDecoder(recorder.Body).Decode(&message))

	recorder = httptest.NewRecorder()
	req = authRequest(t, http.MethodGet,
		"/conversations/open?conversationId="+message.ConversationID.String(),
		nil, bob.ID, bob.Role)
	server.HandleOpenConversation()(recorder, req)
	require.Equal(t, http.StatusOK, recorder.Code, recorder.Body.String())

	var view struct {
		Conversation models.Conversation `json:"conversation"`
		Page         struct {
			Messages []models.Message `json:"messages"`
		} `json:"page"`
		MarkedRead int `json:"markedRead"`
	}
	require.NoError(t, json.NewDecoder(recorder.Body).Decode(&view))
	assert.Equal(t, 1, view.MarkedRead)
	require.Len(t, view.Page.Messages, 1)
	assert.Equal(t, 0, view.Conversation.UnreadCount[bob.ID])
}
