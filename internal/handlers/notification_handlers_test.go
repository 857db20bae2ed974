package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"commons-hub/internal/engine/actors"
	"commons-hub/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBroadcastRejectsUnknownType(t *testing.T) {
	server := newTestServer(t)
	adminID := uuid.New()

	recorder := httptest.NewRecorder()
	req := authRequest(t, http.MethodPost, "/notifications/broadcast", BroadcastRequest{
		Title:   "Pool closure",
		Message: "Closed for cleaning",
		Type:    "carrier_pigeon",
	}, adminID, models.RoleAdmin)
	server.HandleBroadcast()(recorder, req)
	assert.Equal(t, http.StatusBadRequest, recorder.Code, recorder.Body.String())
}

func TestBroadcastReachesResidents(t *testing.T) {
	server := newTestServer(t)
	registerUser(t, server, "alice@example.com")
	registerUser(t, server, "bob@example.com")
	adminID := uuid.New()

	recorder := httptest.NewRecorder()
	req := authRequest(t, http.MethodPost, "/notifications/broadcast", BroadcastRequest{
		Title:   "Pool closure",
		Message: "Closed for cleaning",
	}, adminID, models.RoleAdmin)
	server.HandleBroadcast()(recorder, req)
	require.Equal(t, http.StatusOK, recorder.Code, recorder.Body.String())

	var result actors.FanoutResult
	require.NoError(t, json.NewDecoder(recorder.Body).Decode(&result))
	assert.Equal(t, 2, result.Requested)
	assert.Equal(t, 2, result.Created)
	assert.Equal(t, 0, result.Failed)

	// The untyped broadcast lands as a system notification.
	future := server.Context.RequestFuture(server.Engine.GetNotificationActor(), &actors.ListNotificationsMsg{
		UserID: firstRecipient(t, server),
	}, server.RequestTimeout)
	listed, err := future.Result()
	require.NoError(t, err)
	notifications, ok := listed.([]*models.Notification)
	require.True(t, ok)
	require.Len(t, notifications, 1)
	assert.Equal(t, models.NotificationSystem, notifications[0].Type)
}

func firstRecipient(t *testing.T, server *Server) uuid.UUID {
	t.Helper()
	future := server.Context.RequestFuture(server.Engine.GetDirectoryActor(), &actors.ListRecipientsMsg{
		Selector: actors.SelectResidents(),
	}, server.RequestTimeout)
	result, err := future.Result()
	require.NoError(t, err)
	recipients, ok := result.([]uuid.UUID)
	require.True(t, ok)
	require.NotEmpty(t, recipients)
	return recipients[0]
}
