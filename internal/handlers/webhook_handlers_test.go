package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"commons-hub/internal/config"
	"commons-hub/internal/engine"
	"commons-hub/internal/engine/actors"
	"commons-hub/internal/utils"
	"commons-hub/internal/voice"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	system := actor.NewActorSystem()
	metrics := utils.NewMetricsCollector()
	eng := engine.NewEngine(system, nil, nil, metrics, 5*time.Second)
	voiceClient := voice.NewClient(&config.VoiceConfig{})
	return NewServer(system, eng, metrics, nil, nil, voiceClient)
}

func postWebhook(t *testing.T, server *Server, payload VoiceWebhookPayload) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/webhook/voice", bytes.NewReader(body))
	recorder := httptest.NewRecorder()
	server.HandleVoiceWebhook()(recorder, req)
	return recorder
}

func TestVoiceWebhookRejectsIncompletePayload(t *testing.T) {
	server := newTestServer(t)

	recorder := postWebhook(t, server, VoiceWebhookPayload{
		CallID:      "call-1",
		PhoneNumber: "+15551234567",
		IssueType:   "plumbing",
		// description and location missing
	})
	assert.Equal(t, http.StatusBadRequest, recorder.Code)

	var resp VoiceWebhookResponse
	require.NoError(t, json.NewDecoder(recorder.Body).Decode(&resp))
	assert.False(t, resp.Success)
	assert.NotEmpty(t, resp.Error)
}

func TestVoiceWebhookCreatesIssueAndResident(t *testing.T) {
	server := newTestServer(t)

	recorder := postWebhook(t, server, VoiceWebhookPayload{
		CallID:      "call-1",
		PhoneNumber: "+15551234567",
		Duration:    120,
		Summary:     "Resident reports a burst pipe",
		IssueType:   "plumbing",
		Description: "Water leaking through the ceiling",
		Location:    "Unit 7C",
	})
	require.Equal(t, http.StatusOK, recorder.Code, recorder.Body.String())

	var resp VoiceWebhookResponse
	require.NoError(t, json.NewDecoder(recorder.Body).Decode(&resp))
	assert.True(t, resp.Success)
	assert.NotEmpty(t, resp.IssueID)
	assert.NotEmpty(t, resp.ResidentID)
}

func TestVoiceWebhookRetryReusesResident(t *testing.T) {
	server := newTestServer(t)

	payload := VoiceWebhookPayload{
		CallID:      "call-1",
		PhoneNumber: "+15559990000",
		IssueType:   "noise",
		Description: "Loud music after midnight",
		Location:    "Unit 2A",
	}

	first := postWebhook(t, server, payload)
	require.Equal(t, http.StatusOK, first.Code)
	var firstResp VoiceWebhookResponse
	require.NoError(t, json.NewDecoder(first.Body).Decode(&firstResp))

	second := postWebhook(t, server, payload)
	require.Equal(t, http.StatusOK, second.Code)
	var secondResp VoiceWebhookResponse
	require.NoError(t, json.NewDecoder(second.Body).Decode(&secondResp))

	// Same phone number resolves to the same resident across deliveries.
	assert.Equal(t, firstResp.ResidentID, secondResp.ResidentID)

	// Each delivery still records its own issue.
	assert.NotEqual(t, firstResp.IssueID, secondResp.IssueID)

	future := server.Context.RequestFuture(server.Engine.GetDirectoryActor(), &actors.GetCountsMsg{}, 5*time.Second)
	count, err := future.Result()
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestVoiceWebhookRejectsNonPost(t *testing.T) {
	server := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/webhook/voice", nil)
	recorder := httptest.NewRecorder()
	server.HandleVoiceWebhook()(recorder, req)
	assert.Equal(t, http.StatusMethodNotAllowed, recorder.Code)
}
