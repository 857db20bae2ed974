package voice

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"commons-hub/internal/config"
	"commons-hub/internal/utils"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitiateCall(t *testing.T) {
	var received CallRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/calls", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		json.NewEncoder(w).Encode(CallResponse{CallID: "call-42", Status: "queued"})
	}))
	defer server.Close()

	client := NewClient(&config.VoiceConfig{
		BaseURL:     server.URL,
		CallbackURL: "http://hub.local/webhook/voice",
	})

	residentID := uuid.New()
	resp, err := client.InitiateCall(context.Background(), "+15551234567", &residentID, nil)
	require.NoError(t, err)
	assert.Equal(t, "call-42", resp.CallID)

	assert.Equal(t, "+15551234567", received.PhoneNumber)
	assert.Equal(t, "http://hub.local/webhook/voice", received.CallbackURL)
	assert.Equal(t, residentID.String(), received.ResidentID)
	assert.Empty(t, received.IssueID)
}

func TestInitiateCallUpstreamFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "internal error", http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(&config.VoiceConfig{BaseURL: server.URL})

	_, err := client.InitiateCall(context.Background(), "+15551234567", nil, nil)
	require.Error(t, err)
	appErr, ok := err.(*utils.AppError)
	require.True(t, ok)
	assert.Equal(t, utils.ErrUpstream, appErr.Code)
}

func TestInitiateCallValidation(t *testing.T) {
	client := NewClient(&config.VoiceConfig{BaseURL: "http://example.com"})

	_, err := client.InitiateCall(context.Background(), "", nil, nil)
	require.Error(t, err)
	appErr, ok := err.(*utils.AppError)
	require.True(t, ok)
	assert.Equal(t, utils.ErrInvalidInput, appErr.Code)

	disabled := NewClient(&config.VoiceConfig{})
	assert.False(t, disabled.Enabled())
	_, err = disabled.InitiateCall(context.Background(), "+15551234567", nil, nil)
	assert.Error(t, err)
}
