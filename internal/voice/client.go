// Package voice talks to the external call-handling service. Outbound
// requests carry the callback URL its webhook will later hit.
package voice

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"commons-hub/internal/config"
	"commons-hub/internal/utils"

	"github.com/google/uuid"
)

// CallRequest is the payload for initiating an outbound call. ResidentID
// and IssueID are correlation ids echoed back by the webhook.
type CallRequest struct {
	PhoneNumber string `json:"phone_number"`
	CallbackURL string `json:"callback_url"`
	ResidentID  string `json:"resident_id,omitempty"`
	IssueID     string `json:"issue_id,omitempty"`
}

// CallResponse is the acknowledgement from the call service.
type CallResponse struct {
	CallID string `json:"call_id,omitempty"`
	Status string `json:"status,omitempty"`
}

type Client struct {
	baseURL     string
	callbackURL string
	httpClient  *http.Client
}

func NewClient(cfg *config.VoiceConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL:     cfg.BaseURL,
		callbackURL: cfg.CallbackURL,
		httpClient:  &http.Client{Timeout: timeout},
	}
}

// Enabled reports whether an outbound call service is configured.
func (c *Client) Enabled() bool {
	return c.baseURL != ""
}

// InitiateCall asks the external service to place a call to the phone
// number. Any response status >= 400 is a hard failure; retries are the
// caller's decision.
func (c *Client) InitiateCall(ctx context.Context, phoneNumber string, residentID, issueID *uuid.UUID) (*CallResponse, error) {
	if !c.Enabled() {
		return nil, utils.NewAppError(utils.ErrUpstream, "call service is not configured", nil)
	}
	if phoneNumber == "" {
		return nil, utils.NewValidationError("phone number is required")
	}

	request := CallRequest{
		PhoneNumber: phoneNumber,
		CallbackURL: c.callbackURL,
	}
	if residentID != nil {
		request.ResidentID = residentID.String()
	}
	if issueID != nil {
		request.IssueID = issueID.String()
	}

	body, err := json.Marshal(request)
	if err != nil {
		return nil, fmt.Errorf("failed to encode call request: %v", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/calls", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build call request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, utils.NewAppError(utils.ErrUpstream, "call service unreachable", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		io.Copy(io.Discard, resp.Body)
		return nil, utils.NewUpstreamError("call service", resp.StatusCode)
	}

	var callResp CallResponse
	if err := json.NewDecoder(resp.Body).Decode(&callResp); err != nil && err != io.EOF {
		return nil, utils.NewAppError(utils.ErrUpstream, "call service returned an unreadable response", err)
	}
	return &callResp, nil
}
