package sms

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"smsnotify/internal/domain/channel"
)

var _ channel.Driver = (*ClickatellDriver)(nil)

// ClickatellDriver sends SMS using the Clickatell Platform messages API.
// Credentials: api_key; optional from.
type ClickatellDriver struct {
	baseURL    string
	httpClient *http.Client
}

// NewClickatellDriver creates a new Clickatell driver.
func NewClickatellDriver(client *http.Client) *ClickatellDriver {
	return &ClickatellDriver{
		baseURL:    "https://platform.clickatell.com",
		httpClient: client,
	}
}

// Name returns the Clickatell channel identifier.
func (d *ClickatellDriver) Name() string {
	return "clickatell"
}

// Send delivers an SMS via Clickatell and returns the API message ID.
func (d *ClickatellDriver) Send(ctx context.Context, creds channel.Credentials, msg *channel.Message) (string, error) {
	if err := requireCredentials("clickatell", creds, "api_key"); err != nil {
		return "", err
	}

	payload := map[string]any{
		"content": msg.Body,
		"to":      []string{msg.To},
	}
	if from := creds.Get("from"); from != "" {
		payload["from"] = from
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshaling clickatell payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.baseURL+"/messages", bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", creds.Get("api_key"))

	body, status, err := do(ctx, d.httpClient, req)
	if err != nil {
		return "", err
	}

	var resp struct {
		Messages []struct {
			APIMessageID string `json:"apiMessageId"`
			Accepted     bool   `json:"accepted"`
			Error        string `json:"error"`
		} `json:"messages"`
		Error string `json:"error"`
	}
	_ = json.Unmarshal(body, &resp)

	if status >= 400 {
		if resp.Error != "" {
			return "", fmt.Errorf("clickatell: %s", resp.Error)
		}
		return "", fmt.Errorf("clickatell: status %d", status)
	}
	if len(resp.Messages) == 0 {
		return "", fmt.Errorf("clickatell: empty response")
	}

	first := resp.Messages[0]
	if !first.Accepted {
		return "", fmt.Errorf("clickatell: message rejected: %s", first.Error)
	}
	return first.APIMessageID, nil
}
