package sms

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"smsnotify/internal/domain/channel"
)

var _ channel.Driver = (*PlivoDriver)(nil)

// PlivoDriver sends SMS using the Plivo Message API.
// Credentials: auth_id, auth_token, from.
type PlivoDriver struct {
	baseURL    string
	httpClient *http.Client
}

// NewPlivoDriver creates a new Plivo driver.
func NewPlivoDriver(client *http.Client) *PlivoDriver {
	return &PlivoDriver{
		baseURL:    "https://api.plivo.com",
		httpClient: client,
	}
}

// Name returns the Plivo channel identifier.
func (d *PlivoDriver) Name() string {
	return "plivo"
}

// Send delivers an SMS via Plivo and returns the message UUID.
func (d *PlivoDriver) Send(ctx context.Context, creds channel.Credentials, msg *channel.Message) (string, error) {
	if err := requireCredentials("plivo", creds, "auth_id", "auth_token", "from"); err != nil {
		return "", err
	}

	jsonData, err := json.Marshal(map[string]string{
		"src":  creds.Get("from"),
		"dst":  msg.To,
		"text": msg.Body,
	})
	if err != nil {
		return "", fmt.Errorf("marshaling plivo payload: %w", err)
	}

	endpoint := fmt.Sprintf("%s/v1/Account/%s/Message/", d.baseURL, url.PathEscape(creds.Get("auth_id")))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(creds.Get("auth_id"), creds.Get("auth_token"))

	body, status, err := do(ctx, d.httpClient, req)
	if err != nil {
		return "", err
	}

	var resp struct {
		MessageUUID []string `json:"message_uuid"`
		Error       string   `json:"error"`
	}
	_ = json.Unmarshal(body, &resp)

	if status >= 400 {
		if resp.Error != "" {
			return "", fmt.Errorf("plivo: %s", resp.Error)
		}
		return "", fmt.Errorf("plivo: status %d", status)
	}
	if len(resp.MessageUUID) == 0 {
		return "", fmt.Errorf("plivo: no message uuid in response")
	}
	return resp.MessageUUID[0], nil
}
