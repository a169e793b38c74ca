package sms

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"smsnotify/internal/domain/channel"
)

var _ channel.Driver = (*NexmoDriver)(nil)

// NexmoDriver sends SMS using the Nexmo (Vonage) SMS API.
// Credentials: api_key, api_secret, from.
type NexmoDriver struct {
	baseURL    string
	httpClient *http.Client
}

// NewNexmoDriver creates a new Nexmo driver.
func NewNexmoDriver(client *http.Client) *NexmoDriver {
	return &NexmoDriver{
		baseURL:    "https://rest.nexmo.com",
		httpClient: client,
	}
}

// Name returns the Nexmo channel identifier.
func (d *NexmoDriver) Name() string {
	return "nexmo"
}

// nexmoResponse mirrors the SMS API reply. Nexmo answers 200 even for
// rejected messages; the per-message status carries the outcome.
type nexmoResponse struct {
	Messages []struct {
		Status    string `json:"status"`
		MessageID string `json:"message-id"`
		ErrorText string `json:"error-text"`
	} `json:"messages"`
}

// Send delivers an SMS via Nexmo and returns the message ID.
func (d *NexmoDriver) Send(ctx context.Context, creds channel.Credentials, msg *channel.Message) (string, error) {
	if err := requireCredentials("nexmo", creds, "api_key", "api_secret", "from"); err != nil {
		return "", err
	}

	form := url.Values{}
	form.Set("api_key", creds.Get("api_key"))
	form.Set("api_secret", creds.Get("api_secret"))
	form.Set("from", creds.Get("from"))
	form.Set("to", strings.TrimPrefix(msg.To, "+"))
	form.Set("text", msg.Body)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.baseURL+"/sms/json", strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	body, status, err := do(ctx, d.httpClient, req)
	if err != nil {
		return "", err
	}
	if status >= 400 {
		return "", fmt.Errorf("nexmo: status %d", status)
	}

	var resp nexmoResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("parsing nexmo response: %w", err)
	}
	if len(resp.Messages) == 0 {
		return "", fmt.Errorf("nexmo: empty response")
	}

	first := resp.Messages[0]
	if first.Status != "0" {
		return "", fmt.Errorf("nexmo: status %s: %s", first.Status, first.ErrorText)
	}
	return first.MessageID, nil
}
