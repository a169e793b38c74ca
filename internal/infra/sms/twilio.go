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

var _ channel.Driver = (*TwilioDriver)(nil)

// TwilioDriver sends SMS using the Twilio Messages API.
// Credentials: account_sid, auth_token, from.
type TwilioDriver struct {
	baseURL    string
	httpClient *http.Client
}

// NewTwilioDriver creates a new Twilio driver.
func NewTwilioDriver(client *http.Client) *TwilioDriver {
	return &TwilioDriver{
		baseURL:    "https://api.twilio.com",
		httpClient: client,
	}
}

// Name returns the Twilio channel identifier.
func (d *TwilioDriver) Name() string {
	return "twilio"
}

// Send delivers an SMS via Twilio and returns the message SID.
func (d *TwilioDriver) Send(ctx context.Context, creds channel.Credentials, msg *channel.Message) (string, error) {
	if err := requireCredentials("twilio", creds, "account_sid", "auth_token", "from"); err != nil {
		return "", err
	}

	form := url.Values{}
	form.Set("To", msg.To)
	form.Set("From", creds.Get("from"))
	form.Set("Body", msg.Body)

	endpoint := fmt.Sprintf("%s/2010-04-01/Accounts/%s/Messages.json", d.baseURL, url.PathEscape(creds.Get("account_sid")))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(creds.Get("account_sid"), creds.Get("auth_token"))

	body, status, err := do(ctx, d.httpClient, req)
	if err != nil {
		return "", err
	}

	if status >= 400 {
		var errResp struct {
			Code    int    `json:"code"`
			Message string `json:"message"`
		}
		_ = json.Unmarshal(body, &errResp)
		if errResp.Message == "" {
			return "", fmt.Errorf("twilio: status %d", status)
		}
		return "", fmt.Errorf("twilio: %d %s", errResp.Code, errResp.Message)
	}

	var ok struct {
		SID string `json:"sid"`
	}
	if err := json.Unmarshal(body, &ok); err != nil {
		return "", fmt.Errorf("parsing twilio response: %w", err)
	}
	return ok.SID, nil
}
