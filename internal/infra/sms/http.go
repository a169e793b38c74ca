package sms

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"smsnotify/internal/domain/channel"
)

// maxResponseBytes caps how much of a provider response is read.
const maxResponseBytes = 1 << 20

// DefaultTimeout bounds a single provider call.
const DefaultTimeout = 10 * time.Second

// Drivers returns every built-in driver sharing one HTTP client.
func Drivers(timeout time.Duration) []channel.Driver {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	client := &http.Client{Timeout: timeout}
	return []channel.Driver{
		NewTwilioDriver(client),
		NewNexmoDriver(client),
		NewClickatellDriver(client),
		NewPlivoDriver(client),
		NewKavenegarDriver(),
	}
}

// requireCredentials fails when any of keys is missing from creds.
func requireCredentials(provider string, creds channel.Credentials, keys ...string) error {
	var missing []string
	for _, k := range keys {
		if creds.Get(k) == "" {
			missing = append(missing, k)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%s: missing credentials: %s", provider, strings.Join(missing, ", "))
	}
	return nil
}

// do executes req and returns the (capped) response body and status code.
func do(ctx context.Context, client *http.Client, req *http.Request) ([]byte, int, error) {
	resp, err := client.Do(req.WithContext(ctx))
	if err != nil {
		return nil, 0, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("reading response: %w", err)
	}
	return body, resp.StatusCode, nil
}
