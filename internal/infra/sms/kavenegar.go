package sms

import (
	"context"
	"errors"
	"fmt"

	"smsnotify/internal/domain/channel"

	"github.com/kavenegar/kavenegar-go"
)

var _ channel.Driver = (*KavenegarDriver)(nil)

// kavenegarSender is the subset of the Kavenegar message service the driver uses.
type kavenegarSender interface {
	Send(sender string, receptor []string, message string, params *kavenegar.MessageSendParam) ([]kavenegar.Message, error)
}

// KavenegarDriver sends SMS through the Kavenegar SDK.
// Credentials: api_key, sender.
type KavenegarDriver struct {
	newSender func(apiKey string) kavenegarSender
}

// NewKavenegarDriver creates a new Kavenegar driver.
func NewKavenegarDriver() *KavenegarDriver {
	return &KavenegarDriver{
		newSender: func(apiKey string) kavenegarSender {
			return kavenegar.New(apiKey).Message
		},
	}
}

// Name returns the Kavenegar channel identifier.
func (d *KavenegarDriver) Name() string {
	return "kavenegar"
}

// Send delivers an SMS via Kavenegar and returns the message ID.
// The SDK has no context support; ctx is only checked before the call.
func (d *KavenegarDriver) Send(ctx context.Context, creds channel.Credentials, msg *channel.Message) (string, error) {
	if err := requireCredentials("kavenegar", creds, "api_key", "sender"); err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	res, err := d.newSender(creds.Get("api_key")).Send(creds.Get("sender"), []string{msg.To}, msg.Body, nil)
	if err != nil {
		var apiErr *kavenegar.APIError
		var httpErr *kavenegar.HTTPError
		switch {
		case errors.As(err, &apiErr):
			return "", fmt.Errorf("kavenegar API error: %w", err)
		case errors.As(err, &httpErr):
			return "", fmt.Errorf("kavenegar HTTP error: %w", err)
		default:
			return "", fmt.Errorf("kavenegar: %w", err)
		}
	}
	if len(res) == 0 {
		return "", fmt.Errorf("kavenegar: no response entries")
	}

	return fmt.Sprintf("%d", res[0].MessageID), nil
}
