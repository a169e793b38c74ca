package channel

import "context"

// Credentials is the provider-specific credential bundle of a channel.
// Keys are defined by each driver (e.g. "account_sid", "auth_token", "from").
type Credentials map[string]string

// Get returns the value stored under key, or "" when absent.
func (c Credentials) Get(key string) string {
	if c == nil {
		return ""
	}
	return c[key]
}

// clone returns an independent copy so published state never aliases caller maps.
func (c Credentials) clone() Credentials {
	out := make(Credentials, len(c))
	for k, v := range c {
		out[k] = v
	}
	return out
}

// Message is a rendered SMS ready for delivery.
type Message struct {
	To   string
	Body string
}

// Driver is the transport capability of one SMS provider.
// Implementations live in infra/sms (Twilio, Nexmo, Clickatell, Plivo, Kavenegar).
type Driver interface {
	// Send delivers msg once using creds and returns the provider's message ID.
	// Timeouts are the driver's concern; callers never retry.
	Send(ctx context.Context, creds Credentials, msg *Message) (string, error)

	// Name returns the channel identifier the driver is registered under.
	Name() string
}
