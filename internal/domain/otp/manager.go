package otp

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"fmt"
	"log/slog"
	"math/big"
	"strconv"
	"strings"
	"time"

	"smsnotify/internal/common"
	"smsnotify/internal/domain/notification"
)

// Config controls code generation and challenge lifetime.
type Config struct {
	CodeLength  int
	TTL         time.Duration
	MaxAttempts int
	TemplateID  string
}

func (c *Config) applyDefaults() {
	if c.CodeLength <= 0 {
		c.CodeLength = 6
	}
	if c.TTL <= 0 {
		c.TTL = 10 * time.Minute
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = 3
	}
	if c.TemplateID == "" {
		c.TemplateID = "smsnotify.otp_code"
	}
}

// Dispatcher sends a rendered notification. Satisfied by *notification.Dispatcher.
type Dispatcher interface {
	Dispatch(ctx context.Context, req *notification.Request) (*notification.DeliveryResult, error)
}

// Observer is told about issue and verify outcomes.
type Observer interface {
	Issued(ctx context.Context, subject string)
	Verified(ctx context.Context, subject string, err error)
}

// Manager runs the one-time passcode state machine.
type Manager struct {
	config     Config
	store      Store
	dispatcher Dispatcher
	directory  Directory
	limiter    IssueLimiter
	observers  []Observer
	now        func() time.Time
}

// NewManager creates an OTP manager. limiter may be nil.
func NewManager(cfg Config, store Store, dispatcher Dispatcher, directory Directory, limiter IssueLimiter, observers ...Observer) *Manager {
	cfg.applyDefaults()
	if directory == nil {
		directory = PhoneDirectory{}
	}
	return &Manager{
		config:     cfg,
		store:      store,
		dispatcher: dispatcher,
		directory:  directory,
		limiter:    limiter,
		observers:  observers,
		now:        time.Now,
	}
}

// Config returns the effective configuration.
func (m *Manager) Config() Config {
	return m.config
}

// Issue creates a new pending challenge for subject, replacing any earlier
// one, and sends the code by SMS. The challenge is stored before sending so
// a code can never arrive for a challenge that does not exist.
func (m *Manager) Issue(ctx context.Context, subject string) (*Challenge, error) {
	subject = NormalizeSubject(subject)
	if subject == "" {
		return nil, common.NewValidationError("subject is required")
	}

	phone, err := m.directory.Phone(ctx, subject)
	if err != nil {
		return nil, err
	}

	if m.limiter != nil {
		allowed, err := m.limiter.Allow(ctx, subject)
		if err != nil {
			// Fail open: a limiter outage must not lock users out.
			slog.Warn("otp issue limiter unavailable", "subject", subject, "error", err)
		} else if !allowed {
			return nil, common.ErrRateLimited
		}
	}

	code, err := generateCode(m.config.CodeLength)
	if err != nil {
		return nil, err
	}

	now := m.now()
	challenge := &Challenge{
		Subject:           subject,
		Phone:             phone,
		Code:              code,
		IssuedAt:          now,
		ExpiresAt:         now.Add(m.config.TTL),
		MaxAttempts:       m.config.MaxAttempts,
		RemainingAttempts: m.config.MaxAttempts,
		State:             StatePending,
	}

	err = m.store.Update(ctx, subject, func(*Challenge) (*Challenge, error) {
		next := *challenge
		return &next, nil
	})
	if err != nil {
		return nil, fmt.Errorf("storing challenge: %w", err)
	}

	result, err := m.dispatcher.Dispatch(ctx, &notification.Request{
		TemplateID: m.config.TemplateID,
		To:         phone,
		Variables: map[string]string{
			"code":           code,
			"expiry_minutes": strconv.Itoa(int(m.config.TTL.Minutes())),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("sending code: %w", err)
	}
	if !result.Success {
		return nil, common.NewProviderError(result.Channel, result.Error)
	}

	for _, o := range m.observers {
		o.Issued(ctx, subject)
	}
	slog.Info("otp issued", "subject", subject, "channel", result.Channel, "expires_at", challenge.ExpiresAt)
	return challenge, nil
}

// Verify checks code against the subject's pending challenge. It returns
// nil exactly once per issued challenge.
func (m *Manager) Verify(ctx context.Context, subject, code string) error {
	subject = NormalizeSubject(subject)

	var outcome error
	err := m.store.Update(ctx, subject, func(current *Challenge) (*Challenge, error) {
		outcome = nil
		if current == nil || current.State.Terminal() {
			outcome = common.ErrNoActiveChallenge
			return current, nil
		}

		next := *current
		if m.now().After(next.ExpiresAt) {
			next.State = StateExpired
			outcome = common.ErrCodeExpired
			return &next, nil
		}

		if subtle.ConstantTimeCompare([]byte(code), []byte(next.Code)) == 1 {
			next.State = StateConsumed
			return &next, nil
		}

		next.RemainingAttempts--
		if next.RemainingAttempts <= 0 {
			next.RemainingAttempts = 0
			next.State = StateExhausted
			outcome = common.ErrAttemptsExhausted
		} else {
			outcome = common.ErrCodeMismatch
		}
		return &next, nil
	})
	if err != nil {
		return fmt.Errorf("updating challenge: %w", err)
	}

	for _, o := range m.observers {
		o.Verified(ctx, subject, outcome)
	}
	if outcome != nil {
		slog.Info("otp verification failed", "subject", subject, "reason", outcome)
	}
	return outcome
}

// generateCode returns a uniformly random numeric code of length digits.
func generateCode(length int) (string, error) {
	limit := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(length)), nil)
	n, err := rand.Int(rand.Reader, limit)
	if err != nil {
		return "", fmt.Errorf("generating code: %w", err)
	}
	digits := n.String()
	return strings.Repeat("0", length-len(digits)) + digits, nil
}
