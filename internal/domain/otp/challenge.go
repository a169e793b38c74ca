package otp

import "time"

// State is the lifecycle state of a challenge. A subject without a stored
// challenge has no state at all.
type State string

const (
	StatePending   State = "pending"
	StateConsumed  State = "consumed"
	StateExpired   State = "expired"
	StateExhausted State = "exhausted"
)

// Terminal reports whether no further verification is possible.
func (s State) Terminal() bool {
	return s != StatePending
}

// Challenge is the active one-time passcode of a subject.
type Challenge struct {
	Subject           string    `json:"subject"`
	Phone             string    `json:"phone"`
	Code              string    `json:"code"`
	IssuedAt          time.Time `json:"issued_at"`
	ExpiresAt         time.Time `json:"expires_at"`
	MaxAttempts       int       `json:"max_attempts"`
	RemainingAttempts int       `json:"remaining_attempts"`
	State             State     `json:"state"`
}

// IssueResponse is what the API reveals about a freshly issued challenge.
type IssueResponse struct {
	Subject     string    `json:"subject"`
	ExpiresAt   time.Time `json:"expires_at"`
	MaxAttempts int       `json:"max_attempts"`
}

// IssueRequest is the body of POST /otp/issue.
type IssueRequest struct {
	Subject string `json:"subject" binding:"required"`
}

// VerifyRequest is the body of POST /otp/verify.
type VerifyRequest struct {
	Subject string `json:"subject" binding:"required"`
	Code    string `json:"code" binding:"required"`
}
