package common

import (
	"errors"
	"fmt"
)

// Configuration errors. Surfaced to the operator, never retried.
var (
	ErrUnknownChannel        = errors.New("unknown channel")
	ErrDuplicateChannel      = errors.New("duplicate channel")
	ErrNoActiveChannel       = errors.New("no active channel")
	ErrInvalidDefaultChannel = errors.New("invalid default channel")
)

// Integration errors raised while rendering a message.
var (
	ErrUnknownTemplate = errors.New("unknown template")
	ErrMissingVariable = errors.New("missing template variable")
)

// ErrUnresolvableRecipient indicates a recipient role could not be mapped to a phone number.
var ErrUnresolvableRecipient = errors.New("unresolvable recipient")

// OTP verification errors. Clients only ever see OTPFailureMessage.
var (
	ErrNoActiveChallenge = errors.New("no active challenge")
	ErrCodeExpired       = errors.New("code expired")
	ErrCodeMismatch      = errors.New("code mismatch")
	ErrAttemptsExhausted = errors.New("attempts exhausted")
)

// ErrRateLimited indicates the caller exceeded a per-recipient quota.
var ErrRateLimited = errors.New("rate limit exceeded")

// OTPFailureMessage is the only detail an end user receives for a failed verification.
const OTPFailureMessage = "invalid or expired code"

// IsOTPError reports whether err is one of the OTP verification failures.
func IsOTPError(err error) bool {
	return errors.Is(err, ErrNoActiveChallenge) ||
		errors.Is(err, ErrCodeExpired) ||
		errors.Is(err, ErrCodeMismatch) ||
		errors.Is(err, ErrAttemptsExhausted)
}

// IsConfigurationError reports whether err stems from channel configuration.
func IsConfigurationError(err error) bool {
	return errors.Is(err, ErrUnknownChannel) ||
		errors.Is(err, ErrDuplicateChannel) ||
		errors.Is(err, ErrNoActiveChannel) ||
		errors.Is(err, ErrInvalidDefaultChannel)
}

// NotFoundError indicates a resource was not found.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s with id '%s' not found", e.Resource, e.ID)
}

// NewNotFoundError creates a new NotFoundError.
func NewNotFoundError(resource, id string) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}

// ValidationError indicates invalid input data.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NewValidationError creates a new ValidationError.
func NewValidationError(message string) *ValidationError {
	return &ValidationError{Message: message}
}

// UnauthorizedError indicates missing or invalid authentication.
type UnauthorizedError struct {
	Message string
}

func (e *UnauthorizedError) Error() string {
	if e.Message == "" {
		return "unauthorized"
	}
	return e.Message
}

// NewUnauthorizedError creates a new UnauthorizedError.
func NewUnauthorizedError(message string) *UnauthorizedError {
	return &UnauthorizedError{Message: message}
}

// ProviderError indicates an SMS provider failed to accept a message.
type ProviderError struct {
	Provider string
	Message  string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s provider error: %s", e.Provider, e.Message)
}

// NewProviderError creates a new ProviderError.
func NewProviderError(provider, message string) *ProviderError {
	return &ProviderError{Provider: provider, Message: message}
}
