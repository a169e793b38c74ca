package otp

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"smsnotify/internal/common"
)

// Directory maps an authentication subject to the phone number that
// receives its codes.
type Directory interface {
	Phone(ctx context.Context, subject string) (string, error)
}

// DirectoryFunc adapts a function to Directory.
type DirectoryFunc func(ctx context.Context, subject string) (string, error)

// Phone calls f.
func (f DirectoryFunc) Phone(ctx context.Context, subject string) (string, error) {
	return f(ctx, subject)
}

var (
	phonePattern    = regexp.MustCompile(`^\+?[0-9]{6,15}$`)
	phoneFormatting = strings.NewReplacer(" ", "", "-", "", "(", "", ")", "")
)

// NormalizeSubject trims subject and, when it is a formatted phone number,
// strips the formatting. Every OTP entry point keys challenges by this form.
func NormalizeSubject(subject string) string {
	subject = strings.TrimSpace(subject)
	if phone := phoneFormatting.Replace(subject); phonePattern.MatchString(phone) {
		return phone
	}
	return subject
}

// PhoneDirectory treats the subject itself as the phone number.
type PhoneDirectory struct{}

// Phone returns subject with formatting characters removed.
func (PhoneDirectory) Phone(_ context.Context, subject string) (string, error) {
	phone := NormalizeSubject(subject)
	if !phonePattern.MatchString(phone) {
		return "", fmt.Errorf("%w: subject %q is not a phone number", common.ErrUnresolvableRecipient, subject)
	}
	return phone, nil
}
