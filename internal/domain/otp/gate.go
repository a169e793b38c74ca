package otp

import (
	"context"
	"strings"

	"smsnotify/internal/common"
)

// Policy decides which subjects must pass an OTP check before signing in.
type Policy interface {
	Requires(subject string) bool
}

// PolicyFunc adapts a function to Policy.
type PolicyFunc func(subject string) bool

// Requires calls f.
func (f PolicyFunc) Requires(subject string) bool { return f(subject) }

// NewPolicy requires OTP for every subject when requireAll is set,
// otherwise only for the listed subjects.
func NewPolicy(requireAll bool, subjects []string) Policy {
	if requireAll {
		return PolicyFunc(func(string) bool { return true })
	}
	set := make(map[string]struct{}, len(subjects))
	for _, s := range subjects {
		set[NormalizeSubject(s)] = struct{}{}
	}
	return PolicyFunc(func(subject string) bool {
		_, ok := set[NormalizeSubject(subject)]
		return ok
	})
}

// Credentials is a sign-in attempt as submitted by the host platform.
type Credentials struct {
	Subject  string `json:"subject" binding:"required"`
	Password string `json:"password,omitempty"`
	Code     string `json:"code,omitempty"`
}

// CredentialChecker verifies the non-OTP part of a sign-in attempt.
type CredentialChecker interface {
	Check(ctx context.Context, creds Credentials) error
}

// CredentialCheckerFunc adapts a function to CredentialChecker.
type CredentialCheckerFunc func(ctx context.Context, creds Credentials) error

// Check calls f.
func (f CredentialCheckerFunc) Check(ctx context.Context, creds Credentials) error {
	return f(ctx, creds)
}

// Gate blocks sign-in for subjects that require OTP until their code verifies.
type Gate struct {
	manager *Manager
	policy  Policy
	checker CredentialChecker
}

// NewGate creates a pre-authentication gate. checker may be nil when
// credentials are checked elsewhere.
func NewGate(manager *Manager, policy Policy, checker CredentialChecker) *Gate {
	return &Gate{manager: manager, policy: policy, checker: checker}
}

// BeforeUserAuthenticate must run before credentials are checked. It
// returns nil for subjects the policy exempts and otherwise the result of
// verifying the supplied code.
func (g *Gate) BeforeUserAuthenticate(ctx context.Context, creds Credentials) error {
	subject := NormalizeSubject(creds.Subject)
	if subject == "" {
		return common.NewValidationError("subject is required")
	}
	if !g.policy.Requires(subject) {
		return nil
	}
	if strings.TrimSpace(creds.Code) == "" {
		return common.NewValidationError("verification code is required")
	}
	return g.manager.Verify(ctx, subject, creds.Code)
}

// Authenticate runs the OTP gate and, only when it passes, the credential check.
func (g *Gate) Authenticate(ctx context.Context, creds Credentials) error {
	if err := g.BeforeUserAuthenticate(ctx, creds); err != nil {
		return err
	}
	if g.checker == nil {
		return nil
	}
	return g.checker.Check(ctx, creds)
}
