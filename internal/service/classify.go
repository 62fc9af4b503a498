package service

import (
	"context"
	"errors"
	"strings"
)

// FlowErrorCode is the user-facing category for a failed auth flow
// submission. Raw provider messages never reach the UI directly; they are
// classified here so the taxonomy stays total and testable.
type FlowErrorCode string

const (
	FlowErrInvalidCredentials FlowErrorCode = "invalid-credentials"
	FlowErrEmailUnconfirmed   FlowErrorCode = "email-unconfirmed"
	FlowErrRateLimited        FlowErrorCode = "rate-limited"
	FlowErrNetwork            FlowErrorCode = "network-error"
	FlowErrAlreadyRegistered  FlowErrorCode = "already-registered"
	FlowErrInvalidEmail       FlowErrorCode = "invalid-email"
	FlowErrWeakPassword       FlowErrorCode = "weak-password"
	FlowErrUnknown            FlowErrorCode = "unknown"
)

// providerMessagePatterns maps substrings of raw provider error messages
// to flow error codes. Order matters: first match wins. The substrings
// track the hosted identity service's message catalog, lowercased.
var providerMessagePatterns = []struct {
	substr string
	code   FlowErrorCode
}{
	{"invalid login credentials", FlowErrInvalidCredentials},
	{"invalid grant", FlowErrInvalidCredentials},
	{"email not confirmed", FlowErrEmailUnconfirmed},
	{"rate limit", FlowErrRateLimited},
	{"too many requests", FlowErrRateLimited},
	{"already registered", FlowErrAlreadyRegistered},
	{"already been registered", FlowErrAlreadyRegistered},
	{"unable to validate email", FlowErrInvalidEmail},
	{"invalid email", FlowErrInvalidEmail},
	{"invalid format", FlowErrInvalidEmail},
	{"password should be", FlowErrWeakPassword},
	{"weak password", FlowErrWeakPassword},
	{"network", FlowErrNetwork},
	{"connection refused", FlowErrNetwork},
	{"timeout", FlowErrNetwork},
}

// ClassifyProviderError maps a raw boundary error to a flow error code
// plus the message to surface. Context cancellation and deadline expiry
// classify as network failures. Unmapped messages pass through verbatim
// under the unknown code.
func ClassifyProviderError(err error) (FlowErrorCode, string) {
	if err == nil {
		return "", ""
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return FlowErrNetwork, err.Error()
	}

	msg := err.Error()
	lower := strings.ToLower(msg)
	for _, p := range providerMessagePatterns {
		if strings.Contains(lower, p.substr) {
			return p.code, msg
		}
	}
	return FlowErrUnknown, msg
}
