package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents a category of application error.
type ErrorCode string

const (
	// ErrCodeCredential indicates rejected login credentials.
	ErrCodeCredential ErrorCode = "credential"
	// ErrCodeVerification indicates a bad or expired OTP or recovery token.
	ErrCodeVerification ErrorCode = "verification"
	// ErrCodePolicy indicates input that fails a local policy check
	// (password complexity, mismatched confirmation, duplicate email).
	ErrCodePolicy ErrorCode = "policy"
	// ErrCodeTransport indicates a network or rate-limit failure talking
	// to the identity boundary.
	ErrCodeTransport ErrorCode = "transport"
	// ErrCodeAuthorization indicates a role-gated operation attempted by
	// the wrong role.
	ErrCodeAuthorization ErrorCode = "authorization"
	// ErrCodeConflict indicates a conflict with existing data
	// (e.g., unique constraint violation).
	ErrCodeConflict ErrorCode = "conflict"
	// ErrCodeNotFound indicates a resource was not found.
	ErrCodeNotFound ErrorCode = "not_found"
	// ErrCodeUnexpected indicates anything unmapped, including a boundary
	// call succeeding with malformed data.
	ErrCodeUnexpected ErrorCode = "unexpected"
)

// AppError represents a structured application error with a code, message,
// and optional cause. It supports error wrapping and unwrapping for use
// with errors.Is and errors.As.
type AppError struct {
	// Code categorizes the error type
	Code ErrorCode
	// Message is a human-readable error message
	Message string
	// Cause is the underlying error that caused this error (optional)
	Cause error
	// Field is the specific field that caused the error (optional, for policy errors)
	Field string
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the underlying cause, enabling errors.Is and errors.As.
func (e *AppError) Unwrap() error {
	return e.Cause
}

// Recoverable reports whether the user can retry without leaving the
// current flow step. Transport and verification failures always are;
// policy failures re-prompt without another boundary call.
func (e *AppError) Recoverable() bool {
	switch e.Code {
	case ErrCodeTransport, ErrCodeVerification, ErrCodePolicy:
		return true
	default:
		return false
	}
}

// Credential creates a new credential error.
func Credential(message string) *AppError {
	return &AppError{Code: ErrCodeCredential, Message: message}
}

// Verification creates a new verification error.
func Verification(message string) *AppError {
	return &AppError{Code: ErrCodeVerification, Message: message}
}

// Policy creates a new policy error.
func Policy(message string) *AppError {
	return &AppError{Code: ErrCodePolicy, Message: message}
}

// PolicyField creates a new policy error for a specific field.
func PolicyField(field, message string) *AppError {
	return &AppError{Code: ErrCodePolicy, Message: message, Field: field}
}

// Transport creates a new transport error.
func Transport(message string) *AppError {
	return &AppError{Code: ErrCodeTransport, Message: message}
}

// Authorization creates a new authorization error.
func Authorization(message string) *AppError {
	return &AppError{Code: ErrCodeAuthorization, Message: message}
}

// Conflict creates a new conflict error.
func Conflict(message string) *AppError {
	return &AppError{Code: ErrCodeConflict, Message: message}
}

// NotFound creates a new not-found error.
func NotFound(message string) *AppError {
	return &AppError{Code: ErrCodeNotFound, Message: message}
}

// Unexpected creates a new unexpected error.
func Unexpected(message string) *AppError {
	return &AppError{Code: ErrCodeUnexpected, Message: message}
}

// Unexpectedf creates a new unexpected error with a formatted message.
func Unexpectedf(format string, args ...any) *AppError {
	return &AppError{Code: ErrCodeUnexpected, Message: fmt.Sprintf(format, args...)}
}

// Wrap wraps an existing error with an AppError, preserving the cause.
func Wrap(err error, code ErrorCode, message string) *AppError {
	if err == nil {
		return nil
	}
	return &AppError{Code: code, Message: message, Cause: err}
}

// Wrapf wraps an existing error with an AppError and formatted message.
func Wrapf(err error, code ErrorCode, format string, args ...any) *AppError {
	if err == nil {
		return nil
	}
	return &AppError{Code: code, Message: fmt.Sprintf(format, args...), Cause: err}
}

// isCode checks if an error has a specific error code.
func isCode(err error, code ErrorCode) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == code
}

// IsCredential checks if an error is a credential error.
func IsCredential(err error) bool { return isCode(err, ErrCodeCredential) }

// IsVerification checks if an error is a verification error.
func IsVerification(err error) bool { return isCode(err, ErrCodeVerification) }

// IsPolicy checks if an error is a policy error.
func IsPolicy(err error) bool { return isCode(err, ErrCodePolicy) }

// IsTransport checks if an error is a transport error.
func IsTransport(err error) bool { return isCode(err, ErrCodeTransport) }

// IsAuthorization checks if an error is an authorization error.
func IsAuthorization(err error) bool { return isCode(err, ErrCodeAuthorization) }

// IsConflict checks if an error is a conflict error.
func IsConflict(err error) bool { return isCode(err, ErrCodeConflict) }

// IsNotFound checks if an error is a not-found error.
func IsNotFound(err error) bool { return isCode(err, ErrCodeNotFound) }

// IsUnexpected checks if an error is an unexpected error.
func IsUnexpected(err error) bool { return isCode(err, ErrCodeUnexpected) }

// GetCode returns the ErrorCode from an error, or empty string if not an AppError.
func GetCode(err error) ErrorCode {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}

// GetField returns the Field from an error, or empty string if not an
// AppError or no field set.
func GetField(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Field
	}
	return ""
}
