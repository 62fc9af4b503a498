package ports

// Package ports defines interfaces (hexagonal ports) for the session
// lifecycle. Implementations live in internal/adapters; orchestration in
// internal/service.

import (
	"context"
	"encoding/json"
	"time"

	domainsession "github.com/campusworks/portal-session/internal/domain/session"
)

// OTPPurpose tags what an emailed one-time code is meant to confirm.
type OTPPurpose string

const (
	// OTPPurposeSignup confirms a freshly created account.
	OTPPurposeSignup OTPPurpose = "signup"
	// OTPPurposeRecovery confirms a password-reset link token.
	OTPPurposeRecovery OTPPurpose = "recovery"
)

// ProviderUser is the raw user payload returned by the identity provider.
// Metadata is kept as raw JSON so role mappers can extract claims without
// the boundary knowing the provider's metadata schema.
type ProviderUser struct {
	ID       string
	Email    string
	Metadata json.RawMessage
}

// ProviderSession is a live provider session: the token pair plus the raw
// user it authenticates.
type ProviderSession struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
	User         ProviderUser
}

// SignUpResult is the outcome of account creation. A nil Session with a
// non-nil User signals that email verification is still pending.
type SignUpResult struct {
	User    *ProviderUser
	Session *ProviderSession
}

// IdentityBoundary is the external identity/credential service. All
// methods are remote calls; errors cross this boundary as raw provider
// errors and are classified by the caller.
type IdentityBoundary interface {
	// SignIn exchanges credentials for a live provider session.
	SignIn(ctx context.Context, email, password string) (*ProviderSession, error)

	// SignUp creates an account. An absent session in the result means
	// the provider wants OTP verification before the account is
	// login-ready.
	SignUp(ctx context.Context, email, fullName, password string) (*SignUpResult, error)

	// VerifyOTP confirms an emailed one-time code or recovery token for
	// the given purpose and returns the resulting session.
	VerifyOTP(ctx context.Context, email, code string, purpose OTPPurpose) (*ProviderSession, error)

	// ResendOTP re-dispatches the signup confirmation code.
	ResendOTP(ctx context.Context, email string) error

	// ResetPassword dispatches a recovery email carrying an embedded
	// token and a type=recovery query parameter.
	ResetPassword(ctx context.Context, email string) error

	// SetPassword updates the password of the currently authenticated
	// provider session.
	SetPassword(ctx context.Context, newPassword string) error

	// CurrentSession returns the live provider session, or nil when
	// signed out.
	CurrentSession(ctx context.Context) (*ProviderSession, error)

	// SignOut invalidates the provider session.
	SignOut(ctx context.Context) error
}

// ProfileStore completes a session snapshot after the boundary confirms a
// live token. Keyed lookup by provider user ID.
type ProfileStore interface {
	ProfileByUserID(ctx context.Context, userID string) (domainsession.Profile, error)
}

// RoleMapper extracts the portal role from a raw provider user payload.
type RoleMapper interface {
	Map(user ProviderUser) domainsession.Role
}

// SessionStore persists the edge's token records, keyed by the opaque
// session ID carried in the browser cookie.
type SessionStore interface {
	Save(ctx context.Context, rec domainsession.TokenRecord) error
	Get(ctx context.Context, id string) (domainsession.TokenRecord, error)
	Delete(ctx context.Context, id string) error
}
