package config

import (
	"fmt"
	"strings"
)

// AuthMode represents which identity boundary implementation to use.
type AuthMode string

const (
	// AuthModeHosted talks to the hosted identity service's REST API.
	AuthModeHosted AuthMode = "hosted"
	// AuthModeMock uses the in-memory dev boundary (for development only).
	AuthModeMock AuthMode = "mock"
)

// UnmarshalText implements encoding.TextUnmarshaler for AuthMode.
func (a *AuthMode) UnmarshalText(text []byte) error {
	v := strings.ToLower(string(text))
	switch v {
	case "hosted", "mock":
		*a = AuthMode(v)
		return nil
	default:
		return fmt.Errorf("invalid AuthMode: %q (valid options: hosted, mock)", v)
	}
}

// HostedAuthConfig configures the hosted identity service client.
type HostedAuthConfig struct {
	// BaseURL is the root of the identity API.
	BaseURL string `env:"BASE_URL"`

	// APIKey is the public API key sent on every request.
	APIKey string `env:"API_KEY"`

	// RoleExpr is the JMESPath expression that extracts the portal role
	// from the provider's raw user metadata.
	RoleExpr string `env:"ROLE_EXPR" envDefault:"app_metadata.role"`
}

// DevAuthConfig controls the mock boundary's seeded identity.
// Used when AUTH_MODE=mock for development and testing.
type DevAuthConfig struct {
	Email    string `env:"EMAIL"     envDefault:"dev@example.com"`
	FullName string `env:"FULL_NAME" envDefault:"Dev User"`
	Password string `env:"PASSWORD"  envDefault:"Passw0rd!"`
	Role     string `env:"ROLE"      envDefault:"admin"`
	// FixedOTP, when set, replaces derived codes for scripted flows.
	FixedOTP string `env:"FIXED_OTP" envDefault:""`
}

// AuthConfig groups all identity-boundary configuration.
type AuthConfig struct {
	// Mode determines which boundary implementation to use.
	Mode AuthMode `env:"AUTH_MODE" envDefault:"hosted"`

	// Hosted configuration (used when Mode=hosted).
	Hosted HostedAuthConfig `envPrefix:"AUTH_HOSTED_"`

	// DevAuth configuration (used when Mode=mock).
	DevAuth DevAuthConfig `envPrefix:"DEV_AUTH_"`

	// AdminEmails lists accounts that map to the admin role when the
	// provider metadata carries no usable role claim.
	AdminEmails []string `env:"AUTH_ADMIN_EMAILS" envDefault:"" envSeparator:";"`
}
