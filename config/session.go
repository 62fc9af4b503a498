package config

import "time"

// SessionConfig controls the session lifecycle: idle detection,
// visibility debouncing, and token record retention.
type SessionConfig struct {
	// IdleTimeout is how long the session may go without activity
	// signals before the controller signs the user out.
	IdleTimeout time.Duration `env:"SESSION_IDLE_TIMEOUT" envDefault:"60m"`

	// VisibilityDebounce is how long the tab must stay visible before a
	// hidden-to-visible transition triggers a session refresh.
	VisibilityDebounce time.Duration `env:"SESSION_VISIBILITY_DEBOUNCE" envDefault:"500ms"`

	// RecoveryRoutes lists the paths reserved for the password recovery
	// flow. Arriving on one with a live session forces a sign-out.
	RecoveryRoutes []string `env:"SESSION_RECOVERY_ROUTES" envDefault:"/reset-password;/update-password" envSeparator:";"`

	// TokenTTL caps how long token records persist in the store when the
	// provider session carries no explicit expiry.
	TokenTTL time.Duration `env:"SESSION_TOKEN_TTL" envDefault:"8h"`
}

// Sanitize applies guardrails to session configuration values.
func (c *SessionConfig) Sanitize() {
	if c.IdleTimeout < time.Minute {
		c.IdleTimeout = time.Minute
	}
	if c.VisibilityDebounce < 50*time.Millisecond {
		c.VisibilityDebounce = 50 * time.Millisecond
	}
	if c.VisibilityDebounce > 10*time.Second {
		c.VisibilityDebounce = 10 * time.Second
	}
	if c.TokenTTL < time.Minute {
		c.TokenTTL = time.Minute
	}
	if len(c.RecoveryRoutes) == 0 {
		c.RecoveryRoutes = []string{"/reset-password", "/update-password"}
	}
}
