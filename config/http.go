package config

// HTTPConfig holds the HTTP server settings for the session API.
type HTTPConfig struct {
	// Addr is the listen address for the JSON API.
	Addr string `env:"HTTP_ADDR" envDefault:":8080"`
}

// Sanitize applies guardrails to HTTP configuration values.
func (c *HTTPConfig) Sanitize() {
	if c.Addr == "" {
		c.Addr = ":8080"
	}
}
