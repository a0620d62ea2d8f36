package httpclient

import (
	"fmt"
	"time"
)

// Config configures the HTTP client. Every preview request is a single
// attempt; there is deliberately no retry configuration here.
type Config struct {
	// Timeout is the total request timeout.
	// Default: 30s. Must be > 0.
	Timeout time.Duration

	// UserAgent is the User-Agent header value.
	// Required. Must be non-empty.
	UserAgent string

	// FollowRedirects controls whether 3xx responses are followed.
	// Default: true. When false the redirect response itself is returned.
	FollowRedirects bool

	// InsecureSkipVerify disables TLS certificate validation. Previews
	// against self-signed development endpoints opt in per node; callers
	// surface a warning whenever this is set.
	InsecureSkipVerify bool
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Timeout:         30 * time.Second,
		UserAgent:       "flowpreview-http-client/1.0",
		FollowRedirects: true,
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be > 0, got %v", c.Timeout)
	}

	if c.UserAgent == "" {
		return fmt.Errorf("user_agent is required and must be non-empty")
	}

	return nil
}
