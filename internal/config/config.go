// Package config defines dashboard configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults; Load layers file/env on top.
// - External errors must be wrapped via this package's error helpers.
package config

// Default upstream endpoint for the HCGateway v2 API.
const defaultBaseURL = "https://api.hcgateway.shuchir.dev/api/v2"

// Config contains process configuration.
type Config struct {
	// Username and Password authenticate against the gateway. Required.
	// Never logged and never persisted.
	Username string `koanf:"username"`
	Password string `koanf:"password"`

	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8501".
	Addr string `koanf:"addr"`

	// BaseURL is the root of the HCGateway v2 API.
	BaseURL string `koanf:"base_url"`

	// HTTPTimeoutMS bounds every upstream request.
	HTTPTimeoutMS int `koanf:"http_timeout_ms"`

	// TokenExpiryMarginSec renews tokens this many seconds before expiry.
	TokenExpiryMarginSec int `koanf:"token_expiry_margin_sec"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:             "info",
		Addr:                 ":8501",
		BaseURL:              defaultBaseURL,
		HTTPTimeoutMS:        10_000,
		TokenExpiryMarginSec: 300,
	}
}
