package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load builds a Config by layering defaults, .env, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. .env file in the working directory (loaded into the process env)
//  3. file (YAML) if HCGW_CONFIG is set
//  4. environment variables
//
// Credential variables keep their upstream names (HCGATEWAY_USERNAME,
// HCGATEWAY_PASSWORD, LOGGING_LEVEL); service settings use the HCGW_ prefix
// (HCGW_ADDR, HCGW_BASE_URL, ...).
func Load(_ context.Context) (*Config, error) {
	// .env only fills variables that are not already set, so real env wins.
	_ = godotenv.Load()

	base := New()

	k := koanf.New(".")

	if path := os.Getenv("HCGW_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
		}
	}

	// Map only known variables; everything else in the environment is ignored.
	envProvider := env.Provider("", ".", func(s string) string {
		switch s {
		case "HCGATEWAY_USERNAME":
			return "username"
		case "HCGATEWAY_PASSWORD":
			return "password"
		case "LOGGING_LEVEL":
			return "log_level"
		}
		if rest, ok := strings.CutPrefix(s, "HCGW_"); ok && rest != "CONFIG" {
			return strings.ToLower(rest)
		}
		return ""
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// validate fails fast on configurations the process cannot run with.
func (c *Config) validate() error {
	switch {
	case strings.TrimSpace(c.Username) == "":
		return fmt.Errorf("%w: HCGATEWAY_USERNAME must be set", ErrInvalidConfig)
	case strings.TrimSpace(c.Password) == "":
		return fmt.Errorf("%w: HCGATEWAY_PASSWORD must be set", ErrInvalidConfig)
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.BaseURL == "":
		return fmt.Errorf("%w: base_url must not be empty", ErrInvalidConfig)
	case c.HTTPTimeoutMS <= 0:
		return fmt.Errorf("%w: http_timeout_ms must be positive", ErrInvalidConfig)
	case c.TokenExpiryMarginSec < 0:
		return fmt.Errorf("%w: token_expiry_margin_sec must not be negative", ErrInvalidConfig)
	}
	return nil
}
