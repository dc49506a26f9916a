package gateway

import (
	"net/http"
	"time"

	"github.com/aingelmo/HCGateway-dashboard/pkg/logger"
)

// ManagerOption applies a configuration option to the Manager.
type ManagerOption func(*Manager)

// WithHTTPClient sets the HTTP client used for token requests. Timeouts,
// proxies and TLS settings all belong to this client.
func WithHTTPClient(client *http.Client) ManagerOption {
	return func(m *Manager) {
		if client != nil {
			m.client = client
		}
	}
}

// WithExpiryMargin renews tokens this long before their declared expiry.
func WithExpiryMargin(margin time.Duration) ManagerOption {
	return func(m *Manager) {
		if margin >= 0 {
			m.margin = margin
		}
	}
}

// WithAssumedLifetime sets the lifetime assumed when the gateway omits an
// expiry from a token response.
func WithAssumedLifetime(lifetime time.Duration) ManagerOption {
	return func(m *Manager) {
		if lifetime > 0 {
			m.assumedLifetime = lifetime
		}
	}
}

// WithNowFunc overrides the clock; used by tests.
func WithNowFunc(now func() time.Time) ManagerOption {
	return func(m *Manager) {
		if now != nil {
			m.nowFunc = now
		}
	}
}

// WithManagerLogger sets a custom logger for the manager.
func WithManagerLogger(log logger.Logger) ManagerOption {
	return func(m *Manager) {
		if log != nil {
			m.log = log
		}
	}
}

// ClientOption applies a configuration option to the Client.
type ClientOption func(*Client)

// WithClientHTTPClient sets the HTTP client used for fetches.
func WithClientHTTPClient(client *http.Client) ClientOption {
	return func(c *Client) {
		if client != nil {
			c.hc = client
		}
	}
}

// WithClientLogger sets a custom logger for the client.
func WithClientLogger(log logger.Logger) ClientOption {
	return func(c *Client) {
		if log != nil {
			c.log = log
		}
	}
}
