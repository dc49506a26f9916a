// Package gateway implements the HCGateway API client: token lifecycle
// management and authenticated step fetches.
package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/aingelmo/HCGateway-dashboard/pkg/logger"
	"github.com/aingelmo/HCGateway-dashboard/pkg/metrics"
)

// Defaults for token lifecycle management.
const (
	// DefaultExpiryMargin renews tokens this long before they expire.
	DefaultExpiryMargin = 5 * time.Minute

	// DefaultAssumedLifetime is used when the gateway omits an expiry.
	DefaultAssumedLifetime = time.Hour
)

// Credentials authenticate against the gateway. Immutable after startup;
// never logged.
type Credentials struct {
	Username string
	Password string
}

// Token is a bearer credential plus its refresh counterpart and expiry.
type Token struct {
	Access    string
	Refresh   string
	ExpiresAt time.Time
}

// fresh reports whether the access token is still usable at now, keeping
// the configured safety margin before the declared expiry.
func (t Token) fresh(now time.Time, margin time.Duration) bool {
	if t.Access == "" || t.ExpiresAt.IsZero() {
		return false
	}
	return now.Add(margin).Before(t.ExpiresAt)
}

// Manager owns the token for one set of credentials. Renewal is serialized:
// concurrent callers during an expired state share a single upstream call.
type Manager struct {
	creds           Credentials
	baseURL         string
	client          *http.Client
	margin          time.Duration
	assumedLifetime time.Duration
	nowFunc         func() time.Time
	log             logger.Logger

	mu    sync.RWMutex
	token Token

	renew singleflight.Group
}

// NewManager creates a token manager for the gateway at baseURL.
func NewManager(creds Credentials, baseURL string, opts ...ManagerOption) (*Manager, error) {
	if creds.Username == "" || creds.Password == "" {
		return nil, fmt.Errorf("%w: missing credentials", ErrAuth)
	}
	if baseURL == "" {
		return nil, fmt.Errorf("%w: missing base URL", ErrAPI)
	}

	m := &Manager{
		creds:           creds,
		baseURL:         baseURL,
		client:          http.DefaultClient,
		margin:          DefaultExpiryMargin,
		assumedLifetime: DefaultAssumedLifetime,
		nowFunc:         time.Now,
		log:             logger.Get().Named("token"),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// Login authenticates with the stored credentials and installs the token.
func (m *Manager) Login(ctx context.Context) (Token, error) {
	body := loginRequest{Username: m.creds.Username, Password: m.creds.Password}
	data, status, err := postJSON(ctx, m.client, m.baseURL+"/login", body, "")
	if err != nil {
		metrics.RecordLogin("failure")
		return Token{}, err
	}
	if !is2xx(status) {
		metrics.RecordLogin("failure")
		if status == http.StatusUnauthorized || status == http.StatusForbidden || status == http.StatusBadRequest {
			return Token{}, fmt.Errorf("%w: login rejected with status %d", ErrAuth, status)
		}
		return Token{}, fmt.Errorf("%w: login returned status %d", ErrAPI, status)
	}

	tok, err := m.parseToken(data)
	if err != nil {
		metrics.RecordLogin("failure")
		return Token{}, err
	}

	metrics.RecordLogin("success")
	m.store(tok)
	m.log.Debug(ctx, "login succeeded", logger.Any("expires_at", tok.ExpiresAt))
	return tok, nil
}

// Refresh exchanges the stored refresh token for a new access token.
func (m *Manager) Refresh(ctx context.Context) (Token, error) {
	m.mu.RLock()
	refresh := m.token.Refresh
	m.mu.RUnlock()

	if refresh == "" {
		return Token{}, fmt.Errorf("%w: no refresh token", ErrAuth)
	}

	data, status, err := postJSON(ctx, m.client, m.baseURL+"/refresh", refreshRequest{Refresh: refresh}, "")
	if err != nil {
		metrics.RecordRefresh("failure")
		return Token{}, err
	}
	if !is2xx(status) {
		metrics.RecordRefresh("failure")
		if status == http.StatusUnauthorized || status == http.StatusForbidden || status == http.StatusBadRequest {
			return Token{}, fmt.Errorf("%w: refresh rejected with status %d", ErrAuth, status)
		}
		return Token{}, fmt.Errorf("%w: refresh returned status %d", ErrAPI, status)
	}

	tok, err := m.parseToken(data)
	if err != nil {
		metrics.RecordRefresh("failure")
		return Token{}, err
	}

	metrics.RecordRefresh("success")
	m.store(tok)
	m.log.Debug(ctx, "token refreshed", logger.Any("expires_at", tok.ExpiresAt))
	return tok, nil
}

// Token returns the current token, renewing it first when expired or about
// to expire. Renewal prefers a refresh and falls back to a full login from
// the stored credentials. Concurrent callers share one upstream renewal.
func (m *Manager) Token(ctx context.Context) (Token, error) {
	if tok, ok := m.current(); ok {
		return tok, nil
	}

	v, err, _ := m.renew.Do("renew", func() (any, error) {
		// A caller that queued behind the winning renewal sees its result
		// here without touching the network again.
		if tok, ok := m.current(); ok {
			return tok, nil
		}
		return m.doRenew(ctx)
	})
	if err != nil {
		return Token{}, err
	}
	return v.(Token), nil
}

// Invalidate discards the access token so the next Token call renews. The
// refresh token is kept so renewal can avoid a full login.
func (m *Manager) Invalidate() {
	m.mu.Lock()
	m.token.Access = ""
	m.token.ExpiresAt = time.Time{}
	m.mu.Unlock()
}

// doRenew runs the refresh-then-login fallback chain.
func (m *Manager) doRenew(ctx context.Context) (Token, error) {
	m.mu.RLock()
	hasRefresh := m.token.Refresh != ""
	m.mu.RUnlock()

	if hasRefresh {
		tok, err := m.Refresh(ctx)
		if err == nil {
			return tok, nil
		}
		m.log.Warn(ctx, "token refresh failed, attempting full login", logger.Error(err))
	}

	tok, err := m.Login(ctx)
	if err != nil {
		m.clear()
		return Token{}, err
	}
	return tok, nil
}

// current returns the stored token when it is still fresh.
func (m *Manager) current() (Token, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.token.fresh(m.nowFunc(), m.margin) {
		return m.token, true
	}
	return Token{}, false
}

func (m *Manager) store(tok Token) {
	m.mu.Lock()
	m.token = tok
	m.mu.Unlock()
}

// clear drops the whole token after an unrecoverable auth failure.
func (m *Manager) clear() {
	m.mu.Lock()
	m.token = Token{}
	m.mu.Unlock()
}

// parseToken decodes a /login or /refresh response body.
func (m *Manager) parseToken(data []byte) (Token, error) {
	var resp tokenResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return Token{}, fmt.Errorf("%w: decode token response: %w", ErrAPI, err)
	}
	if resp.Token == "" {
		return Token{}, fmt.Errorf("%w: token response missing token", ErrAPI)
	}

	expiresAt := m.nowFunc().Add(m.assumedLifetime)
	if resp.Expiry != "" {
		t, err := time.Parse(time.RFC3339, resp.Expiry)
		if err != nil {
			return Token{}, fmt.Errorf("%w: token response has invalid expiry", ErrAPI)
		}
		expiresAt = t
	}

	return Token{Access: resp.Token, Refresh: resp.Refresh, ExpiresAt: expiresAt}, nil
}
