// Package mockgw simulates the HCGateway v2 API for tests and local
// development. It implements /login, /refresh and /fetch/steps with the
// same wire shapes as the real gateway and exposes call counters plus
// failure switches so tests can drive the token lifecycle.
package mockgw

import (
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/aingelmo/HCGateway-dashboard/internal/domain/validate"
)

// DefaultTokenTTL is the lifetime of issued access tokens.
const DefaultTokenTTL = time.Hour

// Server holds the mock gateway state. Safe for concurrent use.
type Server struct {
	mu sync.Mutex

	username string
	password string
	tokenTTL time.Duration
	nowFunc  func() time.Time

	accessToken  string
	refreshToken string
	revoked      bool

	failRefresh  bool
	failLogin    bool
	rejectFetch  bool
	ignoreFilter bool

	records []validate.RawRecord

	loginCalls   int
	refreshCalls int
	fetchCalls   int
}

// Option configures the mock server.
type Option func(*Server)

// WithTokenTTL sets the lifetime of issued tokens.
func WithTokenTTL(ttl time.Duration) Option {
	return func(s *Server) {
		if ttl > 0 {
			s.tokenTTL = ttl
		}
	}
}

// WithNowFunc overrides the clock.
func WithNowFunc(now func() time.Time) Option {
	return func(s *Server) {
		if now != nil {
			s.nowFunc = now
		}
	}
}

// WithRecords seeds the step records served by /fetch/steps.
func WithRecords(records []validate.RawRecord) Option {
	return func(s *Server) {
		s.records = records
	}
}

// New creates a mock gateway accepting the given credentials.
func New(username, password string, opts ...Option) *Server {
	s := &Server{
		username: username,
		password: password,
		tokenTTL: DefaultTokenTTL,
		nowFunc:  time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the HTTP handler for the mock API.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/login", s.handleLogin)
	mux.HandleFunc("/refresh", s.handleRefresh)
	mux.HandleFunc("/fetch/steps", s.handleFetchSteps)
	return mux
}

// SetRecords replaces the served step records.
func (s *Server) SetRecords(records []validate.RawRecord) {
	s.mu.Lock()
	s.records = records
	s.mu.Unlock()
}

// RevokeAccess makes the current access token rejected with a 401 until a
// new one is issued via /login or /refresh.
func (s *Server) RevokeAccess() {
	s.mu.Lock()
	s.revoked = true
	s.mu.Unlock()
}

// FailRefresh toggles whether /refresh rejects all requests.
func (s *Server) FailRefresh(fail bool) {
	s.mu.Lock()
	s.failRefresh = fail
	s.mu.Unlock()
}

// RejectFetches toggles whether /fetch/steps answers 401 even for freshly
// issued tokens.
func (s *Server) RejectFetches(reject bool) {
	s.mu.Lock()
	s.rejectFetch = reject
	s.mu.Unlock()
}

// IgnoreQueryFilter makes /fetch/steps return every seeded record without
// applying the query window, simulating a misbehaving upstream filter.
func (s *Server) IgnoreQueryFilter(ignore bool) {
	s.mu.Lock()
	s.ignoreFilter = ignore
	s.mu.Unlock()
}

// FailLogin toggles whether /login rejects all requests.
func (s *Server) FailLogin(fail bool) {
	s.mu.Lock()
	s.failLogin = fail
	s.mu.Unlock()
}

// LoginCalls returns how many login requests were received.
func (s *Server) LoginCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loginCalls
}

// RefreshCalls returns how many refresh requests were received.
func (s *Server) RefreshCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.refreshCalls
}

// FetchCalls returns how many fetch requests were received.
func (s *Server) FetchCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fetchCalls
}

type tokenPayload struct {
	Token   string `json:"token"`
	Refresh string `json:"refresh"`
	Expiry  string `json:"expiry"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}

	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "bad request"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loginCalls++

	if s.failLogin || req.Username != s.username || req.Password != s.password {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid credentials"})
		return
	}

	writeJSON(w, http.StatusOK, s.issueLocked())
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}

	var req struct {
		Refresh string `json:"refresh"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "bad request"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.refreshCalls++

	if s.failRefresh || req.Refresh == "" || req.Refresh != s.refreshToken {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid refresh token"})
		return
	}

	writeJSON(w, http.StatusOK, s.issueLocked())
}

func (s *Server) handleFetchSteps(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}

	bearer := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")

	s.mu.Lock()
	defer s.mu.Unlock()
	s.fetchCalls++

	if bearer == "" || s.revoked || s.rejectFetch || bearer != s.accessToken {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		return
	}

	var req struct {
		Queries struct {
			End map[string]string `json:"end"`
		} `json:"queries"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "bad request"})
		return
	}

	out := s.records
	if gte, lte := req.Queries.End["$gte"], req.Queries.End["$lte"]; !s.ignoreFilter && gte != "" && lte != "" {
		out = filterByEnd(s.records, gte, lte)
	}

	writeJSON(w, http.StatusOK, map[string]any{"data": out})
}

// issueLocked mints a fresh token pair. Callers must hold s.mu.
func (s *Server) issueLocked() tokenPayload {
	s.accessToken = uuid.NewString()
	s.refreshToken = uuid.NewString()
	s.revoked = false
	return tokenPayload{
		Token:   s.accessToken,
		Refresh: s.refreshToken,
		Expiry:  s.nowFunc().Add(s.tokenTTL).UTC().Format(time.RFC3339),
	}
}

// filterByEnd keeps records whose end timestamp falls inside [gte, lte].
func filterByEnd(records []validate.RawRecord, gte, lte string) []validate.RawRecord {
	from, err1 := time.Parse(time.RFC3339, gte)
	to, err2 := time.Parse(time.RFC3339, lte)
	if err1 != nil || err2 != nil {
		return records
	}

	var out []validate.RawRecord
	for _, rec := range records {
		end, err := time.Parse(time.RFC3339, rec.End)
		if err != nil {
			// Malformed seed records are served as-is so validation paths
			// can be exercised downstream.
			out = append(out, rec)
			continue
		}
		if end.Before(from) || end.After(to) {
			continue
		}
		out = append(out, rec)
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
