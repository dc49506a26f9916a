// Package service provides the core application service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/aingelmo/HCGateway-dashboard/internal/domain/model"
	"github.com/aingelmo/HCGateway-dashboard/pkg/logger"
)

// StepsFetcher is the upstream dependency of the service: anything that can
// turn a query range into validated step records.
type StepsFetcher interface {
	FetchSteps(ctx context.Context, rng model.QueryRange) ([]model.StepsRecord, error)
}

// Service mediates between the HTTP layer and the gateway client and keeps
// process-level counters for /stats.
type Service struct {
	mu sync.RWMutex

	fetcher StepsFetcher
	log     logger.Logger

	started bool

	// Counters. Guarded by mu.
	fetches       int
	fetchFailures int
	recordsServed int
	lastFetchAt   time.Time
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithFetcher sets the upstream steps fetcher. Required before Start.
func WithFetcher(fetcher StepsFetcher) Option {
	return func(s *Service) {
		if fetcher != nil {
			s.fetcher = fetcher
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(log logger.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.log = log
		}
	}
}

// New creates a Service with the given options.
func New(opts ...Option) *Service {
	s := &Service{}
	for _, opt := range opts {
		opt(s)
	}
	if s.log == nil {
		s.log = logger.Get().Named("service")
	}
	return s
}

// Start validates the wiring. The service holds no background goroutines;
// fetches run synchronously inside request handlers.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.fetcher == nil {
		return errors.New("service requires a steps fetcher")
	}
	s.started = true
	s.log.Info(ctx, "service started")
	return nil
}

// Stop marks the service stopped.
func (s *Service) Stop() {
	s.mu.Lock()
	s.started = false
	s.mu.Unlock()
}

// FetchSteps delegates to the gateway client and tracks counters.
func (s *Service) FetchSteps(ctx context.Context, rng model.QueryRange) ([]model.StepsRecord, error) {
	records, err := s.fetcher.FetchSteps(ctx, rng)

	s.mu.Lock()
	s.fetches++
	s.lastFetchAt = time.Now()
	if err != nil {
		s.fetchFailures++
	} else {
		s.recordsServed += len(records)
	}
	s.mu.Unlock()

	return records, err
}

// GetStats returns service counters for the /stats endpoint.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":        s.started,
		"fetches":        s.fetches,
		"fetch_failures": s.fetchFailures,
		"records_served": s.recordsServed,
	}
	if !s.lastFetchAt.IsZero() {
		stats["last_fetch_at"] = s.lastFetchAt.UTC().Format(time.RFC3339)
	}
	return stats
}
