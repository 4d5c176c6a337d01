// Package ledger implements the shared-expense ledger state machine:
// participant directory, group registry, balance engine, and activity
// journal, composed into one serialized service over a key-value store.
//
// # Invariant
//
// For every group, the balances of its members sum to zero at all
// times. Expense splitting allocates integer remainders exactly and
// settlement transfers are symmetric, so no operation can break this.
//
// # Concurrency
//
// A single RWMutex serializes mutations; reads run concurrently with
// each other and never observe a partially applied mutation. Every
// precondition is checked before the first write, so a rejected
// operation leaves no trace.
package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/splitpot/splitpot/internal/events"
	"github.com/splitpot/splitpot/internal/metrics"
	"github.com/splitpot/splitpot/internal/store"
)

// Service is the ledger state machine. All state lives in the KV store;
// the service itself holds only collaborators and the mutation lock.
type Service struct {
	mu      sync.RWMutex
	kv      store.KV
	events  events.Publisher
	metrics *metrics.Metrics
	now     func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithPublisher sets the domain-event publisher.
func WithPublisher(p events.Publisher) Option {
	return func(s *Service) { s.events = p }
}

// WithMetrics sets the Prometheus instrumentation handle.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithClock overrides the timestamp source. Tests use this to pin
// expense and activity timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// New creates a ledger service over kv. By default events go to slog
// and no metrics are recorded.
func New(kv store.KV, opts ...Option) *Service {
	s := &Service{
		kv:     kv,
		events: events.LogPublisher{},
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// timestamp returns the current Unix time for expense and activity records.
func (s *Service) timestamp() int64 {
	return s.now().Unix()
}

// getJSON loads and decodes the record at key. It reports ok=false when
// the key is absent, leaving v untouched so callers keep their default.
func (s *Service) getJSON(ctx context.Context, key store.Key, v any) (bool, error) {
	raw, ok, err := s.kv.Get(ctx, key)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return false, fmt.Errorf("failed to decode %s: %w", key, err)
	}
	return true, nil
}

// setJSON encodes and stores v at key.
func (s *Service) setJSON(ctx context.Context, key store.Key, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	return s.kv.Set(ctx, key, raw)
}

// publish emits a domain event if a publisher is wired in.
func (s *Service) publish(ctx context.Context, event events.Event) {
	if s.events != nil {
		s.events.Publish(ctx, event)
	}
}
