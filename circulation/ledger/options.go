package ledger

import (
	"context"
	"errors"
	"time"

	"github.com/campusops/library-circulation/circulation/core"
	"github.com/campusops/library-circulation/circulation/shell"
	"github.com/campusops/library-circulation/journal"
)

var (
	ErrNilClock       = errors.New("clock must not be nil")
	ErrNilIDGenerator = errors.New("id generator must not be nil")
	ErrNilJournal     = errors.New("journal must not be nil")
	ErrInvalidPolicy  = errors.New("policy periods, renewals and fines must be positive")
)

// Journal is the append-only event log the ledger records to and restores from.
// Both journal.MemoryJournal and postgresjournal.Journal satisfy it.
type Journal interface {
	Query(ctx context.Context, filter journal.Filter) (journal.StorableEvents, journal.MaxSequenceNumberUint, error)
	Append(
		ctx context.Context,
		filter journal.Filter,
		expectedMaxSequenceNumber journal.MaxSequenceNumberUint,
		event journal.StorableEvent,
		additionalEvents ...journal.StorableEvent,
	) (journal.MaxSequenceNumberUint, error)
}

// Option configures a Ledger.
type Option func(*Ledger) error

// WithClock replaces time.Now as the source of "now".
func WithClock(clock func() time.Time) Option {
	return func(l *Ledger) error {
		if clock == nil {
			return ErrNilClock
		}

		l.clock = clock

		return nil
	}
}

// WithIDGenerator replaces the random UUID generator used for issue and reservation ids.
func WithIDGenerator(newID func() string) Option {
	return func(l *Ledger) error {
		if newID == nil {
			return ErrNilIDGenerator
		}

		l.newID = newID

		return nil
	}
}

// WithPolicy overrides core.DefaultPolicy.
func WithPolicy(policy core.Policy) Option {
	return func(l *Ledger) error {
		if policy.LoanPeriod <= 0 || policy.ReservationHoldPeriod <= 0 || policy.MaxRenewals < 0 || policy.FinePerDay < 0 {
			return ErrInvalidPolicy
		}

		l.policy = policy

		return nil
	}
}

// WithJournal records every event to j before applying it.
// Call Restore after construction to load what j already holds.
func WithJournal(j Journal) Option {
	return func(l *Ledger) error {
		if j == nil {
			return ErrNilJournal
		}

		l.journal = j

		return nil
	}
}

// WithLogger sets the logger. If it also implements journal.ContextualLogger, the context-aware
// methods are preferred.
func WithLogger(logger journal.Logger) Option {
	return func(l *Ledger) error {
		l.logger = logger

		if contextual, ok := logger.(journal.ContextualLogger); ok {
			l.contextualLogger = contextual
		}

		return nil
	}
}

// WithMetrics sets the collector for operation durations and counts.
func WithMetrics(collector journal.MetricsCollector) Option {
	return func(l *Ledger) error {
		l.metricsCollector = collector

		return nil
	}
}

// WithTracing opens one span per ledger operation.
func WithTracing(collector journal.TracingCollector) Option {
	return func(l *Ledger) error {
		l.tracingCollector = collector

		return nil
	}
}

// WithRetryOptions tunes the conflict retry loop.
func WithRetryOptions(options ...shell.RetryOption) Option {
	return func(l *Ledger) error {
		l.retryOptions = append(l.retryOptions, options...)

		return nil
	}
}
