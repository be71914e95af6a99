// Package guardedjournal wraps a journal in a circuit breaker so that a failing database makes
// ledger operations fail fast instead of piling up on timeouts.
//
// Concurrency conflicts and canceled contexts are normal outcomes and never trip the breaker.
package guardedjournal

import (
	"context"
	"errors"
	"time"

	"github.com/sony/gobreaker"

	"github.com/campusops/library-circulation/journal"
)

const (
	defaultName                   = "circulation-journal"
	defaultMaxConsecutiveFailures = 5
	defaultOpenTimeout            = 10 * time.Second
	defaultHalfOpenRequests       = 1
)

var (
	// ErrJournalUnavailable is returned while the breaker is open.
	ErrJournalUnavailable = errors.New("journal unavailable")

	ErrNilJournal              = errors.New("journal must not be nil")
	ErrInvalidFailureThreshold = errors.New("consecutive failure threshold must be positive")
	ErrNegativeOpenTimeout     = errors.New("open timeout must not be negative")
)

// Journal is the part of a journal the guard decorates.
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

type settings struct {
	name                   string
	maxConsecutiveFailures uint32
	openTimeout            time.Duration
	logger                 journal.Logger
}

// Option configures the guard.
type Option func(*settings) error

// WithName names the breaker in logs.
func WithName(name string) Option {
	return func(s *settings) error {
		s.name = name

		return nil
	}
}

// WithMaxConsecutiveFailures sets how many failures in a row open the breaker.
func WithMaxConsecutiveFailures(n uint32) Option {
	return func(s *settings) error {
		if n == 0 {
			return ErrInvalidFailureThreshold
		}

		s.maxConsecutiveFailures = n

		return nil
	}
}

// WithOpenTimeout sets how long the breaker stays open before letting a probe through.
func WithOpenTimeout(d time.Duration) Option {
	return func(s *settings) error {
		if d < 0 {
			return ErrNegativeOpenTimeout
		}

		s.openTimeout = d

		return nil
	}
}

// WithLogger logs breaker state changes.
func WithLogger(logger journal.Logger) Option {
	return func(s *settings) error {
		s.logger = logger

		return nil
	}
}

// GuardedJournal is a Journal behind a gobreaker.CircuitBreaker.
type GuardedJournal struct {
	next    Journal
	breaker *gobreaker.CircuitBreaker
}

// New wraps next.
func New(next Journal, options ...Option) (*GuardedJournal, error) {
	if next == nil {
		return nil, ErrNilJournal
	}

	s := &settings{
		name:                   defaultName,
		maxConsecutiveFailures: defaultMaxConsecutiveFailures,
		openTimeout:            defaultOpenTimeout,
	}

	for _, option := range options {
		if err := option(s); err != nil {
			return nil, err
		}
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        s.name,
		MaxRequests: defaultHalfOpenRequests,
		Timeout:     s.openTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= s.maxConsecutiveFailures
		},
		IsSuccessful: isSuccessful,
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			if s.logger != nil {
				s.logger.Warn("journal circuit breaker changed state", "breaker", name, "from", from.String(), "to", to.String())
			}
		},
	})

	return &GuardedJournal{next: next, breaker: breaker}, nil
}

// State returns "closed", "half-open" or "open".
func (g *GuardedJournal) State() string {
	return g.breaker.State().String()
}

type queryResult struct {
	events      journal.StorableEvents
	maxSequence journal.MaxSequenceNumberUint
}

// Query delegates to the wrapped journal unless the breaker is open.
func (g *GuardedJournal) Query(ctx context.Context, filter journal.Filter) (journal.StorableEvents, journal.MaxSequenceNumberUint, error) {
	result, err := g.breaker.Execute(func() (interface{}, error) {
		events, maxSequence, err := g.next.Query(ctx, filter)

		return queryResult{events: events, maxSequence: maxSequence}, err
	})
	if err != nil {
		return nil, 0, translate(err)
	}

	r, _ := result.(queryResult)

	return r.events, r.maxSequence, nil
}

// Append delegates to the wrapped journal unless the breaker is open.
func (g *GuardedJournal) Append(
	ctx context.Context,
	filter journal.Filter,
	expectedMaxSequenceNumber journal.MaxSequenceNumberUint,
	event journal.StorableEvent,
	additionalEvents ...journal.StorableEvent,
) (journal.MaxSequenceNumberUint, error) {
	result, err := g.breaker.Execute(func() (interface{}, error) {
		return g.next.Append(ctx, filter, expectedMaxSequenceNumber, event, additionalEvents...)
	})
	if err != nil {
		return 0, translate(err)
	}

	sequence, _ := result.(journal.MaxSequenceNumberUint)

	return sequence, nil
}

func isSuccessful(err error) bool {
	return err == nil ||
		errors.Is(err, journal.ErrConcurrencyConflict) ||
		errors.Is(err, context.Canceled)
}

func translate(err error) error {
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return errors.Join(ErrJournalUnavailable, err)
	}

	return err
}
