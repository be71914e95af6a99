package ledger

import (
	"context"
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/campusops/library-circulation/circulation/core"
	"github.com/campusops/library-circulation/circulation/shell"
	"github.com/campusops/library-circulation/journal"
)

// ErrRestoreFailed is returned when the ledger can not rebuild its state from the journal.
var ErrRestoreFailed = errors.New("restoring ledger from journal failed")

// Ledger owns all circulation state. It is safe for concurrent use.
type Ledger struct {
	mu       sync.Mutex
	state    *state
	journal  Journal
	stream   journal.Filter
	sequence journal.MaxSequenceNumberUint

	policy core.Policy
	clock  func() time.Time
	newID  func() string

	logger           journal.Logger
	contextualLogger journal.ContextualLogger
	metricsCollector journal.MetricsCollector
	tracingCollector journal.TracingCollector
	retryOptions     []shell.RetryOption
}

// NewLedger creates an empty Ledger.
func NewLedger(options ...Option) (*Ledger, error) {
	l := &Ledger{
		state:  newState(),
		stream: circulationStream(),
		policy: core.DefaultPolicy(),
		clock:  time.Now,
		newID:  uuid.NewString,
	}

	for _, option := range options {
		if err := option(l); err != nil {
			return nil, err
		}
	}

	return l, nil
}

// circulationStream matches every circulation event; the whole ledger is one consistency boundary.
func circulationStream() journal.Filter {
	eventTypes := core.AllEventTypes()

	return journal.BuildFilter().
		AnyEventTypeOf(eventTypes[0], eventTypes[1:]...).
		Finalize()
}

// Policy returns the circulation rules in effect.
func (l *Ledger) Policy() core.Policy {
	return l.policy
}

// Restore replaces the in-memory state with the replayed journal. Without a journal it is a no-op.
func (l *Ledger) Restore(ctx context.Context) error {
	if l.journal == nil {
		return nil
	}

	ctx, finish := l.observe(ctx, operationRestore)

	l.mu.Lock()
	defer l.mu.Unlock()

	err := l.restoreLocked(ctx)
	finish(err)

	if err == nil {
		l.logInfo(ctx, "ledger restored from journal",
			"books", len(l.state.books),
			"issues", len(l.state.issues),
			"reservations", len(l.state.reservations),
			"sequence", l.sequence)
	}

	return err
}

func (l *Ledger) restoreLocked(ctx context.Context) error {
	storableEvents, maxSequence, err := l.journal.Query(ctx, l.stream)
	if err != nil {
		return errors.Join(ErrRestoreFailed, err)
	}

	events, err := shell.DomainEventsFrom(storableEvents)
	if err != nil {
		return errors.Join(ErrRestoreFailed, err)
	}

	restored := newState()
	for _, event := range events {
		if err := restored.apply(event); err != nil {
			return errors.Join(ErrRestoreFailed, err)
		}
	}

	restored.reconcile(l.now(), l.policy)

	l.state = restored
	l.sequence = maxSequence

	return nil
}

// execute runs one command under the ledger lock: reconcile, decide, record, apply.
// A journal conflict reloads the state and decides again. read runs under the same lock
// after a successful apply and produces the operation's return value.
func execute[T any](
	ctx context.Context,
	l *Ledger,
	operation string,
	decide func(s *state, now time.Time) core.DecisionResult,
	read func(s *state, event core.DomainEvent) T,
) (T, error) {
	var result T

	ctx, finish := l.observe(ctx, operation)

	l.mu.Lock()
	defer l.mu.Unlock()

	correlationID := uuid.New()
	resync := false

	retryOptions := l.retryOptions
	if l.metricsCollector != nil {
		retryOptions = slices.Concat(retryOptions, []shell.RetryOption{shell.WithRetryMetrics(l.metricsCollector, operation)})
	}

	meta, err := shell.RetryWithExponentialBackoff(ctx, func(ctx context.Context) error {
		if resync {
			if err := l.restoreLocked(ctx); err != nil {
				return err
			}
		}

		now := l.now()
		l.state.reconcile(now, l.policy)

		decision := decide(l.state, now)
		if err := decision.HasError(); err != nil {
			return err
		}

		if err := l.record(ctx, operation, correlationID, decision.Event); err != nil {
			resync = errors.Is(err, journal.ErrConcurrencyConflict)

			if resync {
				l.logWarn(ctx, "journal conflict, reloading ledger", "operation", operation)
			}

			return err
		}

		if err := l.state.apply(decision.Event); err != nil {
			return err
		}

		result = read(l.state, decision.Event)

		return nil
	}, retryOptions...)

	if meta.Attempts > 1 {
		l.logDebug(ctx, "operation retried", "operation", operation, "attempts", meta.Attempts, "total_delay", meta.TotalDelay)
	}

	finish(err)

	return result, err
}

func (l *Ledger) record(ctx context.Context, operation string, correlationID uuid.UUID, event core.DomainEvent) error {
	if l.journal == nil {
		return nil
	}

	metadata := shell.BuildEventMetadata(operation, correlationID, correlationID)

	storableEvent, err := shell.StorableEventFrom(event, metadata)
	if err != nil {
		return err
	}

	sequence, err := l.journal.Append(ctx, l.stream, l.sequence, storableEvent)
	if err != nil {
		return err
	}

	l.sequence = sequence

	return nil
}

func (l *Ledger) now() time.Time {
	return core.ToOccurredAt(l.clock())
}
