package journal

import (
	"context"
	"errors"
	"slices"
	"sync"

	jsoniter "github.com/json-iterator/go"
)

var ErrDecodingPayloadFailed = errors.New("decoding payload for predicate matching failed")

type memoryRow struct {
	sequenceNumber MaxSequenceNumberUint
	event          StorableEvent
	payload        map[string]any
}

// MemoryJournal is an in-process journal with the same conditional append semantics as the
// PostgreSQL journal. It is safe for concurrent use and lets several ledgers share one stream.
type MemoryJournal struct {
	mu     sync.Mutex
	rows   []memoryRow
	logger Logger
}

// MemoryOption configures a MemoryJournal.
type MemoryOption func(*MemoryJournal)

// WithMemoryLogger sets a logger which receives one info line per append and conflict.
func WithMemoryLogger(logger Logger) MemoryOption {
	return func(mj *MemoryJournal) {
		mj.logger = logger
	}
}

// NewMemoryJournal creates an empty MemoryJournal.
func NewMemoryJournal(options ...MemoryOption) *MemoryJournal {
	mj := &MemoryJournal{}

	for _, option := range options {
		option(mj)
	}

	return mj
}

// Query returns the events matching the filter in sequence order,
// plus the max sequence number among them (0 if none match).
func (mj *MemoryJournal) Query(ctx context.Context, filter Filter) (StorableEvents, MaxSequenceNumberUint, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, errors.Join(ErrQueryingEventsFailed, err)
	}

	mj.mu.Lock()
	defer mj.mu.Unlock()

	events := make(StorableEvents, 0)
	maxSequenceNumber := mj.maxSequenceNumberMatching(filter)

	for _, row := range mj.rows {
		if filter.Matches(row.event.EventType, row.event.OccurredAt, row.payload) {
			events = append(events, row.event)
		}
	}

	return events, maxSequenceNumber, nil
}

// Append appends the events atomically if the max sequence number of the events matching the
// filter still equals expectedMaxSequenceNumber. It returns the sequence number of the last
// appended event.
func (mj *MemoryJournal) Append(
	ctx context.Context,
	filter Filter,
	expectedMaxSequenceNumber MaxSequenceNumberUint,
	event StorableEvent,
	additionalEvents ...StorableEvent,
) (MaxSequenceNumberUint, error) {

	if err := ctx.Err(); err != nil {
		return 0, errors.Join(ErrAppendingEventFailed, err)
	}

	allEvents := append(StorableEvents{event}, additionalEvents...)

	decoded := make([]map[string]any, 0, len(allEvents))
	for _, e := range allEvents {
		payload := make(map[string]any)
		if err := jsoniter.ConfigFastest.Unmarshal(e.PayloadJSON, &payload); err != nil {
			return 0, errors.Join(ErrAppendingEventFailed, ErrDecodingPayloadFailed, err)
		}
		decoded = append(decoded, payload)
	}

	mj.mu.Lock()
	defer mj.mu.Unlock()

	if current := mj.maxSequenceNumberMatching(filter); current != expectedMaxSequenceNumber {
		if mj.logger != nil {
			mj.logger.Info("memory journal: concurrency conflict detected",
				"expected_sequence", expectedMaxSequenceNumber, "current_sequence", current)
		}

		return 0, ErrConcurrencyConflict
	}

	next := MaxSequenceNumberUint(len(mj.rows))
	for i, e := range allEvents {
		next++
		mj.rows = append(mj.rows, memoryRow{sequenceNumber: next, event: e, payload: decoded[i]})
	}

	if mj.logger != nil {
		mj.logger.Info("memory journal: events appended", "event_count", len(allEvents), "sequence", next)
	}

	return next, nil
}

// Len returns the number of journaled events.
func (mj *MemoryJournal) Len() int {
	mj.mu.Lock()
	defer mj.mu.Unlock()

	return len(mj.rows)
}

func (mj *MemoryJournal) maxSequenceNumberMatching(filter Filter) MaxSequenceNumberUint {
	for _, row := range slices.Backward(mj.rows) {
		if filter.Matches(row.event.EventType, row.event.OccurredAt, row.payload) {
			return row.sequenceNumber
		}
	}

	return 0
}
