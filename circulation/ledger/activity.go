package ledger

import (
	"context"
	"errors"
	"time"

	"github.com/campusops/library-circulation/circulation/core"
	"github.com/campusops/library-circulation/circulation/shell"
	"github.com/campusops/library-circulation/journal"
)

// ErrNoJournal is returned by reads which need the journal when the ledger runs without one.
var ErrNoJournal = errors.New("ledger has no journal")

// ActivityEntry is one journaled event together with the metadata of the request that wrote it.
type ActivityEntry struct {
	Event    core.DomainEvent
	Metadata shell.EventMetadata
}

// GetBookActivity reads the journaled events of one book, oldest first. A zero from or until
// leaves that side of the time range open.
//
// The ledger lock is only held for the catalog lookup; the journal read runs outside of it.
func (l *Ledger) GetBookActivity(
	ctx context.Context,
	bookID core.BookIDString,
	from time.Time,
	until time.Time,
) ([]ActivityEntry, error) {

	ctx, finish := l.observe(ctx, operationGetBookActivity)

	if l.journal == nil {
		finish(ErrNoJournal)

		return nil, ErrNoJournal
	}

	l.mu.Lock()
	_, known := l.state.book(bookID)
	l.mu.Unlock()

	if !known {
		err := core.Refuse(core.ErrNotFound, failureReasonBookNotFound)
		finish(err)

		return nil, err
	}

	storableEvents, _, err := l.journal.Query(ctx, bookActivityFilter(bookID, from, until))
	if err != nil {
		finish(err)

		return nil, err
	}

	entries, err := activityEntriesFrom(storableEvents)
	finish(err)

	return entries, err
}

func bookActivityFilter(bookID core.BookIDString, from time.Time, until time.Time) journal.Filter {
	eventTypes := core.AllEventTypes()

	return journal.BuildFilter().
		AnyEventTypeOf(eventTypes[0], eventTypes[1:]...).
		AndAnyPredicateOf(journal.P(core.BookIDPayloadKey, bookID)).
		OccurredFrom(from).
		OccurredUntil(until).
		Finalize()
}

func activityEntriesFrom(storableEvents journal.StorableEvents) ([]ActivityEntry, error) {
	entries := make([]ActivityEntry, 0, len(storableEvents))

	for _, storableEvent := range storableEvents {
		event, err := shell.DomainEventFrom(storableEvent)
		if err != nil {
			return nil, err
		}

		metadata, err := shell.EventMetadataFrom(storableEvent)
		if err != nil {
			return nil, err
		}

		entries = append(entries, ActivityEntry{Event: event, Metadata: metadata})
	}

	return entries, nil
}
