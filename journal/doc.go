// Package journal provides the append-only event journal used by the circulation ledger.
//
// The journal stores circulation events as StorableEvent DTOs, which are built on scalars so that
// the journal stays agnostic of the domain event implementation. Events are queried with a Filter
// and appended conditionally on the max sequence number observed by the writer:
//
//	filter := journal.BuildFilter().
//		AnyEventTypeOf(core.BookIssuedEventType, core.BookReturnedEventType).
//		AndAnyPredicateOf(journal.P("BookID", bookID)).
//		Finalize()
//
//	events, maxSeq, err := j.Query(ctx, filter)
//	if err != nil {
//		// handle error
//	}
//
//	newMaxSeq, err := j.Append(ctx, filter, maxSeq, event)
//
// If another writer appended a matching event in between, Append fails with ErrConcurrencyConflict.
//
// Two implementations exist: MemoryJournal in this package and the PostgreSQL journal in
// package postgresjournal.
package journal
