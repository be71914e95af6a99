// Package ledger is the circulation desk: the single owner of the catalog, the issues and the
// reservations.
//
// Every mutation is decided by a pure function from the features packages, optionally appended
// to a journal with an optimistic concurrency check and then applied to the in-memory
// collections. One mutex guards all three collections, so the at-most-one-open-issue and the
// queue-position rules hold under concurrent callers. When the journal reports a concurrency
// conflict, the ledger reloads its state from the journal and decides again.
//
// Overdue status, fines and reservation expiry are not stored as events. Reconcile derives them
// from the clock, and the ledger runs it before every status-dependent decision or listing.
package ledger
