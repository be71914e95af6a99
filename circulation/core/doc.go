// Package core contains the domain of the college library circulation desk:
// catalog books, issues (loans), reservations (holds), the circulation policy,
// the domain events recording every state change and the business errors.
//
// Nothing in this package performs I/O. Use-case packages decide on commands with pure
// functions returning a DecisionResult; the ledger applies the resulting events.
package core
