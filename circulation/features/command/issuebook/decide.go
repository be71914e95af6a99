package issuebook

import (
	"github.com/campusops/library-circulation/circulation/core"
)

const (
	failureReasonBookNotFound  = "Book not found"
	failureReasonNoCopies      = "No copies available"
	failureReasonAlreadyIssued = "Book already issued to this student"
)

// State holds the facts of the ledger that the issue decision depends on.
type State struct {
	BookInCatalog         bool
	AvailableCopies       int
	StudentHoldsOpenIssue bool                     // an issued or overdue loan of this book to this student
	ActiveReservationID   core.ReservationIDString // the student's active reservation on this book, if any
	Policy                core.Policy
}

// Decide implements the business logic to determine whether a book copy should be issued to a student.
// This is a pure function. It takes the current state and a command and returns the event to apply.
//
// Business Rules:
//
//	GIVEN: A book with BookID and a student with StudentID
//	WHEN: IssueBook command is received
//	THEN: BookIssued event is generated, due after the loan period
//	ERROR: ErrNotFound if the book is not in the catalog
//	ERROR: ErrDuplicateIssue if the student already holds an open issue of this book
//	ERROR: ErrUnavailable if no copy is on the shelf
//
// The duplicate rule goes first: a student asking again for the copy they took last gets
// ErrDuplicateIssue, not ErrUnavailable.
//
//	FULFILLMENT: the student's active reservation on the book is fulfilled by the issue
func Decide(s State, command Command) core.DecisionResult {
	if !s.BookInCatalog {
		return core.ErrorDecision(core.Refuse(core.ErrNotFound, failureReasonBookNotFound))
	}

	if s.StudentHoldsOpenIssue {
		return core.ErrorDecision(core.Refuse(core.ErrDuplicateIssue, failureReasonAlreadyIssued))
	}

	if s.AvailableCopies <= 0 {
		return core.ErrorDecision(core.Refuse(core.ErrUnavailable, failureReasonNoCopies))
	}

	return core.SuccessDecision(
		core.BuildBookIssued(
			command.IssueID,
			command.StudentID,
			command.BookID,
			command.OccurredAt.Add(s.Policy.LoanPeriod),
			s.ActiveReservationID,
			command.OccurredAt))
}
