package reservebook

import (
	"github.com/campusops/library-circulation/circulation/core"
)

const (
	failureReasonBookNotFound    = "Book not found"
	failureReasonCopiesAvailable = "Book is available for issue"
	failureReasonAlreadyReserved = "Book already reserved by this student"
)

// State holds the facts of the ledger that the reservation decision depends on.
type State struct {
	BookInCatalog                 bool
	AvailableCopies               int
	StudentHoldsActiveReservation bool
	ActiveReservations            int // active reservations on this book, all students
	Policy                        core.Policy
}

// Decide determines whether the student may queue for the book.
//
// Business Rules:
//
//	GIVEN: A book with BookID and a student with StudentID
//	WHEN: ReserveBook command is received
//	THEN: BookReserved event is generated at the tail of the queue, expiring after the hold period
//	ERROR: ErrNotFound if the book is not in the catalog
//	ERROR: ErrAlreadyAvailable if a copy is on the shelf
//	ERROR: ErrDuplicateReservation if the student already has an active reservation on it
func Decide(s State, command Command) core.DecisionResult {
	if !s.BookInCatalog {
		return core.ErrorDecision(core.Refuse(core.ErrNotFound, failureReasonBookNotFound))
	}

	if s.AvailableCopies > 0 {
		return core.ErrorDecision(core.Refuse(core.ErrAlreadyAvailable, failureReasonCopiesAvailable))
	}

	if s.StudentHoldsActiveReservation {
		return core.ErrorDecision(core.Refuse(core.ErrDuplicateReservation, failureReasonAlreadyReserved))
	}

	return core.SuccessDecision(
		core.BuildBookReserved(
			command.ReservationID,
			command.StudentID,
			command.BookID,
			s.ActiveReservations+1,
			command.OccurredAt.Add(s.Policy.ReservationHoldPeriod),
			command.OccurredAt))
}
