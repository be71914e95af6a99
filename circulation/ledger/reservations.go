package ledger

import (
	"context"

	"github.com/campusops/library-circulation/circulation/core"
	"github.com/campusops/library-circulation/circulation/features/command/cancelreservation"
	"github.com/campusops/library-circulation/circulation/features/command/reservebook"
	"github.com/campusops/library-circulation/circulation/features/query/studentreservations"
)

// ReserveBook queues studentID for bookID, which must have no copy on the shelf.
func (l *Ledger) ReserveBook(ctx context.Context, studentID core.StudentIDString, bookID core.BookIDString) (core.Reservation, error) {
	reservationID := l.newID()

	return execute(ctx, l, operationReserveBook,
		func(s *state, now core.OccurredAtTS) core.DecisionResult {
			_, holds := s.activeReservationOf(studentID, bookID)

			st := reservebook.State{
				StudentHoldsActiveReservation: holds,
				ActiveReservations:            s.activeReservationCount(bookID),
				Policy:                        l.policy,
			}

			if book, ok := s.book(bookID); ok {
				st.BookInCatalog = true
				st.AvailableCopies = book.AvailableCopies
			}

			return reservebook.Decide(st, reservebook.BuildCommand(reservationID, studentID, bookID, now))
		},
		func(s *state, event core.DomainEvent) core.Reservation {
			reserved := event.(core.BookReserved)
			l.logInfo(ctx, "book reserved",
				"reservation_id", reserved.ReservationID,
				"student_id", reserved.StudentID,
				"book_id", reserved.BookID,
				"position", reserved.Position)

			reservation, _ := s.reservation(reserved.ReservationID)

			return *reservation
		})
}

// CancelReservation withdraws an active reservation. Other positions in the queue are unchanged.
func (l *Ledger) CancelReservation(ctx context.Context, reservationID core.ReservationIDString) (core.Reservation, error) {
	return execute(ctx, l, operationCancelReservation,
		func(s *state, now core.OccurredAtTS) core.DecisionResult {
			var st cancelreservation.State
			if reservation, ok := s.reservation(reservationID); ok {
				st.ReservationKnown = true
				st.Reservation = *reservation
			}

			return cancelreservation.Decide(st, cancelreservation.BuildCommand(reservationID, now))
		},
		func(s *state, event core.DomainEvent) core.Reservation {
			cancelled := event.(core.ReservationCancelled)
			l.logInfo(ctx, "reservation cancelled", "reservation_id", cancelled.ReservationID)

			reservation, _ := s.reservation(cancelled.ReservationID)

			return *reservation
		})
}

// ListStudentReservations returns the student's active and fulfilled reservations.
func (l *Ledger) ListStudentReservations(ctx context.Context, studentID core.StudentIDString) []core.Reservation {
	ctx, finish := l.observe(ctx, operationListStudentReservations)
	defer finish(nil)

	l.mu.Lock()
	defer l.mu.Unlock()

	l.reconcileLocked(ctx)

	return studentreservations.ProjectHeldReservations(l.state.reservations, studentreservations.BuildQuery(studentID)).Reservations
}
