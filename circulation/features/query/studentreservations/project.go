package studentreservations

import (
	"github.com/campusops/library-circulation/circulation/core"
)

// ProjectHeldReservations keeps the queried student's reservations that are active or fulfilled.
func ProjectHeldReservations(reservations []core.Reservation, query Query) HeldReservations {
	held := make([]core.Reservation, 0)

	for _, reservation := range reservations {
		if reservation.StudentID != query.StudentID {
			continue
		}

		switch reservation.Status {
		case core.ReservationStatusActive, core.ReservationStatusFulfilled:
			held = append(held, reservation)
		case core.ReservationStatusCancelled:
		}
	}

	return HeldReservations{
		StudentID:    query.StudentID,
		Reservations: held,
		Count:        len(held),
	}
}
