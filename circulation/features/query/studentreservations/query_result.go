package studentreservations

import (
	"github.com/campusops/library-circulation/circulation/core"
)

// HeldReservations are the active or fulfilled reservations of one student, in creation order.
type HeldReservations struct {
	StudentID    core.StudentIDString
	Reservations []core.Reservation
	Count        int
}
