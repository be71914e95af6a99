package cancelreservation

import (
	"time"

	"github.com/campusops/library-circulation/circulation/core"
)

// Command represents the intent to withdraw a reservation.
type Command struct {
	ReservationID core.ReservationIDString
	OccurredAt    core.OccurredAtTS
}

// BuildCommand creates a new Command with the provided parameters.
func BuildCommand(reservationID core.ReservationIDString, occurredAt time.Time) Command {
	return Command{
		ReservationID: reservationID,
		OccurredAt:    core.ToOccurredAt(occurredAt),
	}
}
