package reservebook

import (
	"time"

	"github.com/campusops/library-circulation/circulation/core"
)

// Command represents the intent to join the hold queue of a book.
type Command struct {
	ReservationID core.ReservationIDString
	StudentID     core.StudentIDString
	BookID        core.BookIDString
	OccurredAt    core.OccurredAtTS
}

// BuildCommand creates a new Command with the provided parameters.
func BuildCommand(
	reservationID core.ReservationIDString,
	studentID core.StudentIDString,
	bookID core.BookIDString,
	occurredAt time.Time,
) Command {
	return Command{
		ReservationID: reservationID,
		StudentID:     studentID,
		BookID:        bookID,
		OccurredAt:    core.ToOccurredAt(occurredAt),
	}
}
