package core

import (
	"time"
)

// BookReservedEventType is the event type identifier.
const BookReservedEventType = "BookReserved"

// BookReserved records a student joining the hold queue for a book.
type BookReserved struct {
	ReservationID ReservationIDString
	StudentID     StudentIDString
	BookID        BookIDString
	Position      int
	ExpiryDate    time.Time
	OccurredAt    OccurredAtTS
}

// BuildBookReserved creates a new BookReserved event.
func BuildBookReserved(
	reservationID ReservationIDString,
	studentID StudentIDString,
	bookID BookIDString,
	position int,
	expiryDate time.Time,
	occurredAt time.Time,
) BookReserved {
	return BookReserved{
		ReservationID: reservationID,
		StudentID:     studentID,
		BookID:        bookID,
		Position:      position,
		ExpiryDate:    ToOccurredAt(expiryDate),
		OccurredAt:    ToOccurredAt(occurredAt),
	}
}

// EventType returns the event type identifier.
func (e BookReserved) EventType() string {
	return BookReservedEventType
}

// HasOccurredAt returns when this event occurred.
func (e BookReserved) HasOccurredAt() time.Time {
	return e.OccurredAt
}
