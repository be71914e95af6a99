package core

import (
	"time"
)

// ReservationCancelledEventType is the event type identifier.
const ReservationCancelledEventType = "ReservationCancelled"

// ReservationCancelled records a student withdrawing an active reservation.
type ReservationCancelled struct {
	ReservationID ReservationIDString
	StudentID     StudentIDString
	BookID        BookIDString
	OccurredAt    OccurredAtTS
}

// BuildReservationCancelled creates a new ReservationCancelled event.
func BuildReservationCancelled(reservation Reservation, occurredAt time.Time) ReservationCancelled {
	return ReservationCancelled{
		ReservationID: reservation.ID,
		StudentID:     reservation.StudentID,
		BookID:        reservation.BookID,
		OccurredAt:    ToOccurredAt(occurredAt),
	}
}

// EventType returns the event type identifier.
func (e ReservationCancelled) EventType() string {
	return ReservationCancelledEventType
}

// HasOccurredAt returns when this event occurred.
func (e ReservationCancelled) HasOccurredAt() time.Time {
	return e.OccurredAt
}
