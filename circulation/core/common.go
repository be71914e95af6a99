package core

import (
	"time"
)

// BookIDString is a catalog key chosen by the library.
type BookIDString = string

// StudentIDString is the student identity handed in by the caller.
type StudentIDString = string

// IssueIDString identifies an Issue.
type IssueIDString = string

// ReservationIDString identifies a Reservation.
type ReservationIDString = string

// OccurredAtTS is the time a domain event occurred.
type OccurredAtTS = time.Time

// ToOccurredAt normalizes t to UTC with microsecond precision, which survives a PostgreSQL round trip.
func ToOccurredAt(t time.Time) OccurredAtTS {
	return t.UTC().Truncate(time.Microsecond)
}
