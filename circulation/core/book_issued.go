package core

import (
	"time"
)

// BookIssuedEventType is the event type identifier.
const BookIssuedEventType = "BookIssued"

// BookIssued records a copy handed to a student.
//
// FulfilledReservationID names the student's active reservation on the book that this issue
// fulfills, if there was one.
type BookIssued struct {
	IssueID                IssueIDString
	StudentID              StudentIDString
	BookID                 BookIDString
	DueDate                time.Time
	FulfilledReservationID ReservationIDString `json:",omitempty"`
	OccurredAt             OccurredAtTS
}

// BuildBookIssued creates a new BookIssued event.
func BuildBookIssued(
	issueID IssueIDString,
	studentID StudentIDString,
	bookID BookIDString,
	dueDate time.Time,
	fulfilledReservationID ReservationIDString,
	occurredAt time.Time,
) BookIssued {
	return BookIssued{
		IssueID:                issueID,
		StudentID:              studentID,
		BookID:                 bookID,
		DueDate:                ToOccurredAt(dueDate),
		FulfilledReservationID: fulfilledReservationID,
		OccurredAt:             ToOccurredAt(occurredAt),
	}
}

// EventType returns the event type identifier.
func (e BookIssued) EventType() string {
	return BookIssuedEventType
}

// HasOccurredAt returns when this event occurred.
func (e BookIssued) HasOccurredAt() time.Time {
	return e.OccurredAt
}
