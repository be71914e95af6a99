package core

import (
	"time"
)

// BookReturnedEventType is the event type identifier.
const BookReturnedEventType = "BookReturned"

// BookReturned records a copy brought back, with the fine frozen at return time.
type BookReturned struct {
	IssueID    IssueIDString
	StudentID  StudentIDString
	BookID     BookIDString
	FineAmount int
	OccurredAt OccurredAtTS
}

// BuildBookReturned creates a new BookReturned event.
func BuildBookReturned(issue Issue, fineAmount int, occurredAt time.Time) BookReturned {
	return BookReturned{
		IssueID:    issue.ID,
		StudentID:  issue.StudentID,
		BookID:     issue.BookID,
		FineAmount: fineAmount,
		OccurredAt: ToOccurredAt(occurredAt),
	}
}

// EventType returns the event type identifier.
func (e BookReturned) EventType() string {
	return BookReturnedEventType
}

// HasOccurredAt returns when this event occurred.
func (e BookReturned) HasOccurredAt() time.Time {
	return e.OccurredAt
}
