package core

import (
	"time"
)

// LoanRenewedEventType is the event type identifier.
const LoanRenewedEventType = "LoanRenewed"

// LoanRenewed records an extended due date.
type LoanRenewed struct {
	IssueID      IssueIDString
	StudentID    StudentIDString
	BookID       BookIDString
	DueDate      time.Time
	RenewalCount int
	OccurredAt   OccurredAtTS
}

// BuildLoanRenewed creates a new LoanRenewed event.
func BuildLoanRenewed(issue Issue, dueDate time.Time, renewalCount int, occurredAt time.Time) LoanRenewed {
	return LoanRenewed{
		IssueID:      issue.ID,
		StudentID:    issue.StudentID,
		BookID:       issue.BookID,
		DueDate:      ToOccurredAt(dueDate),
		RenewalCount: renewalCount,
		OccurredAt:   ToOccurredAt(occurredAt),
	}
}

// EventType returns the event type identifier.
func (e LoanRenewed) EventType() string {
	return LoanRenewedEventType
}

// HasOccurredAt returns when this event occurred.
func (e LoanRenewed) HasOccurredAt() time.Time {
	return e.OccurredAt
}
