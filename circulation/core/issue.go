package core

import (
	"time"
)

// IssueStatus is the lifecycle state of an Issue.
type IssueStatus string

const (
	IssueStatusIssued   IssueStatus = "issued"
	IssueStatusOverdue  IssueStatus = "overdue"
	IssueStatusReturned IssueStatus = "returned"
)

// IsOpen reports whether the loan is still out, i.e. issued or overdue.
func (s IssueStatus) IsOpen() bool {
	return s == IssueStatusIssued || s == IssueStatusOverdue
}

// Issue is a loan of one book copy to one student.
type Issue struct {
	ID           IssueIDString
	StudentID    StudentIDString
	BookID       BookIDString
	IssueDate    time.Time
	DueDate      time.Time
	Status       IssueStatus
	RenewalCount int
	FineAmount   int
	ReturnDate   *time.Time
}

// IsOverdueAt reports whether the loan is open and past its due date at now.
func (i Issue) IsOverdueAt(now time.Time) bool {
	return i.Status.IsOpen() && i.DueDate.Before(now)
}
