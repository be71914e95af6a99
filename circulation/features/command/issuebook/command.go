package issuebook

import (
	"time"

	"github.com/campusops/library-circulation/circulation/core"
)

// Command represents the intent to hand one copy of a book to a student.
// IssueID is generated by the caller so that a retried decision keeps the same identity.
type Command struct {
	IssueID    core.IssueIDString
	StudentID  core.StudentIDString
	BookID     core.BookIDString
	OccurredAt core.OccurredAtTS
}

// BuildCommand creates a new Command with the provided parameters.
func BuildCommand(issueID core.IssueIDString, studentID core.StudentIDString, bookID core.BookIDString, occurredAt time.Time) Command {
	return Command{
		IssueID:    issueID,
		StudentID:  studentID,
		BookID:     bookID,
		OccurredAt: core.ToOccurredAt(occurredAt),
	}
}
