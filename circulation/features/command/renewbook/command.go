package renewbook

import (
	"time"

	"github.com/campusops/library-circulation/circulation/core"
)

// Command represents the intent to extend the due date of an open issue.
type Command struct {
	IssueID    core.IssueIDString
	OccurredAt core.OccurredAtTS
}

// BuildCommand creates a new Command with the provided parameters.
func BuildCommand(issueID core.IssueIDString, occurredAt time.Time) Command {
	return Command{
		IssueID:    issueID,
		OccurredAt: core.ToOccurredAt(occurredAt),
	}
}
