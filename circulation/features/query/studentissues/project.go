package studentissues

import (
	"github.com/campusops/library-circulation/circulation/core"
)

// ProjectOpenIssues keeps the issues of the queried student whose status is issued or overdue.
// Callers reconcile overdue status before projecting.
func ProjectOpenIssues(issues []core.Issue, query Query) OpenIssues {
	open := make([]core.Issue, 0)

	for _, issue := range issues {
		if issue.StudentID == query.StudentID && issue.Status.IsOpen() {
			open = append(open, issue)
		}
	}

	return OpenIssues{
		StudentID: query.StudentID,
		Issues:    open,
		Count:     len(open),
	}
}
