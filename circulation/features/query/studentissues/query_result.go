package studentissues

import (
	"github.com/campusops/library-circulation/circulation/core"
)

// OpenIssues are the issued or overdue loans of one student, in issue order.
type OpenIssues struct {
	StudentID core.StudentIDString
	Issues    []core.Issue
	Count     int
}
