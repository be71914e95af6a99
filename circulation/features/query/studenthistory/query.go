package studenthistory

import (
	"github.com/campusops/library-circulation/circulation/core"
)

// Query selects the student whose history is shown.
type Query struct {
	StudentID core.StudentIDString
}

// BuildQuery creates a new Query.
func BuildQuery(studentID core.StudentIDString) Query {
	return Query{StudentID: studentID}
}
