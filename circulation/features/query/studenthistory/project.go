package studenthistory

import (
	"github.com/campusops/library-circulation/circulation/core"
)

// ProjectHistory collects every issue and reservation of the queried student.
func ProjectHistory(issues []core.Issue, reservations []core.Reservation, query Query) History {
	history := History{
		StudentID:    query.StudentID,
		Issues:       make([]core.Issue, 0),
		Reservations: make([]core.Reservation, 0),
	}

	for _, issue := range issues {
		if issue.StudentID == query.StudentID {
			history.Issues = append(history.Issues, issue)
		}
	}

	for _, reservation := range reservations {
		if reservation.StudentID == query.StudentID {
			history.Reservations = append(history.Reservations, reservation)
		}
	}

	return history
}
