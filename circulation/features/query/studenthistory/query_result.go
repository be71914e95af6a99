package studenthistory

import (
	"github.com/campusops/library-circulation/circulation/core"
)

// History holds all issues and reservations of a student regardless of status, in creation order.
type History struct {
	StudentID    core.StudentIDString
	Issues       []core.Issue
	Reservations []core.Reservation
}
