package librarystats

import (
	"github.com/campusops/library-circulation/circulation/core"
)

// ProjectStats aggregates the ledger state without changing it.
//
// An issue counts as overdue when its status says so or when it is still issued with a due date
// before query.Now, so the figure is right even when the ledger has not reconciled lately. The same
// clock rule drops active reservations whose expiry date has passed.
func ProjectStats(catalog []core.Book, issues []core.Issue, reservations []core.Reservation, query Query) Stats {
	var stats Stats

	for _, book := range catalog {
		stats.TotalBooks += book.TotalCopies
		stats.AvailableBooks += book.AvailableCopies
		stats.IssuedBooks += book.IssuedCopies()
	}

	for _, issue := range issues {
		if !issue.Status.IsOpen() {
			continue
		}

		stats.ActiveIssues++

		if issue.Status == core.IssueStatusOverdue || issue.IsOverdueAt(query.Now) {
			stats.OverdueIssues++
		}
	}

	for _, reservation := range reservations {
		if reservation.Status == core.ReservationStatusActive && !reservation.IsExpiredAt(query.Now) {
			stats.ActiveReservations++
		}
	}

	return stats
}
