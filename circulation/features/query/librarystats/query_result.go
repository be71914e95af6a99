package librarystats

// Stats is the dashboard of the circulation desk.
type Stats struct {
	TotalBooks         int // sum of total copies
	AvailableBooks     int // sum of available copies
	IssuedBooks        int // TotalBooks - AvailableBooks
	ActiveReservations int
	ActiveIssues       int // issued or overdue
	OverdueIssues      int
}
