package wire

import (
	"time"

	"github.com/campusops/library-circulation/circulation/core"
	"github.com/campusops/library-circulation/circulation/features/query/librarystats"
	"github.com/campusops/library-circulation/circulation/features/query/studenthistory"
	"github.com/campusops/library-circulation/circulation/ledger"
)

type Book struct {
	ID              string `json:"id"`
	Title           string `json:"title"`
	Author          string `json:"author"`
	ISBN            string `json:"isbn"`
	Subject         string `json:"subject"`
	TotalCopies     int    `json:"totalCopies"`
	AvailableCopies int    `json:"availableCopies"`
}

type Issue struct {
	ID           string     `json:"id"`
	StudentID    string     `json:"studentId"`
	BookID       string     `json:"bookId"`
	IssueDate    time.Time  `json:"issueDate"`
	DueDate      time.Time  `json:"dueDate"`
	ReturnDate   *time.Time `json:"returnDate"`
	Status       string     `json:"status"`
	RenewalCount int        `json:"renewalCount"`
	FineAmount   int        `json:"fineAmount"`
}

type Reservation struct {
	ID              string    `json:"id"`
	StudentID       string    `json:"studentId"`
	BookID          string    `json:"bookId"`
	ReservationDate time.Time `json:"reservationDate"`
	ExpiryDate      time.Time `json:"expiryDate"`
	Status          string    `json:"status"`
	Position        int       `json:"position"`
}

type Stats struct {
	TotalBooks         int `json:"totalBooks"`
	AvailableBooks     int `json:"availableBooks"`
	IssuedBooks        int `json:"issuedBooks"`
	ActiveReservations int `json:"activeReservations"`
	ActiveIssues       int `json:"activeIssues"`
	OverdueIssues      int `json:"overdueIssues"`
}

// ActivityEntry is one journaled event of a book; Event holds the event payload as written.
type ActivityEntry struct {
	EventType     string    `json:"eventType"`
	OccurredAt    time.Time `json:"occurredAt"`
	Operation     string    `json:"operation"`
	CorrelationID string    `json:"correlationId"`
	Event         any       `json:"event"`
}

type History struct {
	Issues       []Issue       `json:"issues"`
	Reservations []Reservation `json:"reservations"`
}

// AddBookRequest is the body of POST /books.
type AddBookRequest struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Author      string `json:"author"`
	ISBN        string `json:"isbn"`
	Subject     string `json:"subject"`
	TotalCopies int    `json:"totalCopies"`
}

// LoanRequest is the body of POST /issue and POST /reserve.
type LoanRequest struct {
	StudentID string `json:"studentId"`
	BookID    string `json:"bookId"`
}

// IssueRequest is the body of POST /return and POST /renew.
type IssueRequest struct {
	IssueID string `json:"issueId"`
}

type ReturnResponse struct {
	Message string `json:"message"`
	Issue   Issue  `json:"issue"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type HealthResponse struct {
	Status string `json:"status"`
}

func BookFrom(b core.Book) Book {
	return Book{
		ID:              b.ID,
		Title:           b.Title,
		Author:          b.Author,
		ISBN:            b.ISBN,
		Subject:         b.Subject,
		TotalCopies:     b.TotalCopies,
		AvailableCopies: b.AvailableCopies,
	}
}

func BooksFrom(books []core.Book) []Book {
	out := make([]Book, 0, len(books))
	for _, b := range books {
		out = append(out, BookFrom(b))
	}

	return out
}

func IssueFrom(i core.Issue) Issue {
	return Issue{
		ID:           i.ID,
		StudentID:    i.StudentID,
		BookID:       i.BookID,
		IssueDate:    i.IssueDate,
		DueDate:      i.DueDate,
		ReturnDate:   i.ReturnDate,
		Status:       string(i.Status),
		RenewalCount: i.RenewalCount,
		FineAmount:   i.FineAmount,
	}
}

func IssuesFrom(issues []core.Issue) []Issue {
	out := make([]Issue, 0, len(issues))
	for _, i := range issues {
		out = append(out, IssueFrom(i))
	}

	return out
}

func ReservationFrom(r core.Reservation) Reservation {
	return Reservation{
		ID:              r.ID,
		StudentID:       r.StudentID,
		BookID:          r.BookID,
		ReservationDate: r.ReservationDate,
		ExpiryDate:      r.ExpiryDate,
		Status:          string(r.Status),
		Position:        r.Position,
	}
}

func ReservationsFrom(reservations []core.Reservation) []Reservation {
	out := make([]Reservation, 0, len(reservations))
	for _, r := range reservations {
		out = append(out, ReservationFrom(r))
	}

	return out
}

func StatsFrom(s librarystats.Stats) Stats {
	return Stats{
		TotalBooks:         s.TotalBooks,
		AvailableBooks:     s.AvailableBooks,
		IssuedBooks:        s.IssuedBooks,
		ActiveReservations: s.ActiveReservations,
		ActiveIssues:       s.ActiveIssues,
		OverdueIssues:      s.OverdueIssues,
	}
}

func HistoryFrom(h studenthistory.History) History {
	return History{
		Issues:       IssuesFrom(h.Issues),
		Reservations: ReservationsFrom(h.Reservations),
	}
}

func ActivityFrom(entries []ledger.ActivityEntry) []ActivityEntry {
	out := make([]ActivityEntry, 0, len(entries))
	for _, e := range entries {
		out = append(out, ActivityEntry{
			EventType:     e.Event.EventType(),
			OccurredAt:    e.Event.HasOccurredAt(),
			Operation:     e.Metadata.Operation,
			CorrelationID: e.Metadata.CorrelationID,
			Event:         e.Event,
		})
	}

	return out
}
