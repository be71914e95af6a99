package ledger

import (
	"errors"
	"fmt"
	"time"

	"github.com/campusops/library-circulation/circulation/core"
)

// ErrInconsistentHistory is returned when an event refers to a book, issue or reservation the
// ledger does not know.
var ErrInconsistentHistory = errors.New("inconsistent circulation history")

// ReconcileReport tells what a Reconcile pass changed.
type ReconcileReport struct {
	PromotedToOverdue   int
	FinesUpdated        int
	ExpiredReservations int
}

// HasChanges returns true if the pass changed anything.
func (r ReconcileReport) HasChanges() bool {
	return r.PromotedToOverdue > 0 || r.FinesUpdated > 0 || r.ExpiredReservations > 0
}

// state holds the three collections in creation order, indexed by id.
type state struct {
	books            []core.Book
	bookIndex        map[core.BookIDString]int
	issues           []core.Issue
	issueIndex       map[core.IssueIDString]int
	reservations     []core.Reservation
	reservationIndex map[core.ReservationIDString]int
}

func newState() *state {
	return &state{
		books:            make([]core.Book, 0),
		bookIndex:        make(map[core.BookIDString]int),
		issues:           make([]core.Issue, 0),
		issueIndex:       make(map[core.IssueIDString]int),
		reservations:     make([]core.Reservation, 0),
		reservationIndex: make(map[core.ReservationIDString]int),
	}
}

func (s *state) book(id core.BookIDString) (*core.Book, bool) {
	i, ok := s.bookIndex[id]
	if !ok {
		return nil, false
	}

	return &s.books[i], true
}

func (s *state) issue(id core.IssueIDString) (*core.Issue, bool) {
	i, ok := s.issueIndex[id]
	if !ok {
		return nil, false
	}

	return &s.issues[i], true
}

func (s *state) reservation(id core.ReservationIDString) (*core.Reservation, bool) {
	i, ok := s.reservationIndex[id]
	if !ok {
		return nil, false
	}

	return &s.reservations[i], true
}

func (s *state) hasOpenIssue(studentID core.StudentIDString, bookID core.BookIDString) bool {
	for _, issue := range s.issues {
		if issue.StudentID == studentID && issue.BookID == bookID && issue.Status.IsOpen() {
			return true
		}
	}

	return false
}

func (s *state) activeReservationOf(studentID core.StudentIDString, bookID core.BookIDString) (core.Reservation, bool) {
	for _, reservation := range s.reservations {
		if reservation.StudentID == studentID &&
			reservation.BookID == bookID &&
			reservation.Status == core.ReservationStatusActive {

			return reservation, true
		}
	}

	return core.Reservation{}, false
}

func (s *state) activeReservationCount(bookID core.BookIDString) int {
	count := 0

	for _, reservation := range s.reservations {
		if reservation.BookID == bookID && reservation.Status == core.ReservationStatusActive {
			count++
		}
	}

	return count
}

// apply changes the collections according to event.
func (s *state) apply(event core.DomainEvent) error {
	switch e := event.(type) {
	case core.BookAddedToCatalog:
		if _, exists := s.bookIndex[e.BookID]; exists {
			return fmt.Errorf("%w: book %q added twice", ErrInconsistentHistory, e.BookID)
		}

		s.bookIndex[e.BookID] = len(s.books)
		s.books = append(s.books, core.Book{
			ID:              e.BookID,
			Title:           e.Title,
			Author:          e.Author,
			ISBN:            e.ISBN,
			Subject:         e.Subject,
			TotalCopies:     e.Copies,
			AvailableCopies: e.Copies,
		})

	case core.BookIssued:
		book, ok := s.book(e.BookID)
		if !ok {
			return fmt.Errorf("%w: issue %q of unknown book %q", ErrInconsistentHistory, e.IssueID, e.BookID)
		}

		book.AvailableCopies--

		s.issueIndex[e.IssueID] = len(s.issues)
		s.issues = append(s.issues, core.Issue{
			ID:        e.IssueID,
			StudentID: e.StudentID,
			BookID:    e.BookID,
			IssueDate: e.OccurredAt,
			DueDate:   e.DueDate,
			Status:    core.IssueStatusIssued,
		})

		if e.FulfilledReservationID != "" {
			if reservation, found := s.reservation(e.FulfilledReservationID); found {
				reservation.Status = core.ReservationStatusFulfilled
			}
		}

	case core.BookReturned:
		issue, ok := s.issue(e.IssueID)
		if !ok {
			return fmt.Errorf("%w: return of unknown issue %q", ErrInconsistentHistory, e.IssueID)
		}

		returnDate := e.OccurredAt
		issue.Status = core.IssueStatusReturned
		issue.ReturnDate = &returnDate
		issue.FineAmount = e.FineAmount

		if book, found := s.book(issue.BookID); found {
			book.AvailableCopies++
		}

	case core.LoanRenewed:
		issue, ok := s.issue(e.IssueID)
		if !ok {
			return fmt.Errorf("%w: renewal of unknown issue %q", ErrInconsistentHistory, e.IssueID)
		}

		issue.DueDate = e.DueDate
		issue.RenewalCount = e.RenewalCount

	case core.BookReserved:
		s.reservationIndex[e.ReservationID] = len(s.reservations)
		s.reservations = append(s.reservations, core.Reservation{
			ID:              e.ReservationID,
			StudentID:       e.StudentID,
			BookID:          e.BookID,
			ReservationDate: e.OccurredAt,
			ExpiryDate:      e.ExpiryDate,
			Status:          core.ReservationStatusActive,
			Position:        e.Position,
		})

	case core.ReservationCancelled:
		reservation, ok := s.reservation(e.ReservationID)
		if !ok {
			return fmt.Errorf("%w: cancellation of unknown reservation %q", ErrInconsistentHistory, e.ReservationID)
		}

		reservation.Status = core.ReservationStatusCancelled

	default:
		return fmt.Errorf("%w: unexpected event %T", ErrInconsistentHistory, event)
	}

	return nil
}

// reconcile promotes past-due issues to overdue, refreshes their fines and expires stale
// reservations.
func (s *state) reconcile(now time.Time, policy core.Policy) ReconcileReport {
	var report ReconcileReport

	for i := range s.issues {
		issue := &s.issues[i]

		if !issue.IsOverdueAt(now) {
			continue
		}

		if issue.Status == core.IssueStatusIssued {
			issue.Status = core.IssueStatusOverdue
			report.PromotedToOverdue++
		}

		if fine := policy.FineFor(issue.DueDate, now); fine != issue.FineAmount {
			issue.FineAmount = fine
			report.FinesUpdated++
		}
	}

	for i := range s.reservations {
		if s.reservations[i].IsExpiredAt(now) {
			s.reservations[i].Status = core.ReservationStatusCancelled
			report.ExpiredReservations++
		}
	}

	return report
}
