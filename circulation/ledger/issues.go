package ledger

import (
	"context"

	"github.com/campusops/library-circulation/circulation/core"
	"github.com/campusops/library-circulation/circulation/features/command/issuebook"
	"github.com/campusops/library-circulation/circulation/features/command/renewbook"
	"github.com/campusops/library-circulation/circulation/features/command/returnbook"
	"github.com/campusops/library-circulation/circulation/features/query/studentissues"
)

// IssueBook lends one copy of bookID to studentID for the loan period. An active reservation of
// the student on the book is fulfilled by the issue.
func (l *Ledger) IssueBook(ctx context.Context, studentID core.StudentIDString, bookID core.BookIDString) (core.Issue, error) {
	issueID := l.newID()

	return execute(ctx, l, operationIssueBook,
		func(s *state, now core.OccurredAtTS) core.DecisionResult {
			st := issuebook.State{
				StudentHoldsOpenIssue: s.hasOpenIssue(studentID, bookID),
				Policy:                l.policy,
			}

			if book, ok := s.book(bookID); ok {
				st.BookInCatalog = true
				st.AvailableCopies = book.AvailableCopies
			}

			if reservation, ok := s.activeReservationOf(studentID, bookID); ok {
				st.ActiveReservationID = reservation.ID
			}

			return issuebook.Decide(st, issuebook.BuildCommand(issueID, studentID, bookID, now))
		},
		func(s *state, event core.DomainEvent) core.Issue {
			issued := event.(core.BookIssued)
			l.logInfo(ctx, "book issued",
				"issue_id", issued.IssueID,
				"student_id", issued.StudentID,
				"book_id", issued.BookID,
				"fulfilled_reservation_id", issued.FulfilledReservationID)

			issue, _ := s.issue(issued.IssueID)

			return *issue
		})
}

// ReturnBook closes an open issue, freezing its fine and putting the copy back on the shelf.
func (l *Ledger) ReturnBook(ctx context.Context, issueID core.IssueIDString) (core.Issue, error) {
	return execute(ctx, l, operationReturnBook,
		func(s *state, now core.OccurredAtTS) core.DecisionResult {
			st := returnbook.State{Policy: l.policy}
			if issue, ok := s.issue(issueID); ok {
				st.IssueKnown = true
				st.Issue = *issue
			}

			return returnbook.Decide(st, returnbook.BuildCommand(issueID, now))
		},
		func(s *state, event core.DomainEvent) core.Issue {
			returned := event.(core.BookReturned)
			l.logInfo(ctx, "book returned", "issue_id", returned.IssueID, "fine", returned.FineAmount)

			issue, _ := s.issue(returned.IssueID)

			return *issue
		})
}

// RenewBook extends the due date of an open issue by one loan period.
func (l *Ledger) RenewBook(ctx context.Context, issueID core.IssueIDString) (core.Issue, error) {
	return execute(ctx, l, operationRenewBook,
		func(s *state, now core.OccurredAtTS) core.DecisionResult {
			st := renewbook.State{Policy: l.policy}
			if issue, ok := s.issue(issueID); ok {
				st.IssueKnown = true
				st.Issue = *issue
			}

			return renewbook.Decide(st, renewbook.BuildCommand(issueID, now))
		},
		func(s *state, event core.DomainEvent) core.Issue {
			renewed := event.(core.LoanRenewed)
			l.logInfo(ctx, "loan renewed", "issue_id", renewed.IssueID, "renewal_count", renewed.RenewalCount)

			issue, _ := s.issue(renewed.IssueID)

			return *issue
		})
}

// ListStudentIssues reconciles and returns the student's issued and overdue loans.
func (l *Ledger) ListStudentIssues(ctx context.Context, studentID core.StudentIDString) []core.Issue {
	ctx, finish := l.observe(ctx, operationListStudentIssues)
	defer finish(nil)

	l.mu.Lock()
	defer l.mu.Unlock()

	l.reconcileLocked(ctx)

	return studentissues.ProjectOpenIssues(l.state.issues, studentissues.BuildQuery(studentID)).Issues
}
