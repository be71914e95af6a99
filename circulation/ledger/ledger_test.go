package ledger_test

import (
	"context"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusops/library-circulation/circulation/core"
	"github.com/campusops/library-circulation/circulation/ledger"
)

func Test_IssueBook_LastCopyScenario(t *testing.T) {
	// arrange
	ctx := context.Background()
	l := givenLedger(t, newFakeClock())
	givenBook(t, l, "B1", 1)

	// act + assert
	issue, err := l.IssueBook(ctx, "S1", "B1")
	require.NoError(t, err)
	assert.Equal(t, core.IssueStatusIssued, issue.Status)
	assert.Equal(t, termStart.Add(14*day), issue.DueDate)
	assert.Equal(t, termStart, issue.IssueDate)
	assert.Zero(t, issue.RenewalCount)
	assert.Zero(t, issue.FineAmount)
	assert.Nil(t, issue.ReturnDate)
	assert.Equal(t, 0, availableCopies(t, l, "B1"))

	_, err = l.IssueBook(ctx, "S1", "B1")
	assert.ErrorIs(t, err, core.ErrDuplicateIssue)

	_, err = l.IssueBook(ctx, "S2", "B1")
	assert.ErrorIs(t, err, core.ErrUnavailable)

	reservation, err := l.ReserveBook(ctx, "S2", "B1")
	require.NoError(t, err)
	assert.Equal(t, 1, reservation.Position)
	assert.Equal(t, core.ReservationStatusActive, reservation.Status)
	assert.Equal(t, termStart.Add(30*day), reservation.ExpiryDate)

	assert.Equal(t, 0, availableCopies(t, l, "B1"))
}

func Test_IssueBook_UnknownBook(t *testing.T) {
	l := givenLedger(t, newFakeClock())

	_, err := l.IssueBook(context.Background(), "S1", "nope")

	assert.ErrorIs(t, err, core.ErrNotFound)
	assert.Equal(t, "Book not found", err.Error())
}

func Test_IssueAndReturn_KeepAvailabilityWithinBounds(t *testing.T) {
	// arrange
	ctx := context.Background()
	l := givenLedger(t, newFakeClock())
	givenBook(t, l, "B1", 3)

	students := []string{"S1", "S2", "S3", "S4", "S5"}
	issues := make([]core.Issue, 0)

	// act
	for _, student := range students {
		issue, err := l.IssueBook(ctx, student, "B1")
		if err == nil {
			issues = append(issues, issue)
		} else {
			assert.ErrorIs(t, err, core.ErrUnavailable)
		}

		available := availableCopies(t, l, "B1")
		assert.GreaterOrEqual(t, available, 0)
		assert.LessOrEqual(t, available, 3)
	}

	// assert
	require.Len(t, issues, 3)
	assert.Equal(t, 0, availableCopies(t, l, "B1"))

	for i, issue := range issues {
		_, err := l.ReturnBook(ctx, issue.ID)
		require.NoError(t, err)
		assert.Equal(t, i+1, availableCopies(t, l, "B1"))
	}
}

func Test_ReturnBook_ClosesIssueAndFreezesFine(t *testing.T) {
	// arrange
	ctx := context.Background()
	clock := newFakeClock()
	l := givenLedger(t, clock)
	givenBook(t, l, "B1", 1)
	issue := givenIssue(t, l, "S1", "B1")
	clock.Advance(17 * day) // three days late

	// act
	returned, err := l.ReturnBook(ctx, issue.ID)

	// assert
	require.NoError(t, err)
	assert.Equal(t, core.IssueStatusReturned, returned.Status)
	require.NotNil(t, returned.ReturnDate)
	assert.Equal(t, clock.Now(), *returned.ReturnDate)
	assert.Equal(t, 6, returned.FineAmount)
	assert.Equal(t, 1, availableCopies(t, l, "B1"))

	clock.Advance(10 * day)
	history := l.GetStudentHistory(ctx, "S1")
	require.Len(t, history.Issues, 1)
	assert.Equal(t, 6, history.Issues[0].FineAmount)
}

func Test_ReturnBook_RejectsDoubleReturn(t *testing.T) {
	ctx := context.Background()
	l := givenLedger(t, newFakeClock())
	givenBook(t, l, "B1", 2)
	issue := givenIssue(t, l, "S1", "B1")

	_, err := l.ReturnBook(ctx, issue.ID)
	require.NoError(t, err)

	_, err = l.ReturnBook(ctx, issue.ID)

	assert.ErrorIs(t, err, core.ErrAlreadyReturned)
	assert.Equal(t, 2, availableCopies(t, l, "B1"))
}

func Test_ReturnBook_UnknownIssue(t *testing.T) {
	l := givenLedger(t, newFakeClock())

	_, err := l.ReturnBook(context.Background(), "nope")

	assert.ErrorIs(t, err, core.ErrNotFound)
}

func Test_RenewBook_ExtendsDueDate(t *testing.T) {
	ctx := context.Background()
	clock := newFakeClock()
	l := givenLedger(t, clock)
	givenBook(t, l, "B1", 1)
	issue := givenIssue(t, l, "S1", "B1")
	clock.Advance(10 * day)

	renewed, err := l.RenewBook(ctx, issue.ID)

	require.NoError(t, err)
	assert.Equal(t, issue.DueDate.Add(14*day), renewed.DueDate)
	assert.Equal(t, 1, renewed.RenewalCount)
	assert.Equal(t, core.IssueStatusIssued, renewed.Status)
}

func Test_RenewBook_FailsWhenTwentyDaysOverdue(t *testing.T) {
	ctx := context.Background()
	clock := newFakeClock()
	l := givenLedger(t, clock)
	givenBook(t, l, "B1", 1)
	issue := givenIssue(t, l, "S1", "B1")
	clock.Advance(34 * day)

	_, err := l.RenewBook(ctx, issue.ID)

	assert.ErrorIs(t, err, core.ErrOverdue)
}

func Test_RenewBook_FourthRenewalFails(t *testing.T) {
	// arrange
	ctx := context.Background()
	clock := newFakeClock()
	l := givenLedger(t, clock)
	givenBook(t, l, "B1", 1)
	issue := givenIssue(t, l, "S1", "B1")

	for i := 1; i <= 3; i++ {
		renewed, err := l.RenewBook(ctx, issue.ID)
		require.NoError(t, err)
		assert.Equal(t, i, renewed.RenewalCount)
	}

	// act
	_, err := l.RenewBook(ctx, issue.ID)

	// assert
	assert.ErrorIs(t, err, core.ErrRenewalLimitReached)

	clock.Advance(100 * day)
	_, err = l.RenewBook(ctx, issue.ID)
	assert.ErrorIs(t, err, core.ErrRenewalLimitReached)

	issues := l.ListStudentIssues(ctx, "S1")
	require.Len(t, issues, 1)
	assert.Equal(t, 3, issues[0].RenewalCount)
}

func Test_RenewBook_ReturnedIssue(t *testing.T) {
	ctx := context.Background()
	l := givenLedger(t, newFakeClock())
	givenBook(t, l, "B1", 1)
	issue := givenIssue(t, l, "S1", "B1")
	_, err := l.ReturnBook(ctx, issue.ID)
	require.NoError(t, err)

	_, err = l.RenewBook(ctx, issue.ID)

	assert.ErrorIs(t, err, core.ErrAlreadyReturned)
}

func Test_ListStudentIssues_PromotesOverdueWithFine(t *testing.T) {
	// arrange
	ctx := context.Background()
	clock := newFakeClock()
	l := givenLedger(t, clock)
	givenBook(t, l, "B1", 1)
	givenBook(t, l, "B2", 1)
	givenIssue(t, l, "S1", "B1")
	returnedLater := givenIssue(t, l, "S1", "B2")
	_, err := l.ReturnBook(ctx, returnedLater.ID)
	require.NoError(t, err)

	clock.Advance(19 * day) // five days past due

	// act
	issues := l.ListStudentIssues(ctx, "S1")

	// assert
	require.Len(t, issues, 1)
	assert.Equal(t, core.IssueStatusOverdue, issues[0].Status)
	assert.Equal(t, 10, issues[0].FineAmount)

	clock.Advance(2 * day)
	issues = l.ListStudentIssues(ctx, "S1")
	require.Len(t, issues, 1)
	assert.Equal(t, 14, issues[0].FineAmount)
}

func Test_IssueBook_OverdueLoanStillCountsAsDuplicate(t *testing.T) {
	ctx := context.Background()
	clock := newFakeClock()
	l := givenLedger(t, clock)
	givenBook(t, l, "B1", 2)
	givenIssue(t, l, "S1", "B1")
	clock.Advance(20 * day)

	_, err := l.IssueBook(ctx, "S1", "B1")

	assert.ErrorIs(t, err, core.ErrDuplicateIssue)
}

func Test_ReserveBook_FailsWhileCopiesAvailable(t *testing.T) {
	l := givenLedger(t, newFakeClock())
	givenBook(t, l, "B1", 1)

	_, err := l.ReserveBook(context.Background(), "S1", "B1")

	assert.ErrorIs(t, err, core.ErrAlreadyAvailable)
}

func Test_ReserveBook_UnknownBook(t *testing.T) {
	l := givenLedger(t, newFakeClock())

	_, err := l.ReserveBook(context.Background(), "S1", "nope")

	assert.ErrorIs(t, err, core.ErrNotFound)
}

func Test_ReserveBook_DuplicateReservation(t *testing.T) {
	ctx := context.Background()
	l := givenLedger(t, newFakeClock())
	givenBook(t, l, "B1", 1)
	givenIssue(t, l, "S1", "B1")
	_, err := l.ReserveBook(ctx, "S2", "B1")
	require.NoError(t, err)

	_, err = l.ReserveBook(ctx, "S2", "B1")

	assert.ErrorIs(t, err, core.ErrDuplicateReservation)
}

func Test_ReserveBook_QueuePositions(t *testing.T) {
	// arrange
	ctx := context.Background()
	l := givenLedger(t, newFakeClock())
	givenBook(t, l, "B1", 1)
	givenIssue(t, l, "S1", "B1")

	positions := make(map[string]core.Reservation)
	for _, student := range []string{"S2", "S3", "S4"} {
		reservation, err := l.ReserveBook(ctx, student, "B1")
		require.NoError(t, err)
		positions[student] = reservation
	}

	// act
	_, err := l.CancelReservation(ctx, positions["S3"].ID)
	require.NoError(t, err)

	late, err := l.ReserveBook(ctx, "S5", "B1")
	require.NoError(t, err)

	// assert
	assert.Equal(t, 1, positions["S2"].Position)
	assert.Equal(t, 2, positions["S3"].Position)
	assert.Equal(t, 3, positions["S4"].Position)
	assert.Equal(t, 3, late.Position, "tail is the active count plus one")

	held := l.ListStudentReservations(ctx, "S4")
	require.Len(t, held, 1)
	assert.Equal(t, 3, held[0].Position, "cancellation does not renumber the queue")
}

func Test_CancelReservation(t *testing.T) {
	ctx := context.Background()
	l := givenLedger(t, newFakeClock())
	givenBook(t, l, "B1", 1)
	givenIssue(t, l, "S1", "B1")
	reservation, err := l.ReserveBook(ctx, "S2", "B1")
	require.NoError(t, err)

	cancelled, err := l.CancelReservation(ctx, reservation.ID)
	require.NoError(t, err)
	assert.Equal(t, core.ReservationStatusCancelled, cancelled.Status)
	assert.Equal(t, 0, availableCopies(t, l, "B1"))
	assert.Empty(t, l.ListStudentReservations(ctx, "S2"))

	_, err = l.CancelReservation(ctx, reservation.ID)
	assert.ErrorIs(t, err, core.ErrReservationClosed)

	_, err = l.CancelReservation(ctx, "nope")
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func Test_IssueBook_FulfillsReservation(t *testing.T) {
	// arrange
	ctx := context.Background()
	l := givenLedger(t, newFakeClock())
	givenBook(t, l, "B1", 1)
	first := givenIssue(t, l, "S1", "B1")
	reservation, err := l.ReserveBook(ctx, "S2", "B1")
	require.NoError(t, err)
	_, err = l.ReturnBook(ctx, first.ID)
	require.NoError(t, err)

	// act
	_, err = l.IssueBook(ctx, "S2", "B1")
	require.NoError(t, err)

	// assert
	held := l.ListStudentReservations(ctx, "S2")
	require.Len(t, held, 1)
	assert.Equal(t, reservation.ID, held[0].ID)
	assert.Equal(t, core.ReservationStatusFulfilled, held[0].Status)
	assert.Equal(t, 0, l.GetStats(ctx).ActiveReservations)
}

func Test_Reconcile_ExpiresReservations(t *testing.T) {
	// arrange
	ctx := context.Background()
	clock := newFakeClock()
	l := givenLedger(t, clock)
	givenBook(t, l, "B1", 1)
	givenIssue(t, l, "S1", "B1")
	_, err := l.ReserveBook(ctx, "S2", "B1")
	require.NoError(t, err)
	clock.Advance(31 * day)

	// act
	report := l.Reconcile(ctx)

	// assert
	assert.Equal(t, 1, report.ExpiredReservations)
	assert.Equal(t, 1, report.PromotedToOverdue)
	assert.Equal(t, 1, report.FinesUpdated)
	assert.True(t, report.HasChanges())
	assert.Empty(t, l.ListStudentReservations(ctx, "S2"))

	history := l.GetStudentHistory(ctx, "S2")
	require.Len(t, history.Reservations, 1)
	assert.Equal(t, core.ReservationStatusCancelled, history.Reservations[0].Status)

	assert.False(t, l.Reconcile(ctx).HasChanges())
}

func Test_GetStats(t *testing.T) {
	// arrange
	ctx := context.Background()
	clock := newFakeClock()
	l := givenLedger(t, clock)
	givenBook(t, l, "B1", 2)
	givenBook(t, l, "B2", 1)
	givenBook(t, l, "B3", 4)

	givenIssue(t, l, "S1", "B1")
	clock.Advance(10 * day)
	givenIssue(t, l, "S2", "B2")
	returned := givenIssue(t, l, "S3", "B3")
	_, err := l.ReturnBook(ctx, returned.ID)
	require.NoError(t, err)
	_, err = l.ReserveBook(ctx, "S4", "B2")
	require.NoError(t, err)
	clock.Advance(5 * day) // the first loan is now one day past due, not reconciled

	// act
	stats := l.GetStats(ctx)

	// assert
	assert.Equal(t, 7, stats.TotalBooks)
	assert.Equal(t, 5, stats.AvailableBooks)
	assert.Equal(t, 2, stats.IssuedBooks)
	assert.Equal(t, 1, stats.ActiveReservations)
	assert.Equal(t, 2, stats.ActiveIssues)
	assert.Equal(t, 1, stats.OverdueIssues)

	history := l.GetStudentHistory(ctx, "S1")
	assert.Equal(t, core.IssueStatusOverdue, history.Issues[0].Status, "history reconciles, stats do not")
}

func Test_GetStudentHistory_InCreationOrder(t *testing.T) {
	ctx := context.Background()
	l := givenLedger(t, newFakeClock())
	givenBook(t, l, "B1", 1)
	givenBook(t, l, "B2", 1)
	first := givenIssue(t, l, "S1", "B1")
	_, err := l.ReturnBook(ctx, first.ID)
	require.NoError(t, err)
	second := givenIssue(t, l, "S1", "B2")
	givenIssue(t, l, "S2", "B1")
	reservation, err := l.ReserveBook(ctx, "S1", "B1")
	require.NoError(t, err)

	history := l.GetStudentHistory(ctx, "S1")

	require.Len(t, history.Issues, 2)
	assert.Equal(t, first.ID, history.Issues[0].ID)
	assert.Equal(t, core.IssueStatusReturned, history.Issues[0].Status)
	assert.Equal(t, second.ID, history.Issues[1].ID)
	require.Len(t, history.Reservations, 1)
	assert.Equal(t, reservation.ID, history.Reservations[0].ID)
}

func Test_Catalog(t *testing.T) {
	ctx := context.Background()
	l := givenLedger(t, newFakeClock())
	givenBook(t, l, "B2", 1)
	givenBook(t, l, "B1", 3)

	books := l.ListBooks(ctx)
	require.Len(t, books, 2)
	assert.Equal(t, "B2", books[0].ID, "catalog order is insertion order")
	assert.Equal(t, 3, books[1].AvailableCopies)

	books[0].Title = "mutated"
	book, err := l.GetBook(ctx, "B2")
	require.NoError(t, err)
	assert.Equal(t, "Title of B2", book.Title, "callers get copies")

	_, err = l.GetBook(ctx, "nope")
	assert.ErrorIs(t, err, core.ErrNotFound)

	found := l.SearchBooks(ctx, "of b1", "")
	require.Len(t, found, 1)
	assert.Equal(t, "B1", found[0].ID)
	assert.Len(t, l.SearchBooks(ctx, "", "Computer Science"), 2)
	assert.Empty(t, l.SearchBooks(ctx, "", "History"))
}

func Test_AddBook_Refusals(t *testing.T) {
	ctx := context.Background()
	l := givenLedger(t, newFakeClock())
	givenBook(t, l, "B1", 1)

	_, err := l.AddBook(ctx, core.Book{ID: "B1", Title: "Again", TotalCopies: 1})
	assert.ErrorIs(t, err, core.ErrDuplicateBook)

	_, err = l.AddBook(ctx, core.Book{ID: "B2", Title: "No copies"})
	assert.ErrorIs(t, err, core.ErrInvalidBook)

	assert.Len(t, l.ListBooks(ctx), 1)
}

func Test_IssueBook_ConcurrentCallersNeverOverIssue(t *testing.T) {
	// arrange
	l, err := ledger.NewLedger()
	require.NoError(t, err)
	givenBook(t, l, "B1", 2)

	var wg sync.WaitGroup
	var succeeded atomic.Int32

	// act
	for i := 0; i < 40; i++ {
		wg.Add(1)
		go func(student int) {
			defer wg.Done()

			_, issueErr := l.IssueBook(context.Background(), "S"+strconv.Itoa(student), "B1")
			if issueErr == nil {
				succeeded.Add(1)
			}
		}(i)
	}

	wg.Wait()

	// assert
	assert.Equal(t, int32(2), succeeded.Load())
	assert.Equal(t, 0, availableCopies(t, l, "B1"))
	assert.Equal(t, 2, l.GetStats(context.Background()).ActiveIssues)
}

func Test_NewLedger_RejectsInvalidOptions(t *testing.T) {
	testCases := []struct {
		name    string
		option  ledger.Option
		wantErr error
	}{
		{name: "nil clock", option: ledger.WithClock(nil), wantErr: ledger.ErrNilClock},
		{name: "nil id generator", option: ledger.WithIDGenerator(nil), wantErr: ledger.ErrNilIDGenerator},
		{name: "nil journal", option: ledger.WithJournal(nil), wantErr: ledger.ErrNilJournal},
		{name: "zero loan period", option: ledger.WithPolicy(core.Policy{ReservationHoldPeriod: day}), wantErr: ledger.ErrInvalidPolicy},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ledger.NewLedger(tc.option)

			assert.ErrorIs(t, err, tc.wantErr)
		})
	}
}

func Test_WithPolicy_ChangesRules(t *testing.T) {
	ctx := context.Background()
	l := givenLedger(t, newFakeClock(), ledger.WithPolicy(core.Policy{
		LoanPeriod:            7 * day,
		MaxRenewals:           1,
		FinePerDay:            5,
		ReservationHoldPeriod: 3 * day,
	}))
	givenBook(t, l, "B1", 1)
	issue := givenIssue(t, l, "S1", "B1")

	assert.Equal(t, termStart.Add(7*day), issue.DueDate)

	_, err := l.RenewBook(ctx, issue.ID)
	require.NoError(t, err)
	_, err = l.RenewBook(ctx, issue.ID)
	assert.ErrorIs(t, err, core.ErrRenewalLimitReached)
	assert.Equal(t, 1, l.Policy().MaxRenewals)
}
