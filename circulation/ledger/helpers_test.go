package ledger_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/campusops/library-circulation/circulation/core"
	"github.com/campusops/library-circulation/circulation/ledger"
)

var termStart = time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC)

const day = 24 * time.Hour

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: termStart}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.now = c.now.Add(d)
}

func sequentialIDs(prefix string) func() string {
	var mu sync.Mutex
	next := 0

	return func() string {
		mu.Lock()
		defer mu.Unlock()
		next++

		return fmt.Sprintf("%s-%d", prefix, next)
	}
}

func givenLedger(t *testing.T, clock *fakeClock, options ...ledger.Option) *ledger.Ledger {
	t.Helper()

	all := append([]ledger.Option{ledger.WithClock(clock.Now), ledger.WithIDGenerator(sequentialIDs("ID"))}, options...)

	l, err := ledger.NewLedger(all...)
	require.NoError(t, err)

	return l
}

func givenBook(t *testing.T, l *ledger.Ledger, id string, copies int) core.Book {
	t.Helper()

	book, err := l.AddBook(context.Background(), core.Book{
		ID:          id,
		Title:       "Title of " + id,
		Author:      "Author of " + id,
		ISBN:        "978-" + id,
		Subject:     "Computer Science",
		TotalCopies: copies,
	})
	require.NoError(t, err)

	return book
}

func givenIssue(t *testing.T, l *ledger.Ledger, studentID string, bookID string) core.Issue {
	t.Helper()

	issue, err := l.IssueBook(context.Background(), studentID, bookID)
	require.NoError(t, err)

	return issue
}

func availableCopies(t *testing.T, l *ledger.Ledger, bookID string) int {
	t.Helper()

	book, err := l.GetBook(context.Background(), bookID)
	require.NoError(t, err)

	return book.AvailableCopies
}
