package ledger

import (
	"context"
	"slices"

	"github.com/campusops/library-circulation/circulation/core"
	"github.com/campusops/library-circulation/circulation/features/command/addbook"
	"github.com/campusops/library-circulation/circulation/features/query/searchbooks"
)

const failureReasonBookNotFound = "Book not found"

// AddBook puts a new title in the catalog with all copies available.
func (l *Ledger) AddBook(ctx context.Context, book core.Book) (core.Book, error) {
	return execute(ctx, l, operationAddBook,
		func(s *state, now core.OccurredAtTS) core.DecisionResult {
			command := addbook.BuildCommand(book.ID, book.Title, book.Author, book.ISBN, book.Subject, book.TotalCopies, now)
			_, exists := s.book(command.BookID)

			return addbook.Decide(addbook.State{BookInCatalog: exists}, command)
		},
		func(s *state, event core.DomainEvent) core.Book {
			added := event.(core.BookAddedToCatalog)
			l.logInfo(ctx, "book added to catalog", "book_id", added.BookID, "copies", added.Copies)

			b, _ := s.book(added.BookID)

			return *b
		})
}

// ListBooks returns the whole catalog in catalog order.
func (l *Ledger) ListBooks(ctx context.Context) []core.Book {
	_, finish := l.observe(ctx, operationListBooks)
	defer finish(nil)

	l.mu.Lock()
	defer l.mu.Unlock()

	return slices.Clone(l.state.books)
}

// GetBook returns one catalog entry or core.ErrNotFound.
func (l *Ledger) GetBook(ctx context.Context, bookID core.BookIDString) (core.Book, error) {
	_, finish := l.observe(ctx, operationGetBook)

	l.mu.Lock()
	defer l.mu.Unlock()

	book, ok := l.state.book(bookID)
	if !ok {
		err := core.Refuse(core.ErrNotFound, failureReasonBookNotFound)
		finish(err)

		return core.Book{}, err
	}

	finish(nil)

	return *book, nil
}

// SearchBooks filters the catalog, see searchbooks.ProjectMatchingBooks.
func (l *Ledger) SearchBooks(ctx context.Context, term string, subject string) []core.Book {
	_, finish := l.observe(ctx, operationSearchBooks)
	defer finish(nil)

	l.mu.Lock()
	defer l.mu.Unlock()

	return searchbooks.ProjectMatchingBooks(l.state.books, searchbooks.BuildQuery(term, subject)).Books
}
