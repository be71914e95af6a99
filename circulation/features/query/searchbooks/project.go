package searchbooks

import (
	"strings"

	"github.com/campusops/library-circulation/circulation/core"
)

// ProjectMatchingBooks returns the books matching query, keeping catalog order.
//
// Query Logic:
//
//	Term: case-insensitive substring of the title or the author, exact substring of the ISBN
//	Subject: exact match
//	Both present: ANDed
func ProjectMatchingBooks(catalog []core.Book, query Query) MatchingBooks {
	books := make([]core.Book, 0, len(catalog))

	for _, book := range catalog {
		if query.Term != "" && !matchesTerm(book, query.Term) {
			continue
		}

		if query.Subject != "" && book.Subject != query.Subject {
			continue
		}

		books = append(books, book)
	}

	return MatchingBooks{
		Books: books,
		Count: len(books),
	}
}

func matchesTerm(book core.Book, term string) bool {
	lowerTerm := strings.ToLower(term)

	return strings.Contains(strings.ToLower(book.Title), lowerTerm) ||
		strings.Contains(strings.ToLower(book.Author), lowerTerm) ||
		strings.Contains(book.ISBN, term)
}
