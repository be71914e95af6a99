package searchbooks

import (
	"github.com/campusops/library-circulation/circulation/core"
)

// MatchingBooks is the search result in catalog order.
type MatchingBooks struct {
	Books []core.Book
	Count int
}
