package addbook

import (
	"github.com/campusops/library-circulation/circulation/core"
)

const (
	failureReasonMissingID     = "Book id is required"
	failureReasonMissingTitle  = "Book title is required"
	failureReasonInvalidCopies = "A book needs at least one copy"
	failureReasonDuplicateBook = "A book with this id is already in the catalog"
)

// State tells whether the catalog already has an entry under the command's id.
type State struct {
	BookInCatalog bool
}

// Decide validates the new catalog entry. All copies start on the shelf.
func Decide(s State, command Command) core.DecisionResult {
	switch {
	case command.BookID == "":
		return core.ErrorDecision(core.Refuse(core.ErrInvalidBook, failureReasonMissingID))
	case command.Title == "":
		return core.ErrorDecision(core.Refuse(core.ErrInvalidBook, failureReasonMissingTitle))
	case command.Copies < 1:
		return core.ErrorDecision(core.Refuse(core.ErrInvalidBook, failureReasonInvalidCopies))
	}

	if s.BookInCatalog {
		return core.ErrorDecision(core.Refuse(core.ErrDuplicateBook, failureReasonDuplicateBook))
	}

	book := core.Book{
		ID:              command.BookID,
		Title:           command.Title,
		Author:          command.Author,
		ISBN:            command.ISBN,
		Subject:         command.Subject,
		TotalCopies:     command.Copies,
		AvailableCopies: command.Copies,
	}

	return core.SuccessDecision(core.BuildBookAddedToCatalog(book, command.OccurredAt))
}
