package core

import (
	"time"
)

// BookAddedToCatalogEventType is the event type identifier.
const BookAddedToCatalogEventType = "BookAddedToCatalog"

// BookAddedToCatalog records a new catalog entry with all its copies on the shelf.
type BookAddedToCatalog struct {
	BookID     BookIDString
	Title      string
	Author     string
	ISBN       string
	Subject    string
	Copies     int
	OccurredAt OccurredAtTS
}

// BuildBookAddedToCatalog creates a new BookAddedToCatalog event.
func BuildBookAddedToCatalog(book Book, occurredAt time.Time) BookAddedToCatalog {
	return BookAddedToCatalog{
		BookID:     book.ID,
		Title:      book.Title,
		Author:     book.Author,
		ISBN:       book.ISBN,
		Subject:    book.Subject,
		Copies:     book.TotalCopies,
		OccurredAt: ToOccurredAt(occurredAt),
	}
}

// EventType returns the event type identifier.
func (e BookAddedToCatalog) EventType() string {
	return BookAddedToCatalogEventType
}

// HasOccurredAt returns when this event occurred.
func (e BookAddedToCatalog) HasOccurredAt() time.Time {
	return e.OccurredAt
}
