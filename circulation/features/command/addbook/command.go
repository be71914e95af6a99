package addbook

import (
	"strings"
	"time"

	"github.com/campusops/library-circulation/circulation/core"
)

// Command represents the intent to put a new title on the shelves.
type Command struct {
	BookID     core.BookIDString
	Title      string
	Author     string
	ISBN       string
	Subject    string
	Copies     int
	OccurredAt core.OccurredAtTS
}

// BuildCommand creates a new Command with the provided parameters, trimming surrounding whitespace.
func BuildCommand(
	bookID core.BookIDString,
	title string,
	author string,
	isbn string,
	subject string,
	copies int,
	occurredAt time.Time,
) Command {
	return Command{
		BookID:     strings.TrimSpace(bookID),
		Title:      strings.TrimSpace(title),
		Author:     strings.TrimSpace(author),
		ISBN:       strings.TrimSpace(isbn),
		Subject:    strings.TrimSpace(subject),
		Copies:     copies,
		OccurredAt: core.ToOccurredAt(occurredAt),
	}
}
