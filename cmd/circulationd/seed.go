package main

import (
	"context"
	"errors"
	"log/slog"

	"github.com/campusops/library-circulation/circulation/core"
)

type catalog interface {
	AddBook(ctx context.Context, book core.Book) (core.Book, error)
}

// demoCatalog is the college's starter shelf.
var demoCatalog = []core.Book{
	{ID: "1", Title: "Introduction to Algorithms", Author: "Thomas H. Cormen", ISBN: "978-0262033848", Subject: "Computer Science", TotalCopies: 5},
	{ID: "2", Title: "Clean Code", Author: "Robert C. Martin", ISBN: "978-0132350884", Subject: "Software Engineering", TotalCopies: 3},
	{ID: "3", Title: "Database System Concepts", Author: "Abraham Silberschatz", ISBN: "978-0078022159", Subject: "Computer Science", TotalCopies: 4},
	{ID: "4", Title: "Operating System Concepts", Author: "Abraham Silberschatz", ISBN: "978-1118063330", Subject: "Computer Science", TotalCopies: 2},
	{ID: "5", Title: "Engineering Mathematics", Author: "K. A. Stroud", ISBN: "978-1137031204", Subject: "Mathematics", TotalCopies: 6},
	{ID: "6", Title: "Computer Networks", Author: "Andrew S. Tanenbaum", ISBN: "978-0132126953", Subject: "Computer Science", TotalCopies: 3},
	{ID: "7", Title: "Digital Design", Author: "M. Morris Mano", ISBN: "978-0132774208", Subject: "Electronics", TotalCopies: 2},
	{ID: "8", Title: "Engineering Physics", Author: "H. K. Malik", ISBN: "978-9352604759", Subject: "Physics", TotalCopies: 1},
}

// seedCatalog adds the demo catalog. Titles restored from the journal are skipped.
func seedCatalog(ctx context.Context, c catalog, logger *slog.Logger) error {
	added := 0

	for _, book := range demoCatalog {
		_, err := c.AddBook(ctx, book)

		switch {
		case err == nil:
			added++
		case errors.Is(err, core.ErrDuplicateBook):
		default:
			return err
		}
	}

	logger.Info("catalog seeded", "added", added, "skipped", len(demoCatalog)-added)

	return nil
}
