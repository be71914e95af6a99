// Command circulationctl talks to a running circulation service.
//
//	circulationctl [-addr http://localhost:8080] <command> [arguments]
//
// Commands:
//
//	books [-search term] [-subject subject]
//	book <bookId>
//	activity [-from RFC3339] [-until RFC3339] <bookId>
//	add-book -id id -title title [-author a] [-isbn i] [-subject s] [-copies n]
//	issue <studentId> <bookId>
//	return <issueId>
//	renew <issueId>
//	issues <studentId>
//	reserve <studentId> <bookId>
//	cancel <reservationId>
//	reservations <studentId>
//	stats
//	history <studentId>
//	health
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	jsoniter "github.com/json-iterator/go"

	"github.com/campusops/library-circulation/circulation/client"
	"github.com/campusops/library-circulation/circulation/httpapi/wire"
)

const (
	defaultAddr    = "http://localhost:8080"
	defaultTimeout = 10 * time.Second
	retryCount     = 2
	retryWait      = 200 * time.Millisecond
)

var (
	ErrUsage          = errors.New("usage")
	ErrUnknownCommand = errors.New("unknown command")
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			log.Printf("circulationctl: %v", err)
		}

		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout io.Writer, stderr io.Writer) error {
	global := flag.NewFlagSet("circulationctl", flag.ContinueOnError)
	global.SetOutput(stderr)

	addr := global.String("addr", envOr("CIRCULATION_ADDR", defaultAddr), "Base URL of the circulation service")
	timeout := global.Duration("timeout", defaultTimeout, "Per-request timeout")

	if err := global.Parse(args); err != nil {
		return err
	}

	if global.NArg() == 0 {
		global.Usage()

		return fmt.Errorf("%w: missing command", ErrUsage)
	}

	c, err := client.New(*addr, client.WithTimeout(*timeout), client.WithRetries(retryCount, retryWait))
	if err != nil {
		return err
	}

	result, err := dispatch(ctx, c, global.Arg(0), global.Args()[1:], stderr)
	if err != nil {
		return err
	}

	return printJSON(stdout, result)
}

func dispatch(ctx context.Context, c *client.Client, command string, args []string, stderr io.Writer) (any, error) {
	switch command {
	case "books":
		fs := flag.NewFlagSet("books", flag.ContinueOnError)
		fs.SetOutput(stderr)
		search := fs.String("search", "", "Title, author or ISBN substring")
		subject := fs.String("subject", "", "Exact subject")

		if err := fs.Parse(args); err != nil {
			return nil, err
		}

		if *search == "" && *subject == "" {
			return c.ListBooks(ctx)
		}

		return c.SearchBooks(ctx, *search, *subject)

	case "book":
		if err := expectArgs(command, args, "bookId"); err != nil {
			return nil, err
		}

		return c.GetBook(ctx, args[0])

	case "activity":
		fs := flag.NewFlagSet("activity", flag.ContinueOnError)
		fs.SetOutput(stderr)
		var from, until time.Time
		fs.Func("from", "Earliest occurrence (RFC 3339)", timeFlag(&from))
		fs.Func("until", "Latest occurrence (RFC 3339)", timeFlag(&until))

		if err := fs.Parse(args); err != nil {
			return nil, err
		}

		if err := expectArgs(command, fs.Args(), "bookId"); err != nil {
			return nil, err
		}

		return c.BookActivity(ctx, fs.Arg(0), from, until)

	case "add-book":
		fs := flag.NewFlagSet("add-book", flag.ContinueOnError)
		fs.SetOutput(stderr)
		req := wire.AddBookRequest{}
		fs.StringVar(&req.ID, "id", "", "Book id")
		fs.StringVar(&req.Title, "title", "", "Title")
		fs.StringVar(&req.Author, "author", "", "Author")
		fs.StringVar(&req.ISBN, "isbn", "", "ISBN")
		fs.StringVar(&req.Subject, "subject", "", "Subject")
		fs.IntVar(&req.TotalCopies, "copies", 1, "Number of copies")

		if err := fs.Parse(args); err != nil {
			return nil, err
		}

		return c.AddBook(ctx, req)

	case "issue":
		if err := expectArgs(command, args, "studentId", "bookId"); err != nil {
			return nil, err
		}

		return c.IssueBook(ctx, args[0], args[1])

	case "return":
		if err := expectArgs(command, args, "issueId"); err != nil {
			return nil, err
		}

		return c.ReturnBook(ctx, args[0])

	case "renew":
		if err := expectArgs(command, args, "issueId"); err != nil {
			return nil, err
		}

		return c.RenewBook(ctx, args[0])

	case "issues":
		if err := expectArgs(command, args, "studentId"); err != nil {
			return nil, err
		}

		return c.StudentIssues(ctx, args[0])

	case "reserve":
		if err := expectArgs(command, args, "studentId", "bookId"); err != nil {
			return nil, err
		}

		return c.ReserveBook(ctx, args[0], args[1])

	case "cancel":
		if err := expectArgs(command, args, "reservationId"); err != nil {
			return nil, err
		}

		return c.CancelReservation(ctx, args[0])

	case "reservations":
		if err := expectArgs(command, args, "studentId"); err != nil {
			return nil, err
		}

		return c.StudentReservations(ctx, args[0])

	case "stats":
		return c.Stats(ctx)

	case "history":
		if err := expectArgs(command, args, "studentId"); err != nil {
			return nil, err
		}

		return c.StudentHistory(ctx, args[0])

	case "health":
		return c.Health(ctx)

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownCommand, command)
	}
}

func expectArgs(command string, args []string, names ...string) error {
	if len(args) != len(names) {
		return fmt.Errorf("%w: circulationctl %s %v", ErrUsage, command, names)
	}

	return nil
}

func timeFlag(target *time.Time) func(string) error {
	return func(raw string) error {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return err
		}

		*target = t

		return nil
	}
}

func printJSON(w io.Writer, v any) error {
	out, err := jsoniter.ConfigCompatibleWithStandardLibrary.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(w, string(out))

	return err
}

func envOr(key string, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}

	return fallback
}
