package httpapi

import (
	"context"
	"net/http"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/campusops/library-circulation/circulation/core"
	"github.com/campusops/library-circulation/circulation/features/query/librarystats"
	"github.com/campusops/library-circulation/circulation/features/query/studenthistory"
	"github.com/campusops/library-circulation/circulation/httpapi/wire"
	"github.com/campusops/library-circulation/circulation/ledger"
	"github.com/campusops/library-circulation/journal"
)

// Ledger is the set of ledger operations served over HTTP. *ledger.Ledger implements it.
type Ledger interface {
	ListBooks(ctx context.Context) []core.Book
	SearchBooks(ctx context.Context, term string, subject string) []core.Book
	GetBook(ctx context.Context, bookID core.BookIDString) (core.Book, error)
	AddBook(ctx context.Context, book core.Book) (core.Book, error)

	IssueBook(ctx context.Context, studentID core.StudentIDString, bookID core.BookIDString) (core.Issue, error)
	ReturnBook(ctx context.Context, issueID core.IssueIDString) (core.Issue, error)
	RenewBook(ctx context.Context, issueID core.IssueIDString) (core.Issue, error)
	ListStudentIssues(ctx context.Context, studentID core.StudentIDString) []core.Issue

	ReserveBook(ctx context.Context, studentID core.StudentIDString, bookID core.BookIDString) (core.Reservation, error)
	CancelReservation(ctx context.Context, reservationID core.ReservationIDString) (core.Reservation, error)
	ListStudentReservations(ctx context.Context, studentID core.StudentIDString) []core.Reservation

	GetStats(ctx context.Context) librarystats.Stats
	GetStudentHistory(ctx context.Context, studentID core.StudentIDString) studenthistory.History
	GetBookActivity(ctx context.Context, bookID core.BookIDString, from time.Time, until time.Time) ([]ledger.ActivityEntry, error)
}

type api struct {
	ledger Ledger
	logger journal.Logger
}

// Option configures the HTTP server.
type Option func(*api)

// WithLogger enables request logging and logs 5xx causes.
func WithLogger(logger journal.Logger) Option {
	return func(a *api) {
		a.logger = logger
	}
}

// NewServer builds the echo instance with all routes registered.
func NewServer(ledger Ledger, options ...Option) *echo.Echo {
	a := &api{ledger: ledger}
	for _, option := range options {
		option(a)
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.JSONSerializer = jsoniterSerializer{api: jsoniter.ConfigCompatibleWithStandardLibrary}
	e.HTTPErrorHandler = a.handleError

	e.Use(middleware.Recover())
	if a.logger != nil {
		e.Use(a.requestLogger())
	}

	e.GET("/healthz", a.Health)

	e.GET("/books", a.ListBooks)
	e.GET("/books/search", a.SearchBooks)
	e.GET("/books/:id", a.GetBook)
	e.GET("/books/:id/activity", a.GetBookActivity)
	e.POST("/books", a.AddBook)

	e.POST("/issue", a.IssueBook)
	e.POST("/return", a.ReturnBook)
	e.POST("/renew", a.RenewBook)
	e.GET("/issues/student/:studentId", a.ListStudentIssues)

	e.POST("/reserve", a.ReserveBook)
	e.DELETE("/reservations/:id", a.CancelReservation)
	e.GET("/reservations/student/:studentId", a.ListStudentReservations)

	e.GET("/stats", a.GetStats)
	e.GET("/history/student/:studentId", a.GetStudentHistory)

	return e
}

func (a *api) requestLogger() echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:   true,
		LogURI:      true,
		LogStatus:   true,
		LogLatency:  true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(_ echo.Context, v middleware.RequestLoggerValues) error {
			args := []any{"method", v.Method, "uri", v.URI, "status", v.Status, "latency_ms", v.Latency.Milliseconds()}

			if v.Status >= http.StatusInternalServerError {
				if v.Error != nil {
					args = append(args, "error", v.Error.Error())
				}

				a.logger.Error("http request failed", args...)

				return nil
			}

			a.logger.Info("http request", args...)

			return nil
		},
	})
}

// Health reports liveness.
func (a *api) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, wire.HealthResponse{Status: "ok"})
}

type jsoniterSerializer struct {
	api jsoniter.API
}

func (s jsoniterSerializer) Serialize(c echo.Context, i interface{}, indent string) error {
	enc := s.api.NewEncoder(c.Response())
	if indent != "" {
		enc.SetIndent("", indent)
	}

	return enc.Encode(i)
}

func (s jsoniterSerializer) Deserialize(c echo.Context, i interface{}) error {
	if err := s.api.NewDecoder(c.Request().Body).Decode(i); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, messageMalformedBody).SetInternal(err)
	}

	return nil
}
