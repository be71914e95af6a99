package httpapi_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusops/library-circulation/circulation/core"
	"github.com/campusops/library-circulation/circulation/httpapi"
	"github.com/campusops/library-circulation/circulation/httpapi/wire"
	"github.com/campusops/library-circulation/circulation/ledger"
	"github.com/campusops/library-circulation/internal/testdoubles"
	"github.com/campusops/library-circulation/journal"
	"github.com/campusops/library-circulation/journal/guardedjournal"
)

var termStart = time.Date(2026, time.September, 1, 9, 0, 0, 0, time.UTC)

const day = 24 * time.Hour

func givenServer(t *testing.T) *echo.Echo {
	t.Helper()

	l, err := ledger.NewLedger(ledger.WithClock(func() time.Time { return termStart }))
	require.NoError(t, err)

	return httpapi.NewServer(l)
}

func do(t *testing.T, e *echo.Echo, method string, path string, body string) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()

	var out T
	require.NoError(t, jsoniter.ConfigCompatibleWithStandardLibrary.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())

	return out
}

func givenBook(t *testing.T, e *echo.Echo, id string, copies int) {
	t.Helper()

	body := `{"id":"` + id + `","title":"Title of ` + id + `","author":"Author","isbn":"978-` + id + `","subject":"Computer Science","totalCopies":` + strconv.Itoa(copies) + `}`
	rec := do(t, e, http.MethodPost, "/books", body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
}

func Test_API_CirculationScenario(t *testing.T) {
	// arrange
	e := givenServer(t)
	givenBook(t, e, "B1", 1)

	// act + assert
	rec := do(t, e, http.MethodPost, "/issue", `{"studentId":"S1","bookId":"B1"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	issue := decode[wire.Issue](t, rec)
	assert.Equal(t, "S1", issue.StudentID)
	assert.Equal(t, "issued", issue.Status)
	assert.True(t, termStart.Add(14*day).Equal(issue.DueDate))
	assert.Nil(t, issue.ReturnDate)

	rec = do(t, e, http.MethodPost, "/issue", `{"studentId":"S2","bookId":"B1"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "No copies available", decode[wire.MessageResponse](t, rec).Message)

	rec = do(t, e, http.MethodPost, "/reserve", `{"studentId":"S2","bookId":"B1"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	reservation := decode[wire.Reservation](t, rec)
	assert.Equal(t, 1, reservation.Position)
	assert.Equal(t, "active", reservation.Status)

	rec = do(t, e, http.MethodPost, "/renew", `{"issueId":"`+issue.ID+`"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, 1, decode[wire.Issue](t, rec).RenewalCount)

	rec = do(t, e, http.MethodPost, "/return", `{"issueId":"`+issue.ID+`"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	returned := decode[wire.ReturnResponse](t, rec)
	assert.Equal(t, "Book returned successfully", returned.Message)
	assert.Equal(t, "returned", returned.Issue.Status)
	require.NotNil(t, returned.Issue.ReturnDate)

	rec = do(t, e, http.MethodPost, "/return", `{"issueId":"`+issue.ID+`"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, e, http.MethodGet, "/books/B1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, decode[wire.Book](t, rec).AvailableCopies)

	rec = do(t, e, http.MethodGet, "/reservations/student/S2", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]wire.Reservation](t, rec), 1)

	rec = do(t, e, http.MethodDelete, "/reservations/"+reservation.ID, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "Reservation cancelled successfully", decode[wire.MessageResponse](t, rec).Message)

	rec = do(t, e, http.MethodGet, "/history/student/S1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	history := decode[wire.History](t, rec)
	assert.Len(t, history.Issues, 1)
	assert.Empty(t, history.Reservations)
	assert.NotNil(t, history.Reservations)

	rec = do(t, e, http.MethodGet, "/stats", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, wire.Stats{TotalBooks: 1, AvailableBooks: 1}, decode[wire.Stats](t, rec))
}

func Test_API_StudentIssues(t *testing.T) {
	e := givenServer(t)
	givenBook(t, e, "B1", 2)
	givenBook(t, e, "B2", 2)

	require.Equal(t, http.StatusCreated, do(t, e, http.MethodPost, "/issue", `{"studentId":"S1","bookId":"B1"}`).Code)
	require.Equal(t, http.StatusCreated, do(t, e, http.MethodPost, "/issue", `{"studentId":"S1","bookId":"B2"}`).Code)

	rec := do(t, e, http.MethodGet, "/issues/student/S1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]wire.Issue](t, rec), 2)

	rec = do(t, e, http.MethodGet, "/issues/student/nobody", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func Test_API_BookQueries(t *testing.T) {
	e := givenServer(t)
	givenBook(t, e, "B1", 1)
	givenBook(t, e, "B2", 1)

	testCases := []struct {
		name          string
		path          string
		expectedCount int
	}{
		{name: "list all", path: "/books", expectedCount: 2},
		{name: "search by title", path: "/books/search?search=title%20of%20b2", expectedCount: 1},
		{name: "search by subject", path: "/books/search?subject=Computer%20Science", expectedCount: 2},
		{name: "unknown subject", path: "/books/search?subject=History", expectedCount: 0},
		{name: "empty search", path: "/books/search", expectedCount: 2},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rec := do(t, e, http.MethodGet, tc.path, "")

			require.Equal(t, http.StatusOK, rec.Code)
			assert.Len(t, decode[[]wire.Book](t, rec), tc.expectedCount)
		})
	}
}

func Test_API_BookActivity(t *testing.T) {
	// arrange
	l, err := ledger.NewLedger(
		ledger.WithClock(func() time.Time { return termStart }),
		ledger.WithJournal(journal.NewMemoryJournal()),
	)
	require.NoError(t, err)
	e := httpapi.NewServer(l)
	givenBook(t, e, "B1", 1)
	givenBook(t, e, "B2", 1)
	require.Equal(t, http.StatusCreated, do(t, e, http.MethodPost, "/issue", `{"studentId":"S1","bookId":"B1"}`).Code)

	testCases := []struct {
		name               string
		path               string
		expectedStatus     int
		expectedEventTypes []string
	}{
		{
			name:               "whole history",
			path:               "/books/B1/activity",
			expectedStatus:     http.StatusOK,
			expectedEventTypes: []string{core.BookAddedToCatalogEventType, core.BookIssuedEventType},
		},
		{
			name:               "other book is not mixed in",
			path:               "/books/B2/activity",
			expectedStatus:     http.StatusOK,
			expectedEventTypes: []string{core.BookAddedToCatalogEventType},
		},
		{
			name:               "range after the events",
			path:               "/books/B1/activity?from=2026-09-02T00:00:00Z",
			expectedStatus:     http.StatusOK,
			expectedEventTypes: []string{},
		},
		{
			name:               "inclusive range around the events",
			path:               "/books/B1/activity?from=2026-09-01T09:00:00Z&until=2026-09-01T09:00:00Z",
			expectedStatus:     http.StatusOK,
			expectedEventTypes: []string{core.BookAddedToCatalogEventType, core.BookIssuedEventType},
		},
		{name: "unknown book", path: "/books/NOPE/activity", expectedStatus: http.StatusNotFound},
		{name: "malformed time", path: "/books/B1/activity?until=yesterday", expectedStatus: http.StatusBadRequest},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// act
			rec := do(t, e, http.MethodGet, tc.path, "")

			// assert
			require.Equal(t, tc.expectedStatus, rec.Code, rec.Body.String())
			if tc.expectedStatus != http.StatusOK {
				assert.NotEmpty(t, decode[wire.MessageResponse](t, rec).Message)
				return
			}

			entries := decode[[]wire.ActivityEntry](t, rec)
			eventTypes := make([]string, 0, len(entries))
			for _, entry := range entries {
				eventTypes = append(eventTypes, entry.EventType)
				assert.NotEmpty(t, entry.Operation)
				assert.NotEmpty(t, entry.CorrelationID)
			}
			assert.Equal(t, tc.expectedEventTypes, eventTypes)
		})
	}
}

func Test_API_BookActivityWithoutJournal(t *testing.T) {
	e := givenServer(t)
	givenBook(t, e, "B1", 1)

	rec := do(t, e, http.MethodGet, "/books/B1/activity", "")

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "Circulation journal unavailable", decode[wire.MessageResponse](t, rec).Message)
}

func Test_API_RejectsBadRequests(t *testing.T) {
	e := givenServer(t)
	givenBook(t, e, "B1", 1)

	testCases := []struct {
		name            string
		method          string
		path            string
		body            string
		expectedStatus  int
		expectedMessage string
	}{
		{"unknown book", http.MethodGet, "/books/NOPE", "", http.StatusNotFound, "Book not found"},
		{"issue unknown book", http.MethodPost, "/issue", `{"studentId":"S1","bookId":"NOPE"}`, http.StatusNotFound, "Book not found"},
		{"return unknown issue", http.MethodPost, "/return", `{"issueId":"NOPE"}`, http.StatusNotFound, "Issue not found"},
		{"renew unknown issue", http.MethodPost, "/renew", `{"issueId":"NOPE"}`, http.StatusNotFound, "Issue not found"},
		{"cancel unknown reservation", http.MethodDelete, "/reservations/NOPE", "", http.StatusNotFound, "Reservation not found"},
		{"reserve available book", http.MethodPost, "/reserve", `{"studentId":"S1","bookId":"B1"}`, http.StatusBadRequest, ""},
		{"malformed json", http.MethodPost, "/issue", `{"studentId":`, http.StatusBadRequest, "Malformed JSON body"},
		{"missing loan fields", http.MethodPost, "/issue", `{"studentId":"S1"}`, http.StatusBadRequest, "studentId and bookId are required"},
		{"missing issue id", http.MethodPost, "/return", `{}`, http.StatusBadRequest, "issueId is required"},
		{"invalid book", http.MethodPost, "/books", `{"id":"B9","title":"","totalCopies":1}`, http.StatusBadRequest, "Book title is required"},
		{"duplicate book", http.MethodPost, "/books", `{"id":"B1","title":"Again","totalCopies":1}`, http.StatusConflict, ""},
		{"unknown route", http.MethodGet, "/nowhere", "", http.StatusNotFound, ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// act
			rec := do(t, e, tc.method, tc.path, tc.body)

			// assert
			assert.Equal(t, tc.expectedStatus, rec.Code, rec.Body.String())

			response := decode[wire.MessageResponse](t, rec)
			assert.NotEmpty(t, response.Message)
			if tc.expectedMessage != "" {
				assert.Equal(t, tc.expectedMessage, response.Message)
			}
		})
	}
}

type failingLedger struct {
	httpapi.Ledger
	err error
}

func (f failingLedger) IssueBook(context.Context, core.StudentIDString, core.BookIDString) (core.Issue, error) {
	return core.Issue{}, f.err
}

func Test_API_MapsInfrastructureErrors(t *testing.T) {
	testCases := []struct {
		name            string
		err             error
		expectedStatus  int
		expectedMessage string
	}{
		{"unresolved conflict", errors.Join(journal.ErrConcurrencyConflict), http.StatusConflict, "Ledger is busy, please retry"},
		{"breaker open", errors.Join(guardedjournal.ErrJournalUnavailable, errors.New("circuit breaker is open")), http.StatusServiceUnavailable, "Circulation journal unavailable"},
		{"journal failure", errors.Join(journal.ErrAppendingEventFailed, errors.New("disk full")), http.StatusInternalServerError, "Internal server error"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// arrange
			e := httpapi.NewServer(failingLedger{err: tc.err})

			// act
			rec := do(t, e, http.MethodPost, "/issue", `{"studentId":"S1","bookId":"B1"}`)

			// assert
			assert.Equal(t, tc.expectedStatus, rec.Code)
			assert.Equal(t, tc.expectedMessage, decode[wire.MessageResponse](t, rec).Message)
		})
	}
}

func Test_API_LogsRequests(t *testing.T) {
	// arrange
	logger := testdoubles.NewLoggerSpy()
	e := httpapi.NewServer(failingLedger{err: errors.New("boom")}, httpapi.WithLogger(logger))

	// act
	rec := do(t, e, http.MethodPost, "/issue", `{"studentId":"S1","bookId":"B1"}`)
	do(t, e, http.MethodGet, "/healthz", "")

	// assert
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.True(t, logger.HasLog(testdoubles.LevelError, "request failed"))
	assert.True(t, logger.HasLog(testdoubles.LevelError, "http request failed"))
	assert.True(t, logger.HasLog(testdoubles.LevelInfo, "http request"))
}

func Test_API_Health(t *testing.T) {
	rec := do(t, givenServer(t), http.MethodGet, "/healthz", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}
