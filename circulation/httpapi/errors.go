package httpapi

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/campusops/library-circulation/circulation/core"
	"github.com/campusops/library-circulation/circulation/httpapi/wire"
	"github.com/campusops/library-circulation/circulation/ledger"
	"github.com/campusops/library-circulation/journal"
	"github.com/campusops/library-circulation/journal/guardedjournal"
)

const (
	messageMalformedBody       = "Malformed JSON body"
	messageLoanFieldsRequired  = "studentId and bookId are required"
	messageIssueIDRequired     = "issueId is required"
	messageInvalidTimeRange    = "from and until must be RFC 3339 timestamps"
	messageLedgerBusy          = "Ledger is busy, please retry"
	messageJournalUnavailable  = "Circulation journal unavailable"
	messageInternalServerError = "Internal server error"
)

// statusOf maps a ledger error to a status code and the message shown to the caller.
func statusOf(err error) (int, string) {
	var httpErr *echo.HTTPError

	switch {
	case errors.As(err, &httpErr):
		if message, ok := httpErr.Message.(string); ok {
			return httpErr.Code, message
		}

		return httpErr.Code, fmt.Sprint(httpErr.Message)

	case errors.Is(err, core.ErrNotFound):
		return http.StatusNotFound, err.Error()

	case errors.Is(err, core.ErrDuplicateBook):
		return http.StatusConflict, err.Error()

	case core.IsRefusal(err):
		return http.StatusBadRequest, err.Error()

	case errors.Is(err, journal.ErrConcurrencyConflict):
		return http.StatusConflict, messageLedgerBusy

	case errors.Is(err, guardedjournal.ErrJournalUnavailable), errors.Is(err, ledger.ErrNoJournal):
		return http.StatusServiceUnavailable, messageJournalUnavailable

	default:
		return http.StatusInternalServerError, messageInternalServerError
	}
}

func (a *api) handleError(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code, message := statusOf(err)

	if code >= http.StatusInternalServerError && a.logger != nil {
		a.logger.Error("request failed", "method", c.Request().Method, "path", c.Path(), "error", err.Error())
	}

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(code)
	} else {
		err = c.JSON(code, wire.MessageResponse{Message: message})
	}

	if err != nil && a.logger != nil {
		a.logger.Error("writing error response failed", "error", err.Error())
	}
}
