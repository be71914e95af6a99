package httpapi

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/campusops/library-circulation/circulation/httpapi/wire"
)

func (a *api) GetStats(c echo.Context) error {
	return c.JSON(http.StatusOK, wire.StatsFrom(a.ledger.GetStats(c.Request().Context())))
}

func (a *api) GetStudentHistory(c echo.Context) error {
	history := a.ledger.GetStudentHistory(c.Request().Context(), c.Param("studentId"))

	return c.JSON(http.StatusOK, wire.HistoryFrom(history))
}

// GetBookActivity accepts optional ?from= and ?until= RFC 3339 timestamps, both inclusive.
func (a *api) GetBookActivity(c echo.Context) error {
	from, err := parseTimeParam(c, "from")
	if err != nil {
		return err
	}

	until, err := parseTimeParam(c, "until")
	if err != nil {
		return err
	}

	entries, err := a.ledger.GetBookActivity(c.Request().Context(), c.Param("id"), from, until)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, wire.ActivityFrom(entries))
}

func parseTimeParam(c echo.Context, name string) (time.Time, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return time.Time{}, nil
	}

	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, echo.NewHTTPError(http.StatusBadRequest, messageInvalidTimeRange)
	}

	return t, nil
}
