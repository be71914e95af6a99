package httpapi

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/campusops/library-circulation/circulation/httpapi/wire"
)

const messageReservationCancelled = "Reservation cancelled successfully"

func (a *api) ReserveBook(c echo.Context) error {
	req, err := bindLoanRequest(c)
	if err != nil {
		return err
	}

	reservation, err := a.ledger.ReserveBook(c.Request().Context(), req.StudentID, req.BookID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, wire.ReservationFrom(reservation))
}

func (a *api) CancelReservation(c echo.Context) error {
	if _, err := a.ledger.CancelReservation(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, wire.MessageResponse{Message: messageReservationCancelled})
}

// ListStudentReservations returns the student's active and fulfilled reservations.
func (a *api) ListStudentReservations(c echo.Context) error {
	reservations := a.ledger.ListStudentReservations(c.Request().Context(), c.Param("studentId"))

	return c.JSON(http.StatusOK, wire.ReservationsFrom(reservations))
}
