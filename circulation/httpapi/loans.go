package httpapi

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/campusops/library-circulation/circulation/httpapi/wire"
)

const messageBookReturned = "Book returned successfully"

func bindLoanRequest(c echo.Context) (wire.LoanRequest, error) {
	var req wire.LoanRequest
	if err := c.Bind(&req); err != nil {
		return req, err
	}

	req.StudentID = strings.TrimSpace(req.StudentID)
	req.BookID = strings.TrimSpace(req.BookID)

	if req.StudentID == "" || req.BookID == "" {
		return req, echo.NewHTTPError(http.StatusBadRequest, messageLoanFieldsRequired)
	}

	return req, nil
}

func bindIssueRequest(c echo.Context) (wire.IssueRequest, error) {
	var req wire.IssueRequest
	if err := c.Bind(&req); err != nil {
		return req, err
	}

	req.IssueID = strings.TrimSpace(req.IssueID)
	if req.IssueID == "" {
		return req, echo.NewHTTPError(http.StatusBadRequest, messageIssueIDRequired)
	}

	return req, nil
}

func (a *api) IssueBook(c echo.Context) error {
	req, err := bindLoanRequest(c)
	if err != nil {
		return err
	}

	issue, err := a.ledger.IssueBook(c.Request().Context(), req.StudentID, req.BookID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, wire.IssueFrom(issue))
}

func (a *api) ReturnBook(c echo.Context) error {
	req, err := bindIssueRequest(c)
	if err != nil {
		return err
	}

	issue, err := a.ledger.ReturnBook(c.Request().Context(), req.IssueID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, wire.ReturnResponse{Message: messageBookReturned, Issue: wire.IssueFrom(issue)})
}

func (a *api) RenewBook(c echo.Context) error {
	req, err := bindIssueRequest(c)
	if err != nil {
		return err
	}

	issue, err := a.ledger.RenewBook(c.Request().Context(), req.IssueID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, wire.IssueFrom(issue))
}

// ListStudentIssues returns the student's issued and overdue loans.
func (a *api) ListStudentIssues(c echo.Context) error {
	issues := a.ledger.ListStudentIssues(c.Request().Context(), c.Param("studentId"))

	return c.JSON(http.StatusOK, wire.IssuesFrom(issues))
}
