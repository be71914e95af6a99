package httpapi

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/campusops/library-circulation/circulation/core"
	"github.com/campusops/library-circulation/circulation/httpapi/wire"
)

func (a *api) ListBooks(c echo.Context) error {
	books := a.ledger.ListBooks(c.Request().Context())

	return c.JSON(http.StatusOK, wire.BooksFrom(books))
}

// SearchBooks accepts ?search= (title, author or ISBN substring) and ?subject= (exact).
func (a *api) SearchBooks(c echo.Context) error {
	books := a.ledger.SearchBooks(c.Request().Context(), c.QueryParam("search"), c.QueryParam("subject"))

	return c.JSON(http.StatusOK, wire.BooksFrom(books))
}

func (a *api) GetBook(c echo.Context) error {
	book, err := a.ledger.GetBook(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, wire.BookFrom(book))
}

func (a *api) AddBook(c echo.Context) error {
	var req wire.AddBookRequest
	if err := c.Bind(&req); err != nil {
		return err
	}

	book, err := a.ledger.AddBook(c.Request().Context(), core.Book{
		ID:          req.ID,
		Title:       req.Title,
		Author:      req.Author,
		ISBN:        req.ISBN,
		Subject:     req.Subject,
		TotalCopies: req.TotalCopies,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, wire.BookFrom(book))
}
