// Package client is a typed REST client for the circulation HTTP API.
package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	jsoniter "github.com/json-iterator/go"

	"github.com/campusops/library-circulation/circulation/httpapi/wire"
)

const (
	defaultTimeout = 10 * time.Second
)

var (
	ErrInvalidStatusCode = errors.New("invalid status code")
	ErrEmptyBaseURL      = errors.New("base url must not be empty")
)

// APIError carries the status code and the {message} body of a failed request.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%d: %s", e.StatusCode, e.Message)
}

func (e *APIError) Unwrap() error {
	return ErrInvalidStatusCode
}

// StatusCodeOf returns the HTTP status of an APIError, or 0 for transport errors.
func StatusCodeOf(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}

	return 0
}

// Option configures the client.
type Option func(*resty.Client)

// WithTimeout bounds each request.
func WithTimeout(d time.Duration) Option {
	return func(c *resty.Client) {
		c.SetTimeout(d)
	}
}

// WithRetries retries 503 responses, which the server sends before anything was recorded, and
// transport failures of idempotent requests. A POST that failed in transit is not resent: the
// server may already have committed it, and the retry would be refused as a duplicate.
func WithRetries(count int, wait time.Duration) Option {
	return func(c *resty.Client) {
		c.SetRetryCount(count).
			SetRetryWaitTime(wait).
			AddRetryCondition(shouldRetry)
	}
}

func shouldRetry(r *resty.Response, err error) bool {
	if err != nil {
		return r != nil && r.Request != nil && isIdempotent(r.Request.Method)
	}

	return r.StatusCode() == http.StatusServiceUnavailable
}

func isIdempotent(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodDelete:
		return true
	default:
		return false
	}
}

// WithTransport replaces the default HTTP transport.
func WithTransport(transport http.RoundTripper) Option {
	return func(c *resty.Client) {
		c.SetTransport(transport)
	}
}

type Client struct {
	conn *resty.Client
}

// New builds a client for the API at baseURL, e.g. "http://localhost:8080".
func New(baseURL string, options ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, ErrEmptyBaseURL
	}

	conn := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(defaultTimeout).
		SetJSONMarshaler(jsoniter.ConfigCompatibleWithStandardLibrary.Marshal).
		SetJSONUnmarshaler(jsoniter.ConfigCompatibleWithStandardLibrary.Unmarshal).
		SetHeader("Accept", "application/json")

	for _, option := range options {
		option(conn)
	}

	return &Client{conn: conn}, nil
}

func execute[T any](ctx context.Context, c *Client, method string, path string, prepare func(r *resty.Request)) (T, error) {
	var result T

	r := c.conn.R().
		SetContext(ctx).
		SetResult(&result).
		SetError(&wire.MessageResponse{})

	if prepare != nil {
		prepare(r)
	}

	resp, err := r.Execute(method, path)
	if err != nil {
		return result, fmt.Errorf("execute http request: %w", err)
	}

	if resp.IsError() {
		apiErr := &APIError{StatusCode: resp.StatusCode()}
		if body, ok := resp.Error().(*wire.MessageResponse); ok && body != nil {
			apiErr.Message = body.Message
		}

		return result, apiErr
	}

	return result, nil
}

func (c *Client) Health(ctx context.Context) (wire.HealthResponse, error) {
	return execute[wire.HealthResponse](ctx, c, http.MethodGet, "/healthz", nil)
}

func (c *Client) ListBooks(ctx context.Context) ([]wire.Book, error) {
	return execute[[]wire.Book](ctx, c, http.MethodGet, "/books", nil)
}

// SearchBooks sends empty term or subject as absent filters.
func (c *Client) SearchBooks(ctx context.Context, term string, subject string) ([]wire.Book, error) {
	return execute[[]wire.Book](ctx, c, http.MethodGet, "/books/search", func(r *resty.Request) {
		if term != "" {
			r.SetQueryParam("search", term)
		}

		if subject != "" {
			r.SetQueryParam("subject", subject)
		}
	})
}

func (c *Client) GetBook(ctx context.Context, bookID string) (wire.Book, error) {
	return execute[wire.Book](ctx, c, http.MethodGet, "/books/{id}", func(r *resty.Request) {
		r.SetPathParam("id", bookID)
	})
}

func (c *Client) AddBook(ctx context.Context, req wire.AddBookRequest) (wire.Book, error) {
	return execute[wire.Book](ctx, c, http.MethodPost, "/books", func(r *resty.Request) {
		r.SetBody(req)
	})
}

func (c *Client) IssueBook(ctx context.Context, studentID string, bookID string) (wire.Issue, error) {
	return execute[wire.Issue](ctx, c, http.MethodPost, "/issue", func(r *resty.Request) {
		r.SetBody(wire.LoanRequest{StudentID: studentID, BookID: bookID})
	})
}

func (c *Client) ReturnBook(ctx context.Context, issueID string) (wire.ReturnResponse, error) {
	return execute[wire.ReturnResponse](ctx, c, http.MethodPost, "/return", func(r *resty.Request) {
		r.SetBody(wire.IssueRequest{IssueID: issueID})
	})
}

func (c *Client) RenewBook(ctx context.Context, issueID string) (wire.Issue, error) {
	return execute[wire.Issue](ctx, c, http.MethodPost, "/renew", func(r *resty.Request) {
		r.SetBody(wire.IssueRequest{IssueID: issueID})
	})
}

func (c *Client) StudentIssues(ctx context.Context, studentID string) ([]wire.Issue, error) {
	return execute[[]wire.Issue](ctx, c, http.MethodGet, "/issues/student/{studentId}", func(r *resty.Request) {
		r.SetPathParam("studentId", studentID)
	})
}

func (c *Client) ReserveBook(ctx context.Context, studentID string, bookID string) (wire.Reservation, error) {
	return execute[wire.Reservation](ctx, c, http.MethodPost, "/reserve", func(r *resty.Request) {
		r.SetBody(wire.LoanRequest{StudentID: studentID, BookID: bookID})
	})
}

func (c *Client) CancelReservation(ctx context.Context, reservationID string) (wire.MessageResponse, error) {
	return execute[wire.MessageResponse](ctx, c, http.MethodDelete, "/reservations/{id}", func(r *resty.Request) {
		r.SetPathParam("id", reservationID)
	})
}

func (c *Client) StudentReservations(ctx context.Context, studentID string) ([]wire.Reservation, error) {
	return execute[[]wire.Reservation](ctx, c, http.MethodGet, "/reservations/student/{studentId}", func(r *resty.Request) {
		r.SetPathParam("studentId", studentID)
	})
}

func (c *Client) Stats(ctx context.Context) (wire.Stats, error) {
	return execute[wire.Stats](ctx, c, http.MethodGet, "/stats", nil)
}

// BookActivity sends zero from or until as absent bounds.
func (c *Client) BookActivity(ctx context.Context, bookID string, from time.Time, until time.Time) ([]wire.ActivityEntry, error) {
	return execute[[]wire.ActivityEntry](ctx, c, http.MethodGet, "/books/{id}/activity", func(r *resty.Request) {
		r.SetPathParam("id", bookID)

		if !from.IsZero() {
			r.SetQueryParam("from", from.UTC().Format(time.RFC3339))
		}

		if !until.IsZero() {
			r.SetQueryParam("until", until.UTC().Format(time.RFC3339))
		}
	})
}

func (c *Client) StudentHistory(ctx context.Context, studentID string) (wire.History, error) {
	return execute[wire.History](ctx, c, http.MethodGet, "/history/student/{studentId}", func(r *resty.Request) {
		r.SetPathParam("studentId", studentID)
	})
}
