package core

import (
	"errors"
)

// Business errors. Decide functions return them wrapped in a RefusalError carrying a
// human-readable reason, so callers match them with errors.Is.
var (
	ErrNotFound             = errors.New("not found")
	ErrUnavailable          = errors.New("no copies available")
	ErrDuplicateIssue       = errors.New("book already issued to student")
	ErrDuplicateReservation = errors.New("book already reserved by student")
	ErrRenewalLimitReached  = errors.New("renewal limit reached")
	ErrOverdue              = errors.New("issue is overdue")
	ErrAlreadyAvailable     = errors.New("book is available")
	ErrAlreadyReturned      = errors.New("issue already returned")
	ErrReservationClosed    = errors.New("reservation is not active")
	ErrInvalidBook          = errors.New("invalid book")
	ErrDuplicateBook        = errors.New("book already in catalog")
)

// RefusalError is a business rule violation: Kind is one of the sentinel errors above and
// Reason is the message shown to the caller.
type RefusalError struct {
	Kind   error
	Reason string
}

// Refuse builds a RefusalError.
func Refuse(kind error, reason string) error {
	return &RefusalError{Kind: kind, Reason: reason}
}

func (e *RefusalError) Error() string {
	return e.Reason
}

func (e *RefusalError) Unwrap() error {
	return e.Kind
}

// IsRefusal reports whether err is a business rule violation rather than an infrastructure failure.
func IsRefusal(err error) bool {
	var refusal *RefusalError

	return errors.As(err, &refusal)
}
