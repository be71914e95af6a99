package core

import (
	"time"
)

const (
	DefaultLoanPeriod            = 14 * 24 * time.Hour
	DefaultMaxRenewals           = 3
	DefaultFinePerDay            = 2
	DefaultReservationHoldPeriod = 30 * 24 * time.Hour

	fineDay = 24 * time.Hour
)

// Policy holds the circulation rules of the library.
type Policy struct {
	LoanPeriod            time.Duration
	MaxRenewals           int
	FinePerDay            int
	ReservationHoldPeriod time.Duration
}

// DefaultPolicy returns 14 day loans, 3 renewals, a fine of 2 per overdue day and 30 day holds.
func DefaultPolicy() Policy {
	return Policy{
		LoanPeriod:            DefaultLoanPeriod,
		MaxRenewals:           DefaultMaxRenewals,
		FinePerDay:            DefaultFinePerDay,
		ReservationHoldPeriod: DefaultReservationHoldPeriod,
	}
}

// FineFor returns floor((now - dueDate) / 1 day) * FinePerDay, or 0 if now is not past dueDate.
func (p Policy) FineFor(dueDate time.Time, now time.Time) int {
	if !dueDate.Before(now) {
		return 0
	}

	return int(now.Sub(dueDate)/fineDay) * p.FinePerDay
}
