package core

import (
	"time"
)

// ReservationStatus is the lifecycle state of a Reservation.
type ReservationStatus string

const (
	ReservationStatusActive    ReservationStatus = "active"
	ReservationStatusFulfilled ReservationStatus = "fulfilled"
	ReservationStatusCancelled ReservationStatus = "cancelled"
)

// Reservation is a queued hold on a book with no available copies.
// Position is 1-based per book and assigned once at creation.
type Reservation struct {
	ID              ReservationIDString
	StudentID       StudentIDString
	BookID          BookIDString
	ReservationDate time.Time
	ExpiryDate      time.Time
	Status          ReservationStatus
	Position        int
}

// IsExpiredAt reports whether an active reservation has passed its expiry date at now.
func (r Reservation) IsExpiredAt(now time.Time) bool {
	return r.Status == ReservationStatusActive && r.ExpiryDate.Before(now)
}
