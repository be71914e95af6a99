package cancelreservation

import (
	"github.com/campusops/library-circulation/circulation/core"
)

const (
	failureReasonReservationNotFound = "Reservation not found"
	failureReasonNotActive           = "Reservation is no longer active"
)

// State holds the reservation being cancelled, if the ledger knows it.
type State struct {
	ReservationKnown bool
	Reservation      core.Reservation
}

// Decide determines whether the reservation can be cancelled.
// Only active reservations can be; the positions of other reservations are left untouched.
func Decide(s State, command Command) core.DecisionResult {
	if !s.ReservationKnown {
		return core.ErrorDecision(core.Refuse(core.ErrNotFound, failureReasonReservationNotFound))
	}

	if s.Reservation.Status != core.ReservationStatusActive {
		return core.ErrorDecision(core.Refuse(core.ErrReservationClosed, failureReasonNotActive))
	}

	return core.SuccessDecision(core.BuildReservationCancelled(s.Reservation, command.OccurredAt))
}
