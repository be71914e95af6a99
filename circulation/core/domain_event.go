package core

import (
	"time"
)

// DomainEvents is a slice of DomainEvent instances.
type DomainEvents = []DomainEvent

// BookIDPayloadKey is the top-level payload field every event carries. The ledger's own stream
// selects by event type only; book activity reads narrow the journal to one book with it.
const BookIDPayloadKey = "BookID"

// DomainEvent is a state change of the circulation ledger.
type DomainEvent interface {
	// EventType returns the string identifier for this event type.
	EventType() string

	// HasOccurredAt returns when this event occurred.
	HasOccurredAt() time.Time
}

// AllEventTypes lists the type identifiers of every circulation event.
func AllEventTypes() []string {
	return []string{
		BookAddedToCatalogEventType,
		BookIssuedEventType,
		BookReturnedEventType,
		LoanRenewedEventType,
		BookReservedEventType,
		ReservationCancelledEventType,
	}
}
