package shell

import (
	"errors"

	jsoniter "github.com/json-iterator/go"

	"github.com/campusops/library-circulation/circulation/core"
	"github.com/campusops/library-circulation/journal"
)

var (
	// ErrMappingToDomainEventFailed is returned when domain event conversion fails.
	ErrMappingToDomainEventFailed = errors.New("mapping to domain event failed")

	// ErrMappingToDomainEventUnknownEventType is returned for unrecognized event types.
	ErrMappingToDomainEventUnknownEventType = errors.New("unknown event type")
)

// DomainEventsFrom converts multiple StorableEvents to DomainEvents.
func DomainEventsFrom(storableEvents journal.StorableEvents) (core.DomainEvents, error) {
	domainEvents := make(core.DomainEvents, 0, len(storableEvents))

	for _, storableEvent := range storableEvents {
		domainEvent, err := DomainEventFrom(storableEvent)
		if err != nil {
			return nil, err
		}

		domainEvents = append(domainEvents, domainEvent)
	}

	return domainEvents, nil
}

// DomainEventFrom converts a StorableEvent to its corresponding DomainEvent.
func DomainEventFrom(storableEvent journal.StorableEvent) (core.DomainEvent, error) {
	switch storableEvent.EventType {
	case core.BookAddedToCatalogEventType:
		return unmarshalPayload[core.BookAddedToCatalog](storableEvent.PayloadJSON)

	case core.BookIssuedEventType:
		return unmarshalPayload[core.BookIssued](storableEvent.PayloadJSON)

	case core.BookReturnedEventType:
		return unmarshalPayload[core.BookReturned](storableEvent.PayloadJSON)

	case core.LoanRenewedEventType:
		return unmarshalPayload[core.LoanRenewed](storableEvent.PayloadJSON)

	case core.BookReservedEventType:
		return unmarshalPayload[core.BookReserved](storableEvent.PayloadJSON)

	case core.ReservationCancelledEventType:
		return unmarshalPayload[core.ReservationCancelled](storableEvent.PayloadJSON)
	}

	return nil, errors.Join(ErrMappingToDomainEventFailed, ErrMappingToDomainEventUnknownEventType)
}

func unmarshalPayload[T core.DomainEvent](payloadJSON []byte) (core.DomainEvent, error) {
	var payload T

	err := jsoniter.ConfigFastest.Unmarshal(payloadJSON, &payload)
	if err != nil {
		return nil, errors.Join(ErrMappingToDomainEventFailed, err)
	}

	return payload, nil
}
