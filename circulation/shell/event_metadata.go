package shell

import (
	"errors"

	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"

	"github.com/campusops/library-circulation/journal"
)

// ErrMappingToEventMetadataFailed is returned when metadata conversion fails.
var ErrMappingToEventMetadataFailed = errors.New("mapping to event metadata failed")

// EventMetadata contains event tracking information.
//
// CorrelationID groups the events written by one request; CausationID is the message that
// led to the event (the request itself for command events).
type EventMetadata struct {
	MessageID     string
	CausationID   string
	CorrelationID string
	Operation     string
}

// BuildEventMetadata creates EventMetadata with a fresh message id.
func BuildEventMetadata(operation string, causationID uuid.UUID, correlationID uuid.UUID) EventMetadata {
	return EventMetadata{
		MessageID:     uuid.New().String(),
		CausationID:   causationID.String(),
		CorrelationID: correlationID.String(),
		Operation:     operation,
	}
}

// EventMetadataFrom extracts EventMetadata from a StorableEvent.
func EventMetadataFrom(storableEvent journal.StorableEvent) (EventMetadata, error) {
	metadata := new(EventMetadata)

	err := jsoniter.ConfigFastest.Unmarshal(storableEvent.MetadataJSON, metadata)
	if err != nil {
		return EventMetadata{}, errors.Join(ErrMappingToEventMetadataFailed, err)
	}

	return *metadata, nil
}
