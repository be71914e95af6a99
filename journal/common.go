package journal

import (
	"errors"
)

var (
	ErrEmptyTableName              = errors.New("empty journal table name supplied")
	ErrNilDatabaseConnection       = errors.New("database connection must not be nil")
	ErrConcurrencyConflict         = errors.New("concurrency conflict, no rows were appended")
	ErrQueryingEventsFailed        = errors.New("querying events failed")
	ErrAppendingEventFailed        = errors.New("appending event failed")
	ErrScanningDBRowFailed         = errors.New("scanning db row failed")
	ErrBuildingQueryFailed         = errors.New("building query failed")
	ErrBuildingStorableEventFailed = errors.New("building storable event failed")
	ErrCreatingSchemaFailed        = errors.New("creating journal schema failed")
)

// MaxSequenceNumberUint is the highest sequence number of the events matching a Filter.
type MaxSequenceNumberUint = uint
