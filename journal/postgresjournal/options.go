package postgresjournal

import (
	"errors"
	"regexp"

	"github.com/campusops/library-circulation/journal"
)

// ErrInvalidTableName is returned for table names which are not plain lower case SQL identifiers.
var ErrInvalidTableName = errors.New("table name must match ^[a-z_][a-z0-9_]*$")

var tableNamePattern = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// Option defines a functional option for configuring Journal.
type Option func(*Journal) error

// WithTableName sets the table name for the Journal.
func WithTableName(tableName string) Option {
	return func(j *Journal) error {
		if tableName == "" {
			return journal.ErrEmptyTableName
		}

		if !tableNamePattern.MatchString(tableName) {
			return ErrInvalidTableName
		}

		j.tableName = tableName

		return nil
	}
}

// WithLogger sets the logger for the Journal.
//
// Debug level: SQL statements with execution timing
// Info level: event counts, durations, concurrency conflicts
// Warn level: cleanup failures
// Error level: failures that cause operation failures.
func WithLogger(logger journal.Logger) Option {
	return func(j *Journal) error {
		j.logger = logger
		return nil
	}
}

// WithMetrics sets the metrics collector which receives query/append durations,
// concurrency conflicts and database errors.
func WithMetrics(collector journal.MetricsCollector) Option {
	return func(j *Journal) error {
		j.metricsCollector = collector
		return nil
	}
}

// WithTracing sets the tracing collector; Query and Append each open one span.
func WithTracing(collector journal.TracingCollector) Option {
	return func(j *Journal) error {
		j.tracingCollector = collector
		return nil
	}
}
