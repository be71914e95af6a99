// Package testdoubles provides spies for the observability interfaces of package journal.
//
// The spies record every call so tests can assert on log messages, metric labels and span
// outcomes without an OpenTelemetry backend. All spies are safe for concurrent use.
package testdoubles
