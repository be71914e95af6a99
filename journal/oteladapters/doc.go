// Package oteladapters implements the journal observability interfaces on OpenTelemetry,
// so ledger and journal can report to any OTel MeterProvider, TracerProvider and LoggerProvider.
package oteladapters
