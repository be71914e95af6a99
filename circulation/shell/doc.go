// Package shell holds the imperative glue between the pure circulation core and the journal:
// mapping domain events to and from storable events, event metadata and the retry loop
// used to resolve optimistic concurrency conflicts.
package shell
