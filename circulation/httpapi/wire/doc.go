// Package wire holds the JSON documents of the circulation REST API, shared by the server in
// httpapi and the client in circulation/client. Field names are camelCase and dates are
// RFC 3339 timestamps in UTC.
package wire
