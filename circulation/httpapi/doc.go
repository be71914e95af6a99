// Package httpapi exposes a circulation ledger as JSON REST endpoints on echo.
//
// Business refusals become 4xx responses carrying the refusal reason as {"message": ...};
// journal failures become 5xx. Every error body has the same {"message": ...} shape.
package httpapi
