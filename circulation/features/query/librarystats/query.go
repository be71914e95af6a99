package librarystats

import (
	"time"
)

// Query carries the instant the overdue figure is evaluated at.
type Query struct {
	Now time.Time
}

// BuildQuery creates a new Query.
func BuildQuery(now time.Time) Query {
	return Query{Now: now}
}
