package searchbooks

import (
	"strings"
)

// Query holds the optional filters. An empty field does not filter.
type Query struct {
	Term    string
	Subject string
}

// BuildQuery creates a new Query, trimming surrounding whitespace.
func BuildQuery(term string, subject string) Query {
	return Query{
		Term:    strings.TrimSpace(term),
		Subject: strings.TrimSpace(subject),
	}
}
