// Package searchbooks filters the catalog by a free-text term and a subject.
package searchbooks
