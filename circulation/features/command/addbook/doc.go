// Package addbook decides on new catalog entries.
package addbook
