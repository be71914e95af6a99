// Package librarystats aggregates the circulation desk dashboard figures.
//
// Book figures are sums of copy counts, not numbers of catalog entries.
package librarystats
