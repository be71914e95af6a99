// Package studentissues lists the loans a student still has out.
package studentissues
