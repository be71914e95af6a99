// Package studenthistory is the audit view of everything a student has borrowed or reserved.
package studenthistory
