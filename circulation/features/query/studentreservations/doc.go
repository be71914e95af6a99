// Package studentreservations lists the reservations a student is still waiting on or has collected.
package studentreservations
