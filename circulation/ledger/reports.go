package ledger

import (
	"context"

	"github.com/campusops/library-circulation/circulation/core"
	"github.com/campusops/library-circulation/circulation/features/query/librarystats"
	"github.com/campusops/library-circulation/circulation/features/query/studenthistory"
)

// GetStats aggregates the dashboard figures without changing any state.
func (l *Ledger) GetStats(ctx context.Context) librarystats.Stats {
	_, finish := l.observe(ctx, operationGetStats)
	defer finish(nil)

	l.mu.Lock()
	defer l.mu.Unlock()

	return librarystats.ProjectStats(l.state.books, l.state.issues, l.state.reservations, librarystats.BuildQuery(l.now()))
}

// GetStudentHistory reconciles and returns all issues and reservations of the student.
func (l *Ledger) GetStudentHistory(ctx context.Context, studentID core.StudentIDString) studenthistory.History {
	ctx, finish := l.observe(ctx, operationGetStudentHistory)
	defer finish(nil)

	l.mu.Lock()
	defer l.mu.Unlock()

	l.reconcileLocked(ctx)

	return studenthistory.ProjectHistory(l.state.issues, l.state.reservations, studenthistory.BuildQuery(studentID))
}

// Reconcile promotes past-due issues to overdue with fines of whole overdue days times the fine
// per day, and cancels reservations past their expiry date.
func (l *Ledger) Reconcile(ctx context.Context) ReconcileReport {
	ctx, finish := l.observe(ctx, operationReconcile)
	defer finish(nil)

	l.mu.Lock()
	defer l.mu.Unlock()

	return l.reconcileLocked(ctx)
}

func (l *Ledger) reconcileLocked(ctx context.Context) ReconcileReport {
	report := l.state.reconcile(l.now(), l.policy)

	if report.HasChanges() {
		l.logDebug(ctx, "ledger reconciled",
			"promoted_to_overdue", report.PromotedToOverdue,
			"fines_updated", report.FinesUpdated,
			"expired_reservations", report.ExpiredReservations)
	}

	return report
}
