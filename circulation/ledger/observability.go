package ledger

import (
	"context"
	"errors"
	"time"

	"github.com/campusops/library-circulation/circulation/core"
	"github.com/campusops/library-circulation/journal"
)

const (
	// OperationDurationMetric records how long each ledger operation took.
	OperationDurationMetric = "circulation_operation_duration_seconds"

	// OperationsMetric counts ledger operations by operation and status.
	OperationsMetric = "circulation_operations_total"

	StatusSuccess  = "success"
	StatusRefused  = "refused"
	StatusConflict = "conflict"
	StatusError    = "error"
)

const (
	operationAddBook                 = "addBook"
	operationIssueBook               = "issueBook"
	operationReturnBook              = "returnBook"
	operationRenewBook               = "renewBook"
	operationReserveBook             = "reserveBook"
	operationCancelReservation       = "cancelReservation"
	operationListBooks               = "listBooks"
	operationGetBook                 = "getBook"
	operationSearchBooks             = "searchBooks"
	operationListStudentIssues       = "listStudentIssues"
	operationListStudentReservations = "listStudentReservations"
	operationGetStats                = "getStats"
	operationGetStudentHistory       = "getStudentHistory"
	operationReconcile               = "reconcile"
	operationRestore                 = "restore"
	operationGetBookActivity         = "getBookActivity"
)

// observe starts a span for operation and returns the function that records its outcome.
func (l *Ledger) observe(ctx context.Context, operation string) (context.Context, func(err error)) {
	start := time.Now()

	var span journal.SpanContext
	if l.tracingCollector != nil {
		ctx, span = l.tracingCollector.StartSpan(ctx, "ledger."+operation, map[string]string{"operation": operation})
	}

	return ctx, func(err error) {
		status := statusOf(err)
		labels := map[string]string{"operation": operation, "status": status}

		journal.RecordDuration(ctx, l.metricsCollector, OperationDurationMetric, time.Since(start), labels)
		journal.IncrementCounter(ctx, l.metricsCollector, OperationsMetric, labels)

		if span != nil {
			spanAttrs := map[string]string{}
			if err != nil {
				spanAttrs["error"] = err.Error()
			}

			l.tracingCollector.FinishSpan(span, spanStatusOf(status), spanAttrs)
		}

		switch status {
		case StatusRefused:
			l.logDebug(ctx, "operation refused", "operation", operation, "reason", err.Error())
		case StatusConflict:
			l.logWarn(ctx, "operation gave up after journal conflicts", "operation", operation)
		case StatusError:
			l.logError(ctx, "operation failed", "operation", operation, "error", err.Error())
		}
	}
}

func statusOf(err error) string {
	switch {
	case err == nil:
		return StatusSuccess
	case core.IsRefusal(err):
		return StatusRefused
	case errors.Is(err, journal.ErrConcurrencyConflict):
		return StatusConflict
	default:
		return StatusError
	}
}

func spanStatusOf(status string) string {
	switch status {
	case StatusSuccess, StatusRefused:
		return journal.SpanStatusSuccess
	case StatusConflict:
		return journal.SpanStatusConflict
	default:
		return journal.SpanStatusError
	}
}

func (l *Ledger) logDebug(ctx context.Context, msg string, args ...any) {
	switch {
	case l.contextualLogger != nil:
		l.contextualLogger.DebugContext(ctx, msg, args...)
	case l.logger != nil:
		l.logger.Debug(msg, args...)
	}
}

func (l *Ledger) logInfo(ctx context.Context, msg string, args ...any) {
	switch {
	case l.contextualLogger != nil:
		l.contextualLogger.InfoContext(ctx, msg, args...)
	case l.logger != nil:
		l.logger.Info(msg, args...)
	}
}

func (l *Ledger) logWarn(ctx context.Context, msg string, args ...any) {
	switch {
	case l.contextualLogger != nil:
		l.contextualLogger.WarnContext(ctx, msg, args...)
	case l.logger != nil:
		l.logger.Warn(msg, args...)
	}
}

func (l *Ledger) logError(ctx context.Context, msg string, args ...any) {
	switch {
	case l.contextualLogger != nil:
		l.contextualLogger.ErrorContext(ctx, msg, args...)
	case l.logger != nil:
		l.logger.Error(msg, args...)
	}
}
