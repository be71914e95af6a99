package postgresjournal

import (
	"context"
	"database/sql"
	"errors"
	"math"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // dialect registration
	"github.com/doug-martin/goqu/v9/exp"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"
	jsoniter "github.com/json-iterator/go"

	"github.com/campusops/library-circulation/journal"
	"github.com/campusops/library-circulation/journal/postgresjournal/internal/adapters"
)

const (
	defaultTableName               = "circulation_events"
	logMsgBuildSelectQueryFailed   = "failed to build select query"
	logMsgBuildInsertQueryFailed   = "failed to build insert query"
	logMsgBuildLockQueryFailed     = "failed to build advisory lock query"
	logMsgBeginTxFailed            = "failed to begin append transaction"
	logMsgCommitTxFailed           = "failed to commit append transaction"
	logMsgRollbackTxFailed         = "failed to roll back append transaction"
	logMsgDBQueryFailed            = "database query execution failed"
	logMsgDBAppendFailed           = "database execution failed during event append"
	logMsgCloseRowsFailed          = "failed to close database rows"
	logMsgScanRowFailed            = "failed to scan database row"
	logMsgBuildStorableEventFailed = "failed to build storable event from database row"
	logMsgCreateSchemaFailed       = "failed to create journal schema"
	logMsgSchemaReady              = "schema ready"
	logMsgQueryCompleted           = "query completed"
	logMsgEventsAppended           = "events appended"
	logMsgConcurrencyConflict      = "concurrency conflict detected"
	logMsgSQLExecuted              = "executed sql for: "
	logMsgOperation                = "journal operation: "
	logAttrError                   = "error"
	logAttrQuery                   = "query"
	logAttrTable                   = "table"
	logAttrEventType               = "event_type"
	logAttrEventCount              = "event_count"
	logAttrDurationMS              = "duration_ms"
	logAttrExpectedSequence        = "expected_sequence"
	logActionQuery                 = "query"
	logActionAppend                = "append"
	metricQueryDuration            = "journal_query_duration_seconds"
	metricAppendDuration           = "journal_append_duration_seconds"
	metricConcurrencyConflicts     = "journal_concurrency_conflicts_total"
	metricDatabaseErrors           = "journal_database_errors_total"
	labelOperation                 = "operation"
	labelStatus                    = "status"
	spanNameQuery                  = "journal.query"
	spanNameAppend                 = "journal.append"
	colEventType                   = "event_type"
	colOccurredAt                  = "occurred_at"
	colPayload                     = "payload"
	colMetadata                    = "metadata"
	colSequenceNumber              = "sequence_number"
	cteContext                     = "context"
	cteVals                        = "vals"
	dialectPostgres                = "postgres"
	aliasMaxSeq                    = "max_seq"
	castText                       = "?::text"
	castTimestamp                  = "?::timestamp with time zone"
	castJsonb                      = "?::jsonb"
	payloadContains                = "payload @> ?::jsonb"
	funcAdvisoryXactLock           = "pg_advisory_xact_lock"
	funcHashText                   = "hashtext"
)

type sqlQueryString = string

// Journal is the PostgreSQL implementation of the circulation journal.
type Journal struct {
	db               adapters.DBAdapter
	tableName        string
	logger           journal.Logger
	metricsCollector journal.MetricsCollector
	tracingCollector journal.TracingCollector
}

type queryResultRow struct {
	eventType         string
	occurredAt        time.Time
	payload           []byte
	metadata          []byte
	maxSequenceNumber journal.MaxSequenceNumberUint
}

// NewJournalFromPGXPool creates a Journal on a pgx pool.
func NewJournalFromPGXPool(db *pgxpool.Pool, options ...Option) (Journal, error) {
	if db == nil {
		return Journal{}, journal.ErrNilDatabaseConnection
	}

	return newJournal(adapters.NewPGXAdapter(db), options...)
}

// NewJournalFromSQLDB creates a Journal on a sql.DB (lib/pq driver).
func NewJournalFromSQLDB(db *sql.DB, options ...Option) (Journal, error) {
	if db == nil {
		return Journal{}, journal.ErrNilDatabaseConnection
	}

	return newJournal(adapters.NewSQLAdapter(db), options...)
}

// NewJournalFromSQLX creates a Journal on a sqlx.DB.
func NewJournalFromSQLX(db *sqlx.DB, options ...Option) (Journal, error) {
	if db == nil {
		return Journal{}, journal.ErrNilDatabaseConnection
	}

	return newJournal(adapters.NewSQLXAdapter(db), options...)
}

func newJournal(db adapters.DBAdapter, options ...Option) (Journal, error) {
	j := Journal{
		db:        db,
		tableName: defaultTableName,
	}

	for _, option := range options {
		if err := option(&j); err != nil {
			return Journal{}, err
		}
	}

	return j, nil
}

// Query retrieves the events matching the filter in sequence order,
// plus the max sequence number of this filtered stream at the time of the query.
func (j Journal) Query(ctx context.Context, filter journal.Filter) (
	journal.StorableEvents,
	journal.MaxSequenceNumberUint,
	error,
) {

	ctx, span := j.startSpan(ctx, spanNameQuery, logActionQuery)

	sqlQuery, buildErr := j.buildSelectQuery(filter)
	if buildErr != nil {
		j.logError(logMsgBuildSelectQueryFailed, buildErr)
		j.finishSpan(span, journal.SpanStatusError)

		return nil, 0, buildErr
	}

	start := time.Now()
	rows, queryErr := j.db.Query(ctx, sqlQuery)
	if queryErr != nil {
		j.logError(logMsgDBQueryFailed, queryErr, logAttrQuery, sqlQuery)
		j.recordError(ctx, logActionQuery)
		j.finishSpan(span, journal.SpanStatusError)

		return nil, 0, errors.Join(journal.ErrQueryingEventsFailed, queryErr)
	}
	defer j.closeRows(rows)

	events, maxSequenceNumber, scanErr := j.processQueryResults(rows)
	duration := time.Since(start)
	j.logQueryWithDuration(sqlQuery, logActionQuery, duration)

	if scanErr != nil {
		j.recordError(ctx, logActionQuery)
		j.finishSpan(span, journal.SpanStatusError)

		return nil, 0, scanErr
	}

	journal.RecordDuration(ctx, j.metricsCollector, metricQueryDuration, duration, j.labels(logActionQuery, journal.SpanStatusSuccess))
	j.logOperation(logMsgQueryCompleted, logAttrEventCount, len(events), logAttrDurationMS, toMilliseconds(duration))
	j.finishSpan(span, journal.SpanStatusSuccess)

	return events, maxSequenceNumber, nil
}

func (j Journal) processQueryResults(rows adapters.DBRows) (
	journal.StorableEvents,
	journal.MaxSequenceNumberUint,
	error,
) {

	result := queryResultRow{}
	events := make(journal.StorableEvents, 0)
	maxSequenceNumber := journal.MaxSequenceNumberUint(0)

	for rows.Next() {
		if err := rows.Scan(&result.eventType, &result.occurredAt, &result.payload, &result.metadata, &result.maxSequenceNumber); err != nil {
			j.logError(logMsgScanRowFailed, err)

			return nil, 0, errors.Join(journal.ErrScanningDBRowFailed, err)
		}

		event, buildErr := journal.BuildStorableEvent(result.eventType, result.occurredAt, result.payload, result.metadata)
		if buildErr != nil {
			j.logError(logMsgBuildStorableEventFailed, buildErr, logAttrEventType, result.eventType)

			return nil, 0, errors.Join(journal.ErrBuildingStorableEventFailed, buildErr)
		}

		events = append(events, event)
		maxSequenceNumber = result.maxSequenceNumber
	}

	if err := rows.Err(); err != nil {
		j.logError(logMsgScanRowFailed, err)

		return nil, 0, errors.Join(journal.ErrScanningDBRowFailed, err)
	}

	return events, maxSequenceNumber, nil
}

// Append appends one or more events atomically if the max sequence number of the stream selected
// by filter still equals expectedMaxSequenceNumber, and returns the sequence number of the last
// appended event.
//
// The filter should be the same one used for the Query the business decision was based on.
func (j Journal) Append(
	ctx context.Context,
	filter journal.Filter,
	expectedMaxSequenceNumber journal.MaxSequenceNumberUint,
	event journal.StorableEvent,
	additionalEvents ...journal.StorableEvent,
) (journal.MaxSequenceNumberUint, error) {

	ctx, span := j.startSpan(ctx, spanNameAppend, logActionAppend)

	allEvents := append(journal.StorableEvents{event}, additionalEvents...)

	sqlQuery, buildErr := j.buildAppendQuery(allEvents, filter, expectedMaxSequenceNumber)
	if buildErr != nil {
		j.logError(logMsgBuildInsertQueryFailed, buildErr, logAttrEventCount, len(allEvents))
		j.finishSpan(span, journal.SpanStatusError)

		return 0, buildErr
	}

	lockQuery, lockErr := j.buildAppendLockQuery()
	if lockErr != nil {
		j.logError(logMsgBuildLockQueryFailed, lockErr, logAttrTable, j.tableName)
		j.finishSpan(span, journal.SpanStatusError)

		return 0, lockErr
	}

	start := time.Now()
	appended, lastSequenceNumber, execErr := j.appendWithinTransaction(ctx, lockQuery, sqlQuery)
	if execErr != nil {
		j.recordError(ctx, logActionAppend)
		j.finishSpan(span, journal.SpanStatusError)

		return 0, execErr
	}

	duration := time.Since(start)
	j.logQueryWithDuration(sqlQuery, logActionAppend, duration)

	if appended < len(allEvents) {
		j.logOperation(logMsgConcurrencyConflict, logAttrEventCount, len(allEvents), logAttrExpectedSequence, expectedMaxSequenceNumber)
		journal.IncrementCounter(ctx, j.metricsCollector, metricConcurrencyConflicts, j.labels(logActionAppend, journal.SpanStatusConflict))
		j.finishSpan(span, journal.SpanStatusConflict)

		return 0, journal.ErrConcurrencyConflict
	}

	journal.RecordDuration(ctx, j.metricsCollector, metricAppendDuration, duration, j.labels(logActionAppend, journal.SpanStatusSuccess))
	j.logOperation(logMsgEventsAppended, logAttrEventCount, len(allEvents), logAttrDurationMS, toMilliseconds(duration))
	j.finishSpan(span, journal.SpanStatusSuccess)

	return lastSequenceNumber, nil
}

// appendWithinTransaction serializes appenders on the table's advisory lock, so the conditional
// insert reads MAX(sequence_number) only after every earlier append has committed.
func (j Journal) appendWithinTransaction(
	ctx context.Context,
	lockQuery sqlQueryString,
	insertQuery sqlQueryString,
) (int, journal.MaxSequenceNumberUint, error) {

	tx, beginErr := j.db.Begin(ctx)
	if beginErr != nil {
		j.logError(logMsgBeginTxFailed, beginErr)

		return 0, 0, errors.Join(journal.ErrAppendingEventFailed, beginErr)
	}
	defer j.rollback(ctx, tx)

	if _, lockErr := tx.Exec(ctx, lockQuery); lockErr != nil {
		j.logError(logMsgDBAppendFailed, lockErr, logAttrQuery, lockQuery)

		return 0, 0, errors.Join(journal.ErrAppendingEventFailed, lockErr)
	}

	appended, lastSequenceNumber, insertErr := j.insertEvents(ctx, tx, insertQuery)
	if insertErr != nil {
		return 0, 0, insertErr
	}

	if commitErr := tx.Commit(ctx); commitErr != nil {
		j.logError(logMsgCommitTxFailed, commitErr)

		return 0, 0, errors.Join(journal.ErrAppendingEventFailed, commitErr)
	}

	return appended, lastSequenceNumber, nil
}

// insertEvents runs the conditional insert and drains its rows before the caller commits.
func (j Journal) insertEvents(
	ctx context.Context,
	tx adapters.DBTx,
	insertQuery sqlQueryString,
) (int, journal.MaxSequenceNumberUint, error) {

	rows, execErr := tx.Query(ctx, insertQuery)
	if execErr != nil {
		j.logError(logMsgDBAppendFailed, execErr, logAttrQuery, insertQuery)

		return 0, 0, errors.Join(journal.ErrAppendingEventFailed, execErr)
	}
	defer j.closeRows(rows)

	appended := 0
	lastSequenceNumber := journal.MaxSequenceNumberUint(0)

	for rows.Next() {
		var sequenceNumber journal.MaxSequenceNumberUint
		if err := rows.Scan(&sequenceNumber); err != nil {
			j.logError(logMsgScanRowFailed, err)

			return 0, 0, errors.Join(journal.ErrAppendingEventFailed, journal.ErrScanningDBRowFailed, err)
		}

		appended++
		lastSequenceNumber = max(lastSequenceNumber, sequenceNumber)
	}

	if err := rows.Err(); err != nil {
		j.logError(logMsgDBAppendFailed, err)

		return 0, 0, errors.Join(journal.ErrAppendingEventFailed, err)
	}

	return appended, lastSequenceNumber, nil
}

func (j Journal) rollback(ctx context.Context, tx adapters.DBTx) {
	if err := tx.Rollback(ctx); err != nil {
		j.logError(logMsgRollbackTxFailed, err)
	}
}

// buildAppendLockQuery builds SELECT pg_advisory_xact_lock(hashtext('<table>')).
func (j Journal) buildAppendLockQuery() (sqlQueryString, error) {
	sqlQuery, _, toSQLErr := goqu.Dialect(dialectPostgres).
		Select(goqu.Func(funcAdvisoryXactLock, goqu.Func(funcHashText, j.tableName))).
		ToSQL()
	if toSQLErr != nil {
		return "", errors.Join(journal.ErrBuildingQueryFailed, toSQLErr)
	}

	return sqlQuery, nil
}

func (j Journal) buildSelectQuery(filter journal.Filter) (sqlQueryString, error) {
	selectStmt := goqu.Dialect(dialectPostgres).
		From(j.tableName).
		Select(colEventType, colOccurredAt, colPayload, colMetadata, colSequenceNumber).
		Order(goqu.I(colSequenceNumber).Asc())

	whereExpression, err := j.whereExpression(filter)
	if err != nil {
		return "", err
	}

	sqlQuery, _, toSQLErr := selectStmt.Where(whereExpression).ToSQL()
	if toSQLErr != nil {
		return "", errors.Join(journal.ErrBuildingQueryFailed, toSQLErr)
	}

	return sqlQuery, nil
}

// buildAppendQuery builds
//
//	WITH context AS (SELECT MAX(sequence_number) AS max_seq FROM t WHERE <filter>),
//	     vals AS (SELECT ... UNION ALL SELECT ...)
//	INSERT INTO t (...) SELECT vals.* FROM context, vals WHERE COALESCE(max_seq, 0) = <expected>
//	RETURNING sequence_number
func (j Journal) buildAppendQuery(
	events journal.StorableEvents,
	filter journal.Filter,
	expectedMaxSequenceNumber journal.MaxSequenceNumberUint,
) (sqlQueryString, error) {

	builder := goqu.Dialect(dialectPostgres)

	whereExpression, err := j.whereExpression(filter)
	if err != nil {
		return "", err
	}

	cteStmt := builder.
		From(j.tableName).
		Select(goqu.MAX(colSequenceNumber).As(aliasMaxSeq)).
		Where(whereExpression)

	valuesStmt := j.selectEventValues(builder, events[0])
	for _, event := range events[1:] {
		valuesStmt = valuesStmt.UnionAll(j.selectEventValues(builder, event))
	}

	insertStmt := builder.
		Insert(j.tableName).
		Cols(colEventType, colOccurredAt, colPayload, colMetadata).
		With(cteContext, cteStmt).
		With(cteVals, valuesStmt).
		FromQuery(
			builder.From(cteContext, cteVals).
				Select(
					goqu.I(cteVals+"."+colEventType),
					goqu.I(cteVals+"."+colOccurredAt),
					goqu.I(cteVals+"."+colPayload),
					goqu.I(cteVals+"."+colMetadata),
				).
				Where(goqu.COALESCE(goqu.C(aliasMaxSeq), 0).Eq(goqu.V(expectedMaxSequenceNumber))),
		).
		Returning(colSequenceNumber)

	sqlQuery, _, toSQLErr := insertStmt.ToSQL()
	if toSQLErr != nil {
		return "", errors.Join(journal.ErrBuildingQueryFailed, toSQLErr)
	}

	return sqlQuery, nil
}

func (j Journal) selectEventValues(builder goqu.DialectWrapper, event journal.StorableEvent) *goqu.SelectDataset {
	return builder.Select(
		goqu.L(castText, event.EventType).As(colEventType),
		goqu.L(castTimestamp, event.OccurredAt.UTC()).As(colOccurredAt),
		goqu.L(castJsonb, string(event.PayloadJSON)).As(colPayload),
		goqu.L(castJsonb, string(event.MetadataJSON)).As(colMetadata),
	)
}

// whereExpression renders (eventType OR ...) AND (payload predicate OR ...) AND time range.
func (j Journal) whereExpression(filter journal.Filter) (exp.ExpressionList, error) {
	expressions := make([]exp.Expression, 0, 4)

	if len(filter.EventTypes()) > 0 {
		expressions = append(expressions, goqu.C(colEventType).In(filter.EventTypes()))
	}

	if len(filter.Predicates()) > 0 {
		predicateExpressions := make([]exp.Expression, 0, len(filter.Predicates()))

		for _, predicate := range filter.Predicates() {
			containment, err := jsoniter.ConfigFastest.Marshal(map[string]string{predicate.Key(): predicate.Val()})
			if err != nil {
				return nil, errors.Join(journal.ErrBuildingQueryFailed, err)
			}

			predicateExpressions = append(predicateExpressions, goqu.L(payloadContains, string(containment)))
		}

		expressions = append(expressions, goqu.Or(predicateExpressions...))
	}

	if !filter.OccurredFrom().IsZero() {
		expressions = append(expressions, goqu.C(colOccurredAt).Gte(filter.OccurredFrom().UTC()))
	}

	if !filter.OccurredUntil().IsZero() {
		expressions = append(expressions, goqu.C(colOccurredAt).Lte(filter.OccurredUntil().UTC()))
	}

	return goqu.And(expressions...), nil
}

func (j Journal) closeRows(rows adapters.DBRows) {
	if closeErr := rows.Close(); closeErr != nil && j.logger != nil {
		j.logger.Warn(logMsgCloseRowsFailed, logAttrError, closeErr.Error())
	}
}

func (j Journal) logQueryWithDuration(sqlQuery string, action string, duration time.Duration) {
	if j.logger != nil {
		j.logger.Debug(logMsgSQLExecuted+action, logAttrDurationMS, toMilliseconds(duration), logAttrQuery, sqlQuery)
	}
}

func (j Journal) logOperation(action string, args ...any) {
	if j.logger != nil {
		j.logger.Info(logMsgOperation+action, args...)
	}
}

func (j Journal) logError(message string, err error, args ...any) {
	if j.logger != nil {
		allArgs := append([]any{logAttrError, err.Error()}, args...)
		j.logger.Error(message, allArgs...)
	}
}

func (j Journal) recordError(ctx context.Context, operation string) {
	journal.IncrementCounter(ctx, j.metricsCollector, metricDatabaseErrors, j.labels(operation, journal.SpanStatusError))
}

func (j Journal) labels(operation string, status string) map[string]string {
	return map[string]string{labelOperation: operation, labelStatus: status}
}

func (j Journal) startSpan(ctx context.Context, name string, operation string) (context.Context, journal.SpanContext) {
	if j.tracingCollector == nil {
		return ctx, nil
	}

	return j.tracingCollector.StartSpan(ctx, name, map[string]string{
		labelOperation: operation,
		logAttrTable:   j.tableName,
	})
}

func (j Journal) finishSpan(span journal.SpanContext, status string) {
	if j.tracingCollector == nil || span == nil {
		return
	}

	j.tracingCollector.FinishSpan(span, status, nil)
}

// toMilliseconds converts a time.Duration to float64 milliseconds with 3 decimal places.
func toMilliseconds(d time.Duration) float64 {
	return math.Round(float64(d.Nanoseconds())/1e6*1000) / 1000
}
