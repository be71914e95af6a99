// Package postgresjournal implements the circulation journal on PostgreSQL.
//
// Events live in one table (default "circulation_events") with a bigserial sequence number,
// the event type, the occurrence time and jsonb payload and metadata columns. Filters are
// translated to SQL with goqu; payload predicates use jsonb containment (payload @> '{"k":"v"}').
//
// Append inserts all events in one INSERT ... SELECT statement guarded by a CTE which computes
// the current max sequence number of the filtered stream. If it differs from the expected one,
// no row is inserted and ErrConcurrencyConflict is returned. The statement runs in a transaction
// that first takes pg_advisory_xact_lock on the table name, so concurrent appenders (from any
// process) evaluate the CTE one after another and at most one of them wins a given expectation.
//
// The journal can be constructed from a pgxpool.Pool, a sql.DB (lib/pq) or a sqlx.DB:
//
//	j, err := postgresjournal.NewJournalFromPGXPool(pool, postgresjournal.WithLogger(logger))
//	if err != nil {
//		// handle error
//	}
//	err = j.CreateSchema(ctx)
package postgresjournal
