package postgresjournal_test

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusops/library-circulation/circulation/config"
	"github.com/campusops/library-circulation/journal"
	"github.com/campusops/library-circulation/journal/postgresjournal"
)

const (
	testDSNVariable     = "CIRCULATION_TEST_POSTGRES_DSN"
	testAdapterVariable = "CIRCULATION_TEST_ADAPTER"
)

func Test_Journal_AppendAndQuery_AgainstPostgres(t *testing.T) {
	// setup
	ctx, j := setupPostgresJournal(t)
	filter := journal.BuildFilter().
		AnyEventTypeOf("BookIssued", "BookReturned").
		AndAnyPredicateOf(journal.P("BookID", "B1")).
		Finalize()

	// act
	seq, err := j.Append(ctx, filter, 0,
		givenEvent(t, "BookIssued", `{"BookID":"B1","StudentID":"S1"}`),
		givenEvent(t, "BookReturned", `{"BookID":"B1","StudentID":"S1"}`),
	)
	require.NoError(t, err)

	events, maxSeq, err := j.Query(ctx, filter)

	// assert
	require.NoError(t, err)
	assert.Len(t, events, 2)
	assert.Equal(t, seq, maxSeq)
	assert.Equal(t, "BookIssued", events[0].EventType)
}

func Test_Journal_Append_ConcurrencyConflict_AgainstPostgres(t *testing.T) {
	// setup
	ctx, j := setupPostgresJournal(t)
	filter := journal.BuildFilter().AndAnyPredicateOf(journal.P("BookID", "B1")).Finalize()

	_, err := j.Append(ctx, filter, 0, givenEvent(t, "BookIssued", `{"BookID":"B1"}`))
	require.NoError(t, err)

	// act
	_, err = j.Append(ctx, filter, 0, givenEvent(t, "BookIssued", `{"BookID":"B1"}`))

	// assert
	assert.ErrorIs(t, err, journal.ErrConcurrencyConflict)
}

func Test_Journal_Append_SimultaneousAppendersWithSameExpectation_AgainstPostgres(t *testing.T) {
	// setup
	ctx, j := setupPostgresJournal(t)
	filter := journal.BuildFilter().AnyEventTypeOf("BookIssued").Finalize()

	_, err := j.Append(ctx, filter, 0, givenEvent(t, "BookIssued", `{"BookID":"B1","StudentID":"S0"}`))
	require.NoError(t, err)
	_, expected, err := j.Query(ctx, filter)
	require.NoError(t, err)

	const appenders = 8
	events := make(journal.StorableEvents, appenders)
	for i := range events {
		events[i] = givenEvent(t, "BookIssued", fmt.Sprintf(`{"BookID":"B1","StudentID":"S%d"}`, i+1))
	}

	start := make(chan struct{})
	results := make(chan error, appenders)

	var wg sync.WaitGroup
	for _, event := range events {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, appendErr := j.Append(ctx, filter, expected, event)
			results <- appendErr
		}()
	}

	// act
	close(start)
	wg.Wait()
	close(results)

	// assert
	succeeded := 0
	for appendErr := range results {
		if appendErr == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, appendErr, journal.ErrConcurrencyConflict)
	}
	assert.Equal(t, 1, succeeded, "exactly one appender may win the same expected sequence")

	stored, _, err := j.Query(ctx, filter)
	require.NoError(t, err)
	assert.Len(t, stored, 2)
}

// setupPostgresJournal connects with the driver named by CIRCULATION_TEST_ADAPTER (pgx, sql or
// sqlx; pgx when unset) and creates a throwaway journal table.
func setupPostgresJournal(t *testing.T) (context.Context, postgresjournal.Journal) {
	t.Helper()

	dsn := os.Getenv(testDSNVariable)
	if dsn == "" {
		t.Skipf("%s is not set", testDSNVariable)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	t.Cleanup(cancel)

	tableName := fmt.Sprintf("circulation_events_test_%s", uuid.NewString()[:8])
	options := []postgresjournal.Option{postgresjournal.WithTableName(tableName)}

	var (
		j         postgresjournal.Journal
		dropTable func() error
		err       error
	)

	switch adapter := strings.ToLower(os.Getenv(testAdapterVariable)); adapter {
	case "", "pgx":
		pool, openErr := config.PostgresPGXPool(ctx, dsn)
		require.NoError(t, openErr)
		t.Cleanup(pool.Close)

		j, err = postgresjournal.NewJournalFromPGXPool(pool, options...)
		dropTable = func() error {
			_, execErr := pool.Exec(context.Background(), "DROP TABLE IF EXISTS "+tableName)

			return execErr
		}

	case "sql":
		db, openErr := config.PostgresSQLDB(ctx, dsn)
		require.NoError(t, openErr)
		t.Cleanup(func() { _ = db.Close() })

		j, err = postgresjournal.NewJournalFromSQLDB(db, options...)
		dropTable = func() error {
			_, execErr := db.ExecContext(context.Background(), "DROP TABLE IF EXISTS "+tableName)

			return execErr
		}

	case "sqlx":
		db, openErr := config.PostgresSQLX(ctx, dsn)
		require.NoError(t, openErr)
		t.Cleanup(func() { _ = db.Close() })

		j, err = postgresjournal.NewJournalFromSQLX(db, options...)
		dropTable = func() error {
			_, execErr := db.ExecContext(context.Background(), "DROP TABLE IF EXISTS "+tableName)

			return execErr
		}

	default:
		t.Fatalf("unsupported %s: %s", testAdapterVariable, adapter)
	}

	require.NoError(t, err)
	require.NoError(t, j.CreateSchema(ctx))

	t.Cleanup(func() {
		assert.NoError(t, dropTable())
	})

	return ctx, j
}

func givenEvent(t *testing.T, eventType string, payload string) journal.StorableEvent {
	t.Helper()

	event, err := journal.BuildStorableEventWithEmptyMetadata(eventType, time.Now(), []byte(payload))
	require.NoError(t, err)

	return event
}
