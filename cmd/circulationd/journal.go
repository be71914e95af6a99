package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/campusops/library-circulation/circulation/config"
	"github.com/campusops/library-circulation/circulation/ledger"
	"github.com/campusops/library-circulation/journal"
	"github.com/campusops/library-circulation/journal/guardedjournal"
	"github.com/campusops/library-circulation/journal/postgresjournal"
)

// openJournal returns the configured journal and a func releasing its connections.
// Database journals get their schema created and sit behind a circuit breaker.
func openJournal(ctx context.Context, settings config.Settings, obs observability) (ledger.Journal, func(), error) {
	if !settings.UsesPostgres() {
		return journal.NewMemoryJournal(journal.WithMemoryLogger(obs.logger)), func() {}, nil
	}

	journalOptions := []postgresjournal.Option{
		postgresjournal.WithTableName(settings.JournalTable),
		postgresjournal.WithLogger(obs.logger),
	}
	if obs.metrics != nil {
		journalOptions = append(journalOptions, postgresjournal.WithMetrics(obs.metrics))
	}
	if obs.tracing != nil {
		journalOptions = append(journalOptions, postgresjournal.WithTracing(obs.tracing))
	}

	var (
		pj      postgresjournal.Journal
		closeDB func()
		err     error
	)

	switch settings.Journal {
	case config.JournalPGX:
		pool, openErr := config.PostgresPGXPool(ctx, settings.PostgresDSN)
		if openErr != nil {
			return nil, nil, openErr
		}

		closeDB = pool.Close
		pj, err = postgresjournal.NewJournalFromPGXPool(pool, journalOptions...)

	case config.JournalSQL:
		db, openErr := config.PostgresSQLDB(ctx, settings.PostgresDSN)
		if openErr != nil {
			return nil, nil, openErr
		}

		closeDB = func() { _ = db.Close() }
		pj, err = postgresjournal.NewJournalFromSQLDB(db, journalOptions...)

	case config.JournalSQLX:
		db, openErr := config.PostgresSQLX(ctx, settings.PostgresDSN)
		if openErr != nil {
			return nil, nil, openErr
		}

		closeDB = func() { _ = db.Close() }
		pj, err = postgresjournal.NewJournalFromSQLX(db, journalOptions...)

	default:
		return nil, nil, fmt.Errorf("%w: %q", config.ErrUnknownJournalKind, settings.Journal)
	}

	if err != nil {
		closeDB()

		return nil, nil, err
	}

	if err := pj.CreateSchema(ctx); err != nil {
		closeDB()

		return nil, nil, errors.Join(journal.ErrCreatingSchemaFailed, err)
	}

	guarded, err := guardedjournal.New(pj,
		guardedjournal.WithName("circulation-"+string(settings.Journal)),
		guardedjournal.WithMaxConsecutiveFailures(settings.BreakerFailures),
		guardedjournal.WithOpenTimeout(settings.BreakerOpenTimeout),
		guardedjournal.WithLogger(obs.logger))
	if err != nil {
		closeDB()

		return nil, nil, err
	}

	return guarded, closeDB, nil
}
