// Command circulationd serves the library circulation ledger over HTTP.
//
// Settings come from CIRCULATION_* environment variables (see package config) and can be
// overridden with flags.
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/campusops/library-circulation/circulation/config"
	"github.com/campusops/library-circulation/circulation/httpapi"
	"github.com/campusops/library-circulation/circulation/ledger"
)

func main() {
	settings, err := loadSettings(os.Args[1:])
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, settings, logger); err != nil {
		logger.Error("circulationd stopped with error", "error", err.Error())
		os.Exit(1)
	}
}

func loadSettings(args []string) (config.Settings, error) {
	settings, err := config.FromEnv(os.LookupEnv)
	if err != nil {
		return config.Settings{}, err
	}

	fs := flag.NewFlagSet("circulationd", flag.ContinueOnError)
	fs.StringVar(&settings.ListenAddr, "listen", settings.ListenAddr, "HTTP listen address")
	journalKind := fs.String("journal", string(settings.Journal), "Journal: memory, pgx, sql or sqlx")
	fs.StringVar(&settings.PostgresDSN, "dsn", settings.PostgresDSN, "PostgreSQL DSN for database journals")
	fs.BoolVar(&settings.Observability, "observability-enabled", settings.Observability, "Enable OpenTelemetry metrics, tracing and log bridge")
	fs.BoolVar(&settings.Seed, "seed", settings.Seed, "Add the demo catalog on startup")

	if err := fs.Parse(args); err != nil {
		return config.Settings{}, err
	}

	settings.Journal = config.JournalKind(*journalKind)

	return settings, settings.Validate()
}

func run(ctx context.Context, settings config.Settings, logger *slog.Logger) error {
	obs, shutdownObservability, err := setupObservability(ctx, settings, logger)
	if err != nil {
		return err
	}
	defer shutdownObservability()

	j, closeJournal, err := openJournal(ctx, settings, obs)
	if err != nil {
		return err
	}
	defer closeJournal()

	ledgerOptions := []ledger.Option{ledger.WithJournal(j), ledger.WithLogger(obs.logger)}
	if obs.metrics != nil {
		ledgerOptions = append(ledgerOptions, ledger.WithMetrics(obs.metrics))
	}
	if obs.tracing != nil {
		ledgerOptions = append(ledgerOptions, ledger.WithTracing(obs.tracing))
	}

	l, err := ledger.NewLedger(ledgerOptions...)
	if err != nil {
		return err
	}

	if err := l.Restore(ctx); err != nil {
		return err
	}

	if settings.Seed {
		if err := seedCatalog(ctx, l, logger); err != nil {
			return err
		}
	}

	e := httpapi.NewServer(l, httpapi.WithLogger(logger))

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("circulationd listening", "addr", settings.ListenAddr, "journal", string(settings.Journal))

		if err := e.Start(settings.ListenAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}

		close(serveErr)
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-serveErr:
		if err != nil {
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), settings.ShutdownTimeout)
	defer cancel()

	return e.Shutdown(shutdownCtx)
}
