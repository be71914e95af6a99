package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// JournalKind selects where the ledger records its events.
type JournalKind string

const (
	JournalMemory JournalKind = "memory"
	JournalPGX    JournalKind = "pgx"
	JournalSQL    JournalKind = "sql"
	JournalSQLX   JournalKind = "sqlx"
)

const (
	EnvListenAddr         = "CIRCULATION_LISTEN_ADDR"
	EnvJournal            = "CIRCULATION_JOURNAL"
	EnvPostgresDSN        = "CIRCULATION_POSTGRES_DSN"
	EnvJournalTable       = "CIRCULATION_JOURNAL_TABLE"
	EnvObservability      = "CIRCULATION_OBSERVABILITY"
	EnvSeed               = "CIRCULATION_SEED"
	EnvShutdownTimeout    = "CIRCULATION_SHUTDOWN_TIMEOUT"
	EnvBreakerFailures    = "CIRCULATION_BREAKER_FAILURES"
	EnvBreakerOpenTimeout = "CIRCULATION_BREAKER_OPEN_TIMEOUT"
)

var (
	ErrUnknownJournalKind = errors.New("unknown journal kind")
	ErrMissingPostgresDSN = errors.New("postgres dsn is required for a database journal")
	ErrInvalidSetting     = errors.New("invalid setting")
)

// Settings is everything cmd/circulationd needs to start.
type Settings struct {
	ListenAddr         string
	Journal            JournalKind
	PostgresDSN        string
	JournalTable       string
	Observability      bool
	Seed               bool
	ShutdownTimeout    time.Duration
	BreakerFailures    uint32
	BreakerOpenTimeout time.Duration
}

// Defaults runs an in-memory ledger on :8080 seeded with the demo catalog.
func Defaults() Settings {
	return Settings{
		ListenAddr:         ":8080",
		Journal:            JournalMemory,
		JournalTable:       "circulation_events",
		Seed:               true,
		ShutdownTimeout:    10 * time.Second,
		BreakerFailures:    5,
		BreakerOpenTimeout: 10 * time.Second,
	}
}

// UsesPostgres reports whether the journal lives in a database.
func (s Settings) UsesPostgres() bool {
	return s.Journal != JournalMemory
}

// FromEnv overlays the environment on Defaults. lookup is usually os.LookupEnv.
func FromEnv(lookup func(key string) (string, bool)) (Settings, error) {
	s := Defaults()

	get := func(key string) (string, bool) {
		v, ok := lookup(key)
		v = strings.TrimSpace(v)

		return v, ok && v != ""
	}

	if v, ok := get(EnvListenAddr); ok {
		s.ListenAddr = v
	}

	if v, ok := get(EnvJournal); ok {
		s.Journal = JournalKind(strings.ToLower(v))
	}

	if v, ok := get(EnvPostgresDSN); ok {
		s.PostgresDSN = v
	}

	if v, ok := get(EnvJournalTable); ok {
		s.JournalTable = v
	}

	var errs []error

	if v, ok := get(EnvObservability); ok {
		b, err := strconv.ParseBool(v)
		errs = append(errs, settingErr(EnvObservability, err))
		s.Observability = b
	}

	if v, ok := get(EnvSeed); ok {
		b, err := strconv.ParseBool(v)
		errs = append(errs, settingErr(EnvSeed, err))
		s.Seed = b
	}

	if v, ok := get(EnvShutdownTimeout); ok {
		d, err := time.ParseDuration(v)
		errs = append(errs, settingErr(EnvShutdownTimeout, err))
		s.ShutdownTimeout = d
	}

	if v, ok := get(EnvBreakerFailures); ok {
		n, err := strconv.ParseUint(v, 10, 32)
		errs = append(errs, settingErr(EnvBreakerFailures, err))
		s.BreakerFailures = uint32(n)
	}

	if v, ok := get(EnvBreakerOpenTimeout); ok {
		d, err := time.ParseDuration(v)
		errs = append(errs, settingErr(EnvBreakerOpenTimeout, err))
		s.BreakerOpenTimeout = d
	}

	if err := errors.Join(errs...); err != nil {
		return Settings{}, err
	}

	return s, s.Validate()
}

// Validate checks cross-field rules.
func (s Settings) Validate() error {
	switch s.Journal {
	case JournalMemory, JournalPGX, JournalSQL, JournalSQLX:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownJournalKind, s.Journal)
	}

	if s.UsesPostgres() && s.PostgresDSN == "" {
		return ErrMissingPostgresDSN
	}

	if s.ListenAddr == "" {
		return fmt.Errorf("%w: %s must not be empty", ErrInvalidSetting, EnvListenAddr)
	}

	if s.ShutdownTimeout <= 0 || s.BreakerOpenTimeout <= 0 || s.BreakerFailures == 0 {
		return fmt.Errorf("%w: timeouts and breaker failures must be positive", ErrInvalidSetting)
	}

	return nil
}

func settingErr(key string, err error) error {
	if err == nil {
		return nil
	}

	return fmt.Errorf("%w: %s: %w", ErrInvalidSetting, key, err)
}
