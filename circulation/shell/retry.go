package shell

import (
	"context"
	"errors"
	"math/rand"
	"strconv"
	"time"

	"github.com/campusops/library-circulation/journal"
)

const (
	defaultMaxAttempts  = 5
	defaultBaseDelay    = 10 * time.Millisecond
	defaultJitterFactor = 0.3

	// RetryAttemptsMetric counts retries after a journal conflict.
	RetryAttemptsMetric = "circulation_retry_attempts_total"

	// RetryDelayMetric records the backoff delay before each retry.
	RetryDelayMetric = "circulation_retry_delay_seconds"

	// RetriesExhaustedMetric counts operations that gave up after the last attempt.
	RetriesExhaustedMetric = "circulation_retries_exhausted_total"
)

var (
	// ErrNilMetricsCollector is returned when a nil metrics collector is provided to WithRetryMetrics.
	ErrNilMetricsCollector = errors.New("metrics collector must not be nil")

	// ErrEmptyOperation is returned when an empty operation name is provided to WithRetryMetrics.
	ErrEmptyOperation = errors.New("operation must not be empty")

	// ErrInvalidMaxAttempts is returned when max attempts are not positive.
	ErrInvalidMaxAttempts = errors.New("max attempts must be positive")

	// ErrNegativeBaseDelay is returned when the base delay is negative.
	ErrNegativeBaseDelay = errors.New("base delay must not be negative")

	// ErrInvalidJitterFactor is returned when the jitter factor is not between 0.0 and 1.0.
	ErrInvalidJitterFactor = errors.New("jitter factor must be between 0.0 and 1.0")
)

// RetryableFunc is a function that can be retried.
type RetryableFunc func(ctx context.Context) error

// RetryOption configures retry behavior.
type RetryOption func(*retryConfig) error

type retryConfig struct {
	maxAttempts      int
	baseDelay        time.Duration
	jitterFactor     float64
	metricsCollector journal.MetricsCollector
	operation        string
}

// RetryMetrics describes what happened during one RetryWithExponentialBackoff call.
type RetryMetrics struct {
	Attempts         int
	TotalDelay       time.Duration
	LastErrorType    string
	RetriesExhausted bool
}

// RetryWithExponentialBackoff runs fn, retrying it with exponential backoff as long as it fails
// with journal.ErrConcurrencyConflict. Every other error, refusals included, is returned at once.
//
// Default schedule: 0 ms, 10 ms, 20 ms, 40 ms, 80 ms, each with up to 30% jitter.
func RetryWithExponentialBackoff(ctx context.Context, fn RetryableFunc, options ...RetryOption) (RetryMetrics, error) {
	config := &retryConfig{
		maxAttempts:  defaultMaxAttempts,
		baseDelay:    defaultBaseDelay,
		jitterFactor: defaultJitterFactor,
	}

	for _, option := range options {
		if err := option(config); err != nil {
			return RetryMetrics{}, err
		}
	}

	var meta RetryMetrics
	var lastErr error

	for attempt := 0; attempt < config.maxAttempts; attempt++ {
		if attempt > 0 {
			delay := config.baseDelay * time.Duration(1<<(attempt-1))
			jitter := rand.Float64() * float64(delay) * config.jitterFactor //nolint:gosec // jitter does not need a CSPRNG
			backoffDelay := delay + time.Duration(jitter)

			journal.RecordDuration(ctx, config.metricsCollector, RetryDelayMetric, backoffDelay, config.labels(attempt, ""))

			select {
			case <-time.After(backoffDelay):
			case <-ctx.Done():
				meta.LastErrorType = errorType(ctx.Err())
				return meta, ctx.Err()
			}

			meta.TotalDelay += backoffDelay
		}

		meta.Attempts++

		lastErr = fn(ctx)
		meta.LastErrorType = errorType(lastErr)

		if lastErr == nil {
			return meta, nil
		}

		if !isRetryableError(lastErr) {
			return meta, lastErr
		}

		if attempt < config.maxAttempts-1 {
			journal.IncrementCounter(ctx, config.metricsCollector, RetryAttemptsMetric, config.labels(attempt+1, meta.LastErrorType))
		}
	}

	meta.RetriesExhausted = true
	journal.IncrementCounter(ctx, config.metricsCollector, RetriesExhaustedMetric, config.labels(meta.Attempts, meta.LastErrorType))

	return meta, lastErr
}

func (c *retryConfig) labels(attempt int, errType string) map[string]string {
	labels := map[string]string{
		"operation":      c.operation,
		"attempt_number": strconv.Itoa(attempt),
	}

	if errType != "" {
		labels["error_type"] = errType
	}

	return labels
}

func isRetryableError(err error) bool {
	return errors.Is(err, journal.ErrConcurrencyConflict)
}

func errorType(err error) string {
	switch {
	case err == nil:
		return "none"
	case errors.Is(err, journal.ErrConcurrencyConflict):
		return "concurrency_conflict"
	case errors.Is(err, context.Canceled):
		return "context_canceled"
	case errors.Is(err, context.DeadlineExceeded):
		return "context_deadline_exceeded"
	default:
		return "other"
	}
}

// WithMaxAttempts sets the maximum number of attempts, the first one included.
func WithMaxAttempts(attempts int) RetryOption {
	return func(config *retryConfig) error {
		if attempts <= 0 {
			return ErrInvalidMaxAttempts
		}

		config.maxAttempts = attempts

		return nil
	}
}

// WithBaseDelay sets the base delay for exponential backoff.
func WithBaseDelay(delay time.Duration) RetryOption {
	return func(config *retryConfig) error {
		if delay < 0 {
			return ErrNegativeBaseDelay
		}

		config.baseDelay = delay

		return nil
	}
}

// WithJitterFactor sets the jitter as a fraction of the backoff delay, from 0.0 to 1.0.
func WithJitterFactor(factor float64) RetryOption {
	return func(config *retryConfig) error {
		if factor < 0.0 || factor > 1.0 {
			return ErrInvalidJitterFactor
		}

		config.jitterFactor = factor

		return nil
	}
}

// WithRetryMetrics records retry instrumentation labeled with operation.
func WithRetryMetrics(collector journal.MetricsCollector, operation string) RetryOption {
	return func(config *retryConfig) error {
		if collector == nil {
			return ErrNilMetricsCollector
		}

		if operation == "" {
			return ErrEmptyOperation
		}

		config.metricsCollector = collector
		config.operation = operation

		return nil
	}
}
