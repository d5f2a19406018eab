package errors

import (
	"context"
	"math/rand/v2"
	"time"
)

// RetryConfig is the retry policy for model calls.
type RetryConfig struct {
	// MaxAttempts counts the first call. Values below 1 mean 1.
	MaxAttempts int

	InitialBackoff time.Duration
	MaxBackoff     time.Duration

	// BackoffFactor multiplies the wait after each failed attempt.
	BackoffFactor float64

	// Jitter spreads each wait by up to +/- Jitter of its length (0.0-1.0).
	Jitter float64

	// OnRetry, if set, is called before each wait with the failed attempt
	// number (1-based), its error and the wait about to happen.
	OnRetry func(attempt int, err error, wait time.Duration)
}

// DefaultRetry is the standard retry configuration for model calls.
var DefaultRetry = RetryConfig{
	MaxAttempts:    3,
	InitialBackoff: 1 * time.Second,
	MaxBackoff:     30 * time.Second,
	BackoffFactor:  2.0,
	Jitter:         0.1,
}

// NoRetry makes exactly one call.
var NoRetry = RetryConfig{MaxAttempts: 1}

// RetryResult is the outcome of WithRetryContext.
type RetryResult[T any] struct {
	Value T

	// Err is nil on success and a *CategorizedError otherwise.
	Err error

	Attempts int

	// Duration includes time spent waiting between attempts.
	Duration time.Duration
}

// WithRetryContext calls fn until it succeeds, fails with an error that is
// not transient, runs out of attempts or ctx is done. Only CategoryTransient
// errors are retried, so malformed model output fails on the first attempt.
func WithRetryContext[T any](
	ctx context.Context,
	cfg RetryConfig,
	fn func(context.Context) (T, error),
) RetryResult[T] {
	start := time.Now()
	attempts := max(cfg.MaxAttempts, 1)

	fail := func(err error, category Category, made int, note string) RetryResult[T] {
		return RetryResult[T]{
			Err:      &CategorizedError{Err: err, Category: category, Attempts: made, Context: note},
			Attempts: made,
			Duration: time.Since(start),
		}
	}

	wait := cfg.InitialBackoff
	var lastErr error
	for made := 0; made < attempts; made++ {
		if err := ctx.Err(); err != nil {
			return fail(err, CategoryPermanent, made, "context cancelled")
		}

		value, err := fn(ctx)
		if err == nil {
			return RetryResult[T]{Value: value, Attempts: made + 1, Duration: time.Since(start)}
		}
		lastErr = err

		if !IsRetryable(err) {
			return fail(err, Categorize(err), made+1, "")
		}
		if made == attempts-1 {
			break
		}

		delay := jittered(wait, cfg.Jitter)
		if cfg.OnRetry != nil {
			cfg.OnRetry(made+1, err, delay)
		}
		if !sleep(ctx, delay) {
			return fail(ctx.Err(), CategoryPermanent, made+1, "context cancelled during backoff")
		}
		wait = cfg.next(wait)
	}

	return fail(lastErr, Categorize(lastErr), attempts, "max retries exceeded")
}

// next grows a wait by BackoffFactor, capped at MaxBackoff.
func (cfg RetryConfig) next(wait time.Duration) time.Duration {
	factor := cfg.BackoffFactor
	if factor < 1 {
		factor = 1
	}
	wait = time.Duration(float64(wait) * factor)
	if cfg.MaxBackoff > 0 && wait > cfg.MaxBackoff {
		wait = cfg.MaxBackoff
	}
	return wait
}

func jittered(base time.Duration, jitter float64) time.Duration {
	if jitter <= 0 || base <= 0 {
		return base
	}
	spread := float64(base) * jitter * (rand.Float64()*2 - 1)
	return time.Duration(float64(base) + spread)
}

// sleep waits for d and reports false if ctx ended first.
func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

// RetryOption adjusts a RetryConfig built by NewRetryConfig.
type RetryOption func(*RetryConfig)

func WithMaxAttempts(n int) RetryOption {
	return func(cfg *RetryConfig) { cfg.MaxAttempts = n }
}

func WithInitialBackoff(d time.Duration) RetryOption {
	return func(cfg *RetryConfig) { cfg.InitialBackoff = d }
}

func WithMaxBackoff(d time.Duration) RetryOption {
	return func(cfg *RetryConfig) { cfg.MaxBackoff = d }
}

func WithJitter(j float64) RetryOption {
	return func(cfg *RetryConfig) { cfg.Jitter = j }
}

// WithOnRetry sets the hook called before each wait.
func WithOnRetry(fn func(attempt int, err error, wait time.Duration)) RetryOption {
	return func(cfg *RetryConfig) { cfg.OnRetry = fn }
}

// NewRetryConfig starts from DefaultRetry and applies opts.
func NewRetryConfig(opts ...RetryOption) RetryConfig {
	cfg := DefaultRetry
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}
