package speech

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"vidscribe/internal/logging"
	"vidscribe/internal/services"
)

const (
	defaultRetryBaseDelay = 1 * time.Second
	defaultRetryMaxDelay  = 10 * time.Second
)

// RetryOption customizes a retrying recognizer.
type RetryOption func(*retryingRecognizer)

// WithSleeper overrides how retry sleeps are performed (useful for tests).
func WithSleeper(sleeper func(time.Duration)) RetryOption {
	return func(r *retryingRecognizer) {
		r.sleeper = sleeper
	}
}

// WithRetryLogger sets the logger used to report retried attempts.
func WithRetryLogger(logger *slog.Logger) RetryOption {
	return func(r *retryingRecognizer) {
		if logger != nil {
			r.logger = logger
		}
	}
}

type retryingRecognizer struct {
	inner     Recognizer
	attempts  int
	baseDelay time.Duration
	maxDelay  time.Duration
	sleeper   func(time.Duration)
	logger    *slog.Logger
}

// WithRetry wraps rec so transient failures (rate limits, 5xx responses,
// network errors, timeouts) are retried with exponential backoff. Auth
// failures and ErrNoSpeech are returned immediately.
func WithRetry(rec Recognizer, attempts int, baseDelay, maxDelay time.Duration, opts ...RetryOption) Recognizer {
	if attempts <= 1 && len(opts) == 0 {
		return rec
	}
	r := &retryingRecognizer{
		inner:     rec,
		attempts:  attempts,
		baseDelay: baseDelay,
		maxDelay:  maxDelay,
		logger:    logging.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *retryingRecognizer) Name() string {
	return r.inner.Name()
}

func (r *retryingRecognizer) Recognize(ctx context.Context, audioPath string) (Result, error) {
	attempts := r.attempts
	if attempts <= 0 {
		attempts = 1
	}
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		result, err := r.inner.Recognize(ctx, audioPath)
		if err == nil {
			return result, nil
		}
		lastErr = err
		if attempt >= attempts || ctx.Err() != nil || !services.IsRetryable(err) {
			break
		}
		delay := r.backoffDelay(attempt)
		r.logger.Info("speech request failed; retrying",
			logging.String("provider", r.inner.Name()),
			logging.Int("attempt", attempt),
			logging.Int("max_attempts", attempts),
			logging.Duration("delay", delay),
			logging.Error(err),
		)
		if err := r.sleep(ctx, delay); err != nil {
			return Result{}, err
		}
	}
	if lastErr == nil {
		lastErr = errors.New("unknown retry failure")
	}
	if attempts > 1 && services.IsRetryable(lastErr) {
		return Result{}, fmt.Errorf("%s: failed after %d attempts: %w", r.inner.Name(), attempts, lastErr)
	}
	return Result{}, lastErr
}

func (r *retryingRecognizer) backoffDelay(attempt int) time.Duration {
	base := r.baseDelay
	if base <= 0 {
		return 0
	}
	maxDelay := r.maxDelay
	if maxDelay <= 0 {
		maxDelay = defaultRetryMaxDelay
	}
	// attempt 1 -> base, attempt 2 -> base*2, attempt 3 -> base*4, ...
	delay := base
	for i := 1; i < attempt; i++ {
		if delay > maxDelay/2 {
			return maxDelay
		}
		delay *= 2
	}
	if delay > maxDelay {
		return maxDelay
	}
	return delay
}

func (r *retryingRecognizer) sleep(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return nil
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if r.sleeper != nil {
		r.sleeper(delay)
		return ctx.Err()
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
