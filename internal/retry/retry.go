package retry

import (
	"context"
	"fmt"
	"math/rand"
	"net/http"
	"strings"
	"time"
)

// Config holds retry configuration
type Config struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

// DefaultConfig returns the retry configuration used for all external
// calls: up to 3 attempts with exponential backoff starting at 2s and
// capped at 10s.
func DefaultConfig() Config {
	return Config{
		MaxAttempts: 3,
		BaseDelay:   2 * time.Second,
		MaxDelay:    10 * time.Second,
	}
}

// WithBackoff executes a function with exponential backoff retry logic.
// Only transport-level failures are retried; a response that arrives but
// fails to parse is the caller's problem, not ours.
func WithBackoff(ctx context.Context, config Config, operation func(context.Context) error) error {
	attempts := config.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		err = operation(ctx)
		if err == nil {
			return nil
		}

		if !isRetryableError(err) {
			return fmt.Errorf("non-retryable error: %w", err)
		}

		if attempt == attempts {
			return fmt.Errorf("operation failed after %d attempts: %w", attempts, err)
		}

		// Exponential backoff with jitter, capped at MaxDelay.
		delay := config.BaseDelay * time.Duration(1<<(attempt-1))
		if config.MaxDelay > 0 && delay > config.MaxDelay {
			delay = config.MaxDelay
		}
		delay += time.Duration(rand.Int63n(int64(config.BaseDelay)/2 + 1))

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}

	return err
}

// isRetryableError determines if an error is worth retrying
func isRetryableError(err error) bool {
	if err == nil {
		return false
	}

	errStr := strings.ToLower(err.Error())

	// Network-level errors are generally retryable
	if strings.Contains(errStr, "timeout") ||
		strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "connection reset") ||
		strings.Contains(errStr, "temporary failure") ||
		strings.Contains(errStr, "network") {
		return true
	}

	// Only 5xx server errors and 429 rate limiting should be retried
	if strings.Contains(errStr, "status 5") ||
		strings.Contains(errStr, "status 429") {
		return true
	}

	// Don't retry 4xx client errors (except 429)
	if strings.Contains(errStr, "status 4") {
		return false
	}

	// Unknown error formats get the benefit of the doubt.
	return true
}

// HTTPStatusRetryable checks if an HTTP status code is retryable
func HTTPStatusRetryable(statusCode int) bool {
	return statusCode >= 500 || statusCode == http.StatusTooManyRequests
}
