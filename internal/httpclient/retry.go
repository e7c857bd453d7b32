package httpclient

import (
	"context"

	"github.com/rs/zerolog"
)

// RetryHandler re-runs a request on transport errors, immediately and without backoff.
type RetryHandler struct {
	maxRetries int
	logger     zerolog.Logger
}

// NewRetryHandler creates a retry handler allowing maxRetries extra attempts.
func NewRetryHandler(maxRetries int, logger zerolog.Logger) *RetryHandler {
	if maxRetries < 0 {
		maxRetries = 0
	}
	return &RetryHandler{
		maxRetries: maxRetries,
		logger:     logger.With().Str("component", "RetryHandler").Logger(),
	}
}

// MaxAttempts is retries plus the initial attempt.
func (rh *RetryHandler) MaxAttempts() int {
	return rh.maxRetries + 1
}

// Do calls fn until it succeeds, returns a non-network error, or attempts run out.
// The attempt number passed to fn starts at 1. Context cancellation is checked
// before every attempt and wins over any retry.
func (rh *RetryHandler) Do(ctx context.Context, url string, fn func(ctx context.Context, attempt int) (*Response, error)) (*Response, error) {
	var lastErr error

	for attempt := 1; attempt <= rh.MaxAttempts(); attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		resp, err := fn(ctx, attempt)
		if err == nil {
			resp.Attempts = attempt
			return resp, nil
		}

		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}

		if !IsNetworkError(err) {
			return nil, err
		}

		lastErr = err
		if attempt < rh.MaxAttempts() {
			rh.logger.Debug().
				Str("url", url).
				Int("attempt", attempt).
				Int("max_attempts", rh.MaxAttempts()).
				Err(err).
				Msg("Network error, retrying immediately")
		}
	}

	return nil, &RetryError{URL: url, Attempts: rh.MaxAttempts(), Err: lastErr}
}
