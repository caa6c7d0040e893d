package prpulse

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/codeGROOVE-dev/retry"
)

const (
	// retryAttempts is the maximum number of attempts per read.
	retryAttempts = 8
	// retryDelay is the initial retry delay.
	retryDelay = 1 * time.Second
	// retryMaxDelay is the maximum retry delay.
	retryMaxDelay = 2 * time.Minute
	// retryMaxJitter adds randomness to prevent thundering herd.
	retryMaxJitter = 1 * time.Second
)

// RetryTransport wraps an http.RoundTripper with exponential-backoff retry
// for transient failures. It is used for source reads only: reads are
// idempotent, so replaying one is always safe. Document writes must never
// pass through this transport, since a slow sink must not cause a second write.
type RetryTransport struct {
	Base http.RoundTripper
}

// RoundTrip implements the http.RoundTripper interface with retry logic.
func (t *RetryTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.Base == nil {
		t.Base = http.DefaultTransport
	}

	var resp *http.Response
	var lastErr error

	err := retry.Do(
		func() error {
			var err error
			start := time.Now()
			resp, err = t.Base.RoundTrip(req) //nolint:bodyclose // Response body is handled by caller in successful cases
			elapsed := time.Since(start)
			if err != nil {
				slog.WarnContext(req.Context(), "HTTP request failed",
					"url", req.URL.String(),
					"error", err,
					"elapsed", elapsed)
				lastErr = err
				return err
			}

			reason := retryReason(resp)
			if reason == "" {
				return nil
			}

			// Drain and close so the retried attempt reuses the connection.
			if _, drainErr := io.Copy(io.Discard, resp.Body); drainErr != nil {
				slog.DebugContext(req.Context(), "failed to drain response body for retry", "error", drainErr)
			}
			if closeErr := resp.Body.Close(); closeErr != nil {
				slog.DebugContext(req.Context(), "failed to close response body for retry", "error", closeErr)
			}
			slog.InfoContext(req.Context(), "HTTP request will be retried",
				"status", resp.StatusCode,
				"url", req.URL.String(),
				"reason", reason)
			lastErr = &retryableError{StatusCode: resp.StatusCode}
			return lastErr
		},
		retry.Context(req.Context()),
		retry.Attempts(retryAttempts),
		retry.Delay(retryDelay),
		retry.MaxDelay(retryMaxDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.MaxJitter(retryMaxJitter),
		retry.RetryIf(func(err error) bool {
			var retryErr *retryableError
			return errors.As(err, &retryErr)
		}),
	)
	if err != nil {
		if lastErr != nil {
			return resp, lastErr
		}
		return nil, err
	}

	return resp, nil
}

// retryReason reports why a response should be retried, or "" to accept it.
func retryReason(resp *http.Response) string {
	// 429 and 5xx are transient by definition.
	if resp.StatusCode == http.StatusTooManyRequests || (resp.StatusCode >= 500 && resp.StatusCode < 600) {
		return "retryable status code"
	}
	// GitHub reports rate limiting as 403 with an exhausted quota header.
	if resp.StatusCode == http.StatusForbidden && resp.Header.Get("X-Ratelimit-Remaining") == "0" {
		return "GitHub rate limit exceeded"
	}
	return ""
}

// retryableError indicates a response status that should be retried.
type retryableError struct {
	StatusCode int
}

func (e *retryableError) Error() string {
	return http.StatusText(e.StatusCode)
}
