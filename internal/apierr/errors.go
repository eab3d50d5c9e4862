// Package apierr provides shared error sentinels and retry infrastructure
// for translation provider clients. Provider-specific errors (genai, OpenAI,
// DeepSeek) are classified into these sentinels at the adapter boundary.
//
// Providers wrap with fmt.Errorf("%s: %w", msg, sentinel).
// Callers check with errors.Is(err, apierr.ErrRateLimit) etc.
package apierr

import "errors"

// Sentinel errors for provider interaction failures.
var (
	// ErrNotConfigured indicates the provider has no credentials and cannot be called.
	ErrNotConfigured = errors.New("translation service not configured")

	// ErrRateLimit indicates the provider rate limit was exceeded (temporary).
	ErrRateLimit = errors.New("rate limit exceeded")

	// ErrQuotaExceeded indicates the provider quota was exhausted (billing issue).
	ErrQuotaExceeded = errors.New("quota exceeded")

	// ErrTimeout indicates a request timed out.
	ErrTimeout = errors.New("request timeout")

	// ErrAuthFailed indicates the API key was rejected.
	ErrAuthFailed = errors.New("authentication failed")

	// ErrBadRequest indicates a client error (4xx) that is not otherwise classified.
	ErrBadRequest = errors.New("bad request")

	// ErrTransport indicates any other failure reaching the provider.
	ErrTransport = errors.New("translation request failed")
)

// Retryable reports whether err is a transient provider failure worth
// retrying: rate limits, timeouts, and transport errors.
// Quota, auth, configuration, and bad-request failures are permanent, even
// when also marked as transport errors.
func Retryable(err error) bool {
	if errors.Is(err, ErrBadRequest) || errors.Is(err, ErrQuotaExceeded) ||
		errors.Is(err, ErrAuthFailed) || errors.Is(err, ErrNotConfigured) {
		return false
	}
	return errors.Is(err, ErrRateLimit) ||
		errors.Is(err, ErrTimeout) ||
		errors.Is(err, ErrTransport)
}
