package messaging

import (
	"net/http"
	"strings"

	"github.com/gopublicist/publicist/internal/apperrors"
)

// classifyHTTP turns a remote HTTP response into a SendResult's error
// classification. status is the HTTP status code; env is the decoded
// envelope (may be zero-valued when the body failed to decode).
func classifyHTTP(status int, env envelope) (retryable bool, err error) {
	description := env.Description
	if description == "" {
		description = http.StatusText(status)
	}

	switch {
	case env.Parameters != nil && env.Parameters.RetryAfter > 0:
		return true, apperrors.Messaging(apperrors.CodeRateLimited).
			With("status", status).
			With("retry_after", env.Parameters.RetryAfter).
			Errorf("rate limited: %s", description)
	case status == http.StatusTooManyRequests:
		return true, apperrors.Messaging(apperrors.CodeRateLimited).
			With("status", status).
			Errorf("rate limited: %s", description)
	case status == http.StatusBadRequest, status == http.StatusUnauthorized,
		status == http.StatusForbidden, status == http.StatusNotFound:
		return false, apperrors.Messaging(apperrors.CodeRejected).
			With("status", status).
			Errorf("rejected: %s", description)
	case status >= 500:
		return true, apperrors.Messaging(apperrors.CodeTransport).
			With("status", status).
			Errorf("server error: %s", description)
	default:
		// Any other unexpected status defaults to retryable; a future
		// attempt is the safer assumption than discarding the publication.
		return true, apperrors.Messaging(apperrors.CodeTransport).
			With("status", status).
			Errorf("unexpected response: %s", description)
	}
}

// classifyTransport wraps a network-level failure (connection refused,
// timeout, DNS failure) that never produced an HTTP response at all.
// Always retryable.
func classifyTransport(err error) error {
	return apperrors.Messaging(apperrors.CodeTransport).
		Wrap(netErrorf(err))
}

func netErrorf(err error) error {
	if err == nil {
		return nil
	}
	if strings.HasPrefix(err.Error(), "network_error:") {
		return err
	}
	return &networkError{inner: err}
}

type networkError struct{ inner error }

func (e *networkError) Error() string { return "network_error: " + e.inner.Error() }
func (e *networkError) Unwrap() error { return e.inner }
