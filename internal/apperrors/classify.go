package apperrors

import (
	"fmt"

	"github.com/samber/oops"
)

// IsRetryable reports whether a publication failure should be retried with
// backoff (processing → retry) rather than terminally failed. Errors tagged
// "transport" or coded CodeRateLimited are retryable; anything the messaging
// API rejected outright (CodeRejected, CodeBlacklisted, CodeValidation) is
// not, since retrying would just repeat the same rejection.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	oopsErr, ok := oops.AsOops(err)
	if !ok {
		// Unclassified errors (e.g. a bare network error that never made
		// it through an apperrors builder) default to retryable: the safe
		// assumption is a transient failure, not a permanent rejection.
		return true
	}
	switch fmt.Sprintf("%v", oopsErr.Code()) {
	case CodeRejected, CodeBlacklisted, CodeValidation, CodeMaxAttempts:
		return false
	default:
		return true
	}
}

// Code extracts the apperrors code from err, returning CodeInternal when
// err was not built through one of this package's builders.
func Code(err error) string {
	if oopsErr, ok := oops.AsOops(err); ok {
		return fmt.Sprintf("%v", oopsErr.Code())
	}
	return CodeInternal
}
