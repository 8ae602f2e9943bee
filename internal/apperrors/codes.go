package apperrors

// Error codes shared across the scheduling/delivery core.
const (
	CodeValidation  = "VALIDATION_ERROR" // content fails a Content Validator check
	CodeBlacklisted = "BLACKLISTED"      // post matches a BlacklistRule
	CodeNotFound    = "NOT_FOUND"        // channel, post or publication does not exist
	CodeClaimLost   = "CLAIM_LOST"       // compare-and-set claim affected zero rows
	CodeStuckLease  = "STUCK_LEASE"      // processing lease exceeded its TTL
	CodeTransport   = "TRANSPORT_ERROR"  // network-level failure talking to the messaging API
	CodeRateLimited = "RATE_LIMITED"     // messaging API returned 429 / retry_after
	CodeRejected    = "REJECTED"         // messaging API returned a non-retryable 4xx
	CodeMaxAttempts = "MAX_ATTEMPTS"     // publication exhausted its retry budget
	CodeTimezone    = "TIMEZONE_ERROR"   // IANA zone lookup failed on every fallback
	CodeImport      = "IMPORT_ERROR"     // CSV import row failed to parse or persist
	CodeDatabase    = "DATABASE_ERROR"   // durable store operation failed
	CodeInternal    = "INTERNAL_ERROR"   // unexpected/unclassified failure
)
