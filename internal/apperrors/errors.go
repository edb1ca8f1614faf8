package apperrors

import "errors"

// Storage errors are raised by the persistence layer. None of them reach the
// caller of the portfolio store: they are logged where they occur and the
// in-memory state is kept.
var (
	// ErrStorageRead indicates that the persisted portfolio could not be read or parsed.
	// The store recovers by adopting its default holdings and overwriting storage.
	ErrStorageRead = errors.New("failed to read stored portfolio")

	// ErrStorageWrite indicates that the portfolio could not be persisted.
	ErrStorageWrite = errors.New("failed to write portfolio")

	// ErrStateNotFound indicates that no value is stored under the requested key.
	ErrStateNotFound = errors.New("state key not found")
)

// Quote errors represent failures of the external price provider.
var (
	// ErrQuoteUnavailable indicates that no latest price could be obtained for a symbol,
	// either because the upstream call failed, returned malformed data, or does not know the symbol.
	ErrQuoteUnavailable = errors.New("quote unavailable")

	// ErrQuoteRateLimited indicates that the provider answered with a throttling note instead of data.
	ErrQuoteRateLimited = errors.New("quote provider rate limit reached")

	// ErrAPIKeyMissing indicates that the quote provider requires a key and none was configured.
	ErrAPIKeyMissing = errors.New("quote API key not configured")
)

// ErrExport indicates that a portfolio export did not complete. Portfolio state is unaffected.
var ErrExport = errors.New("failed to export portfolio")

// Validation errors for incoming requests.
var (
	ErrInvalidName  = errors.New("name is required")
	ErrInvalidDate  = errors.New("purchase date must be formatted as YYYY-MM-DD")
	ErrInvalidLimit = errors.New("limit must be a positive integer")
	ErrInvalidUUID  = errors.New("invalid UUID format")
)

// ErrAlertNotFound indicates that no target alert exists with the given ID.
var ErrAlertNotFound = errors.New("alert not found")

// Operation failure errors used as user facing messages by the HTTP layer.
var (
	ErrFailedToRetrieveAlerts = errors.New("failed to retrieve alerts")
	ErrFailedToRetrieveAlert  = errors.New("failed to retrieve alert")
	ErrFailedToDecodeRequest  = errors.New("failed to decode request body")
	ErrFailedToDecryptKey     = errors.New("failed to decrypt quote API key")
)
