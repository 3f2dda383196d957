package t212sync

import "errors"

// Errors reported by a synchronization run. They are wrapped with context by the
// package that detects them, use errors.Is to test for them.
var (
	// ErrAuth reports a missing or rejected API token.
	ErrAuth = errors.New("invalid or missing API token")
	// ErrRateLimitExceeded reports a rate limit still active after the single allowed retry.
	ErrRateLimitExceeded = errors.New("rate limit exceeded")
	// ErrExportAPI reports any other failure of the export endpoints.
	ErrExportAPI = errors.New("export API error")
	// ErrExportTimeout reports an export job that never exposed a download link.
	ErrExportTimeout = errors.New("export not ready in time")
	// ErrMalformedExport reports a CSV payload without header, or a row that cannot be read.
	ErrMalformedExport = errors.New("malformed export payload")
	// ErrMissingAccountID reports that no ledger account is configured for the import.
	ErrMissingAccountID = errors.New("missing ledger account id")
	// ErrLedgerSink reports a failure of the ledger the transactions are imported into.
	ErrLedgerSink = errors.New("ledger sink error")
)
