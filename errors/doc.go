// Package errors provides unified error handling for pipekit.
// It implements structured error types with machine-readable codes,
// HTTP status mapping for the reporting API, and retryable detection.
package errors
