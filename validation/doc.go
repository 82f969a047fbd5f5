// Package validation provides input validation for pipekit.
// It supports struct tag validation (using the validator library) for
// configuration and loaded pipeline documents, plus a small fluent
// validator for request-level field checks.
package validation
