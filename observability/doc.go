// Package observability provides OpenTelemetry tracing and metrics for
// pipekit. Traces follow a run through its stages (one span per stage);
// metrics count stage executions, durations, and lock waits.
package observability
