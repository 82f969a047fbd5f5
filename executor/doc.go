// Package executor runs stage actions under a per-stage timeout and maps
// every way an action can end onto a stable outcome: Succeeded, Failed, or
// Cancelled. The scheduler decides WHEN an action runs; this package owns
// only the execution of a single action once dispatched.
//
// Actions are registered by name in a Registry and looked up at run
// validation time, so a reference to a missing action surfaces before any
// stage executes. Middleware wrappers add logging, tracing, and metrics
// around any Action without the action knowing.
package executor
