// Package process executes external stage bodies as subprocesses.
//
// It is the default backing for command-type stage actions: the orchestrator
// hands the process a parameter bundle as environment variables and a
// cancellation context; the process result (exit code, captured output) is
// reported back as the opaque stage outcome. Cancellation sends SIGTERM to
// the whole process group first and escalates to SIGKILL after a grace
// period.
package process
