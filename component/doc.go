// Package component defines the lifecycle interface for the orchestrator's
// infrastructure pieces: the HTTP server, the Redis lock backend, and
// anything else that needs ordered startup, shutdown, and health checks.
//
// Components register with a Registry, which starts them in registration
// order and stops them in reverse, so dependencies come up first and go
// down last.
package component
