// Package server exposes the orchestrator over HTTP: submitting runs,
// reporting run and stage status, cancelling runs, and listing loadable
// pipeline definitions. The server is backed by Gin and implements
// component.Component for lifecycle management.
package server
