// Package pipeline defines the declarative pipeline model: named stages
// with predecessor sets, optional conditions, resource-lock names, timeouts,
// and nested pipeline references with parameter bindings.
//
// Definitions are loaded from YAML, validated eagerly (duplicate names,
// dangling or cyclic dependencies, malformed conditions are all definition
// errors rejected before any stage is dispatched), and compiled into an
// index-based dependency graph that the run package schedules.
package pipeline
