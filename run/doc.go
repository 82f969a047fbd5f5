// Package run drives pipeline executions end to end. The Runner validates
// a definition, binds parameters, resolves action and sub-pipeline
// references, then schedules stages as their dependencies complete.
//
// Scheduling is a cooperative dispatch loop: stages execute as asynchronous
// tasks the loop awaits, never inline. Predecessor-before-successor ordering
// is strict for every declared edge; stages without a transitive dependency
// relationship carry no mutual ordering. Failures stay local to a stage's
// subtree, so unrelated branches run to completion and partial results are
// always reported.
package run
