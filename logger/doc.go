// Package logger provides structured logging for pipekit built on zerolog.
//
// A single global logger is initialized once (from config or environment)
// and components derive tagged child loggers from it:
//
//	log := logger.NewFromEnv("pipekit")
//	runLog := log.WithComponent("runner").WithRun(runID)
//	runLog.Info("stage dispatched", logger.Fields("stage", "lint"))
package logger
