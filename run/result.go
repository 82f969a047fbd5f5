package run

import "time"

// Exit codes for reporting a run result to a calling process.
const (
	ExitSucceeded = 0
	ExitFailed    = 1
	ExitCancelled = 2
)

// StageReport is the terminal record of one stage.
type StageReport struct {
	Name      string        `json:"name"`
	Status    StageStatus   `json:"status"`
	StartedAt time.Time     `json:"started_at,omitzero"`
	EndedAt   time.Time     `json:"ended_at,omitzero"`
	Duration  time.Duration `json:"duration"`
	// Output is the stage body's short output, when any.
	Output string `json:"output,omitempty"`
	// Error describes the failure or cancellation cause.
	Error string `json:"error,omitempty"`
	// Child is the nested run report for a sub-pipeline stage.
	Child *Report `json:"child,omitempty"`
}

// Report is the result of one run, complete or in flight.
type Report struct {
	RunID     string        `json:"run_id"`
	Pipeline  string        `json:"pipeline"`
	Status    Status        `json:"status"`
	Params    map[string]string `json:"params,omitempty"`
	StartedAt time.Time     `json:"started_at,omitzero"`
	EndedAt   time.Time     `json:"ended_at,omitzero"`
	Duration  time.Duration `json:"duration"`
	Stages    []StageReport `json:"stages"`
}

// Stage returns the report for the named stage, or nil.
func (r *Report) Stage(name string) *StageReport {
	for i := range r.Stages {
		if r.Stages[i].Name == name {
			return &r.Stages[i]
		}
	}
	return nil
}

// ExitCode maps the run status to a process exit code: 0 succeeded,
// 1 failed, 2 cancelled. Non-terminal statuses map to failed.
func (r *Report) ExitCode() int {
	switch r.Status {
	case StatusSucceeded:
		return ExitSucceeded
	case StatusCancelled:
		return ExitCancelled
	default:
		return ExitFailed
	}
}
