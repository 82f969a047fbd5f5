package run

// StageStatus is the lifecycle state of one stage within a run.
type StageStatus string

const (
	// StageBlocked means at least one predecessor has not finished.
	StageBlocked StageStatus = "blocked"
	// StageReady means all predecessors are satisfied and the stage awaits
	// dispatch capacity.
	StageReady StageStatus = "ready"
	// StageRunning means the stage body is executing.
	StageRunning StageStatus = "running"
	// StageSucceeded means the stage body completed without error.
	StageSucceeded StageStatus = "succeeded"
	// StageFailed means the stage body or its lock acquisition failed.
	StageFailed StageStatus = "failed"
	// StageCancelled means the stage was stopped by its timeout or by run
	// cancellation.
	StageCancelled StageStatus = "cancelled"
	// StageSkippedByCondition means the stage's condition evaluated false.
	// It counts as satisfied for dependents.
	StageSkippedByCondition StageStatus = "skipped_by_condition"
	// StageSkippedByUpstreamFailure means a predecessor failed or was
	// cancelled. It propagates transitively without executing anything.
	StageSkippedByUpstreamFailure StageStatus = "skipped_by_upstream_failure"
)

// Terminal reports whether the status is final.
func (s StageStatus) Terminal() bool {
	switch s {
	case StageSucceeded, StageFailed, StageCancelled,
		StageSkippedByCondition, StageSkippedByUpstreamFailure:
		return true
	}
	return false
}

// Satisfies reports whether the status unblocks dependents.
func (s StageStatus) Satisfies() bool {
	return s == StageSucceeded || s == StageSkippedByCondition
}

// PropagatesSkip reports whether the status forces dependents into
// StageSkippedByUpstreamFailure.
func (s StageStatus) PropagatesSkip() bool {
	return s == StageFailed || s == StageCancelled || s == StageSkippedByUpstreamFailure
}

func (s StageStatus) String() string { return string(s) }

// Status is the overall state of a run.
type Status string

const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
	StatusCancelled Status = "cancelled"
)

// Terminal reports whether the run status is final.
func (s Status) Terminal() bool {
	return s == StatusSucceeded || s == StatusFailed || s == StatusCancelled
}

func (s Status) String() string { return string(s) }
