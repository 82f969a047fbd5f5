package run

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kbukum/pipekit/pipeline"
)

// stageState is the mutable record of one stage during execution.
type stageState struct {
	status    StageStatus
	startedAt time.Time
	endedAt   time.Time
	output    string
	err       error
	child     *Report
}

// Instance is one execution of a pipeline with concrete parameter bindings.
// It owns a stage state for every stage and is private to its run; the only
// state crossing run boundaries is the named resource lock.
type Instance struct {
	mu        sync.RWMutex
	id        string
	pipeline  string
	params    map[string]string
	status    Status
	startedAt time.Time
	endedAt   time.Time
	order     []string
	stages    map[string]*stageState
}

func newInstance(g *pipeline.Graph, params map[string]string) *Instance {
	order := g.Stages()
	stages := make(map[string]*stageState, len(order))
	for _, name := range order {
		stages[name] = &stageState{status: StageBlocked}
	}
	return &Instance{
		id:       uuid.NewString(),
		pipeline: g.Pipeline().Name,
		params:   params,
		status:   StatusPending,
		order:    order,
		stages:   stages,
	}
}

// ID returns the run identifier.
func (in *Instance) ID() string { return in.id }

// Params returns the run's bound parameters. Callers must not mutate.
func (in *Instance) Params() map[string]string { return in.params }

// Status returns the current overall run status.
func (in *Instance) Status() Status {
	in.mu.RLock()
	defer in.mu.RUnlock()
	return in.status
}

// StageStatus returns the current status of the named stage.
func (in *Instance) StageStatus(name string) StageStatus {
	in.mu.RLock()
	defer in.mu.RUnlock()
	return in.stages[name].status
}

func (in *Instance) start() {
	in.mu.Lock()
	defer in.mu.Unlock()
	in.status = StatusRunning
	in.startedAt = time.Now()
}

// markReady records that a stage's predecessors are satisfied while it
// waits for dispatch capacity.
func (in *Instance) markReady(name string) {
	in.mu.Lock()
	defer in.mu.Unlock()
	in.stages[name].status = StageReady
}

func (in *Instance) markRunning(name string) {
	in.mu.Lock()
	defer in.mu.Unlock()
	st := in.stages[name]
	st.status = StageRunning
	st.startedAt = time.Now()
}

// markSkipped records a terminal skip without start or end timestamps; a
// skipped stage never executed.
func (in *Instance) markSkipped(name string, status StageStatus) {
	in.mu.Lock()
	defer in.mu.Unlock()
	in.stages[name].status = status
}

func (in *Instance) markCancelledBeforeDispatch(name string, err error) {
	in.mu.Lock()
	defer in.mu.Unlock()
	st := in.stages[name]
	st.status = StageCancelled
	st.err = err
}

func (in *Instance) finishStage(name string, status StageStatus, output string, err error, child *Report) {
	in.mu.Lock()
	defer in.mu.Unlock()
	st := in.stages[name]
	st.status = status
	st.endedAt = time.Now()
	st.output = output
	st.err = err
	st.child = child
}

// finish aggregates stage outcomes into the overall run status. The run
// succeeded only if every stage either succeeded or was skipped by its
// condition; a failed stage outweighs cancellation.
func (in *Instance) finish(cancelled bool) {
	in.mu.Lock()
	defer in.mu.Unlock()

	allClean := true
	anyFailed := false
	anyCancelled := false
	for _, st := range in.stages {
		switch st.status {
		case StageSucceeded, StageSkippedByCondition:
		case StageFailed:
			allClean = false
			anyFailed = true
		case StageCancelled:
			allClean = false
			anyCancelled = true
		default:
			allClean = false
		}
	}

	switch {
	case allClean:
		in.status = StatusSucceeded
	case anyFailed:
		in.status = StatusFailed
	case anyCancelled || cancelled:
		in.status = StatusCancelled
	default:
		in.status = StatusFailed
	}
	in.endedAt = time.Now()
}

// Snapshot returns a point-in-time report of the run, safe to serve while
// the run is still executing.
func (in *Instance) Snapshot() *Report {
	in.mu.RLock()
	defer in.mu.RUnlock()

	report := &Report{
		RunID:     in.id,
		Pipeline:  in.pipeline,
		Status:    in.status,
		Params:    in.params,
		StartedAt: in.startedAt,
		EndedAt:   in.endedAt,
		Stages:    make([]StageReport, 0, len(in.order)),
	}
	if !in.endedAt.IsZero() {
		report.Duration = in.endedAt.Sub(in.startedAt)
	}
	for _, name := range in.order {
		st := in.stages[name]
		sr := StageReport{
			Name:      name,
			Status:    st.status,
			StartedAt: st.startedAt,
			EndedAt:   st.endedAt,
			Output:    st.output,
			Child:     st.child,
		}
		if !st.endedAt.IsZero() && !st.startedAt.IsZero() {
			sr.Duration = st.endedAt.Sub(st.startedAt)
		}
		if st.err != nil {
			sr.Error = st.err.Error()
		}
		report.Stages = append(report.Stages, sr)
	}
	return report
}
