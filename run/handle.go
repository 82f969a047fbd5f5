package run

import (
	"context"

	"github.com/kbukum/pipekit/pipeline"
)

// Handle is a live reference to an asynchronously started run. It serves
// point-in-time snapshots while the run executes and the final report once
// it ends.
type Handle struct {
	inst   *Instance
	cancel context.CancelFunc
	done   chan struct{}
	report *Report
}

// Start validates and launches a run without waiting for it. Validation and
// guard errors are returned synchronously; once Start returns a handle, the
// run's outcome is expressed in its report.
func (r *Runner) Start(ctx context.Context, p *pipeline.Pipeline, overrides map[string]string) (*Handle, error) {
	params := pipeline.BindParams(p.Params, overrides)
	if err := pipeline.CheckGuards(p, params); err != nil {
		return nil, err
	}
	pl, err := r.compile(p, nil)
	if err != nil {
		return nil, err
	}

	runCtx, cancel := context.WithCancel(ctx)
	h := &Handle{
		inst:   newInstance(pl.graph, params),
		cancel: cancel,
		done:   make(chan struct{}),
	}
	go func() {
		defer cancel()
		h.report = r.executeInstance(runCtx, h.inst, pl)
		close(h.done)
	}()
	return h, nil
}

// ID returns the run identifier.
func (h *Handle) ID() string { return h.inst.ID() }

// Done returns a channel closed when the run reaches a terminal status.
func (h *Handle) Done() <-chan struct{} { return h.done }

// Snapshot returns the final report if the run has ended, otherwise a
// point-in-time view of the in-flight run.
func (h *Handle) Snapshot() *Report {
	select {
	case <-h.done:
		return h.report
	default:
		return h.inst.Snapshot()
	}
}

// Cancel requests cancellation of the run. In-flight stages are stopped
// through their context; undispatched stages are marked cancelled.
func (h *Handle) Cancel() { h.cancel() }

// Wait blocks until the run ends or ctx is cancelled. Cancelling ctx does
// not cancel the run itself.
func (h *Handle) Wait(ctx context.Context) (*Report, error) {
	select {
	case <-h.done:
		return h.report, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
