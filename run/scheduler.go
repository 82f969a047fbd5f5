package run

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/kbukum/pipekit/errors"
	"github.com/kbukum/pipekit/executor"
	"github.com/kbukum/pipekit/logger"
	"github.com/kbukum/pipekit/mutex"
	"github.com/kbukum/pipekit/observability"
	"github.com/kbukum/pipekit/pipeline"
)

// schedule runs the cooperative dispatch loop: mark skip cascades, dispatch
// every stage whose predecessors are satisfied, then block until a running
// stage completes or the run is cancelled. The loop exits when every stage
// is terminal.
func (r *Runner) schedule(ctx context.Context, inst *Instance, pl *plan, log *logger.Logger) {
	pending := make(map[string]struct{}, len(pl.graph.Stages()))
	for _, name := range pl.graph.Stages() {
		pending[name] = struct{}{}
	}

	running := 0
	done := make(chan string)
	ctxDone := ctx.Done()

	for {
		if ctx.Err() == nil {
			running += r.dispatch(ctx, inst, pl, pending, running, done, log)
		}

		if len(pending) == 0 && running == 0 {
			return
		}

		if running == 0 && ctx.Err() != nil {
			// Cancelled with nothing in flight: everything still pending
			// will never be dispatched.
			cancelPending(inst, pending, ctx.Err())
			return
		}

		if running == 0 {
			// Nothing runnable and nothing in flight. Build's cycle check
			// makes this unreachable; bail out rather than deadlock.
			cancelPending(inst, pending, errors.Internal(nil))
			return
		}

		select {
		case <-done:
			running--
		case <-ctxDone:
			// Stop dispatching; in-flight stages see the cancellation
			// through their context and drain through done.
			ctxDone = nil
			cancelPending(inst, pending, ctx.Err())
		}
	}
}

// dispatch makes one pass over pending stages, applying skip cascades to a
// fixpoint and launching every ready stage within the parallelism cap.
// It returns the number of stages launched.
func (r *Runner) dispatch(ctx context.Context, inst *Instance, pl *plan, pending map[string]struct{}, running int, done chan<- string, log *logger.Logger) int {
	launched := 0
	for progress := true; progress; {
		progress = false
		for _, name := range pl.graph.Stages() {
			if _, ok := pending[name]; !ok {
				continue
			}

			skip, ready := r.evalPreds(inst, pl.graph.Preds(name))
			if skip {
				delete(pending, name)
				inst.markSkipped(name, StageSkippedByUpstreamFailure)
				log.Debug("stage skipped", logger.Fields(
					logger.FieldStage, name,
					logger.FieldStatus, StageSkippedByUpstreamFailure.String(),
				))
				progress = true
				continue
			}
			if !ready {
				continue
			}

			if cond := pl.graph.Condition(name); cond != nil && !cond.Eval(inst.Params()) {
				delete(pending, name)
				inst.markSkipped(name, StageSkippedByCondition)
				log.Debug("stage skipped", logger.Fields(
					logger.FieldStage, name,
					logger.FieldStatus, StageSkippedByCondition.String(),
				))
				progress = true
				continue
			}

			if r.MaxParallel > 0 && running+launched >= r.MaxParallel {
				inst.markReady(name)
				continue
			}

			delete(pending, name)
			launched++
			progress = true
			go func(name string) {
				r.runStage(ctx, inst, pl, name, log)
				done <- name
			}(name)
		}
	}
	return launched
}

// evalPreds classifies a stage's predecessors. skip means some predecessor
// failed, was cancelled, or was itself skipped by upstream failure. ready
// means every predecessor is satisfied.
func (r *Runner) evalPreds(inst *Instance, preds []string) (skip, ready bool) {
	ready = true
	for _, p := range preds {
		st := inst.StageStatus(p)
		if st.PropagatesSkip() {
			return true, false
		}
		if !st.Satisfies() {
			ready = false
		}
	}
	return false, ready
}

func cancelPending(inst *Instance, pending map[string]struct{}, cause error) {
	for name := range pending {
		delete(pending, name)
		inst.markCancelledBeforeDispatch(name, cause)
	}
}

// runStage executes one stage body: lock acquisition if configured, then
// the action or sub-pipeline, recording the terminal state on every path.
func (r *Runner) runStage(ctx context.Context, inst *Instance, pl *plan, name string, log *logger.Logger) {
	def := pl.graph.Def(name)
	slog := log.WithStage(name)

	ctx, span := observability.StartSpan(ctx, observability.SpanStage)
	defer span.End()
	observability.SetSpanAttribute(ctx, observability.AttrStage, name)

	inst.markRunning(name)
	if r.Metrics != nil {
		r.Metrics.RecordStageStart(ctx)
	}
	slog.Info("stage started")

	start := time.Now()
	status, output, child, err := r.runBody(ctx, inst, pl, name, def, slog)
	duration := time.Since(start)

	inst.finishStage(name, status, output, err, child)
	observability.SetSpanAttribute(ctx, observability.AttrStatus, status.String())
	if err != nil {
		observability.SetSpanError(ctx, err)
	}
	if r.Metrics != nil {
		r.Metrics.RecordStageEnd(ctx, pl.graph.Pipeline().Name, name, status.String(), duration)
	}

	fields := logger.Fields(
		logger.FieldStatus, status.String(),
		logger.FieldDuration, duration.Milliseconds(),
	)
	if err != nil {
		slog.Error("stage finished", logger.MergeWithError(fields, err))
	} else {
		slog.Info("stage finished", fields)
	}
}

func (r *Runner) runBody(ctx context.Context, inst *Instance, pl *plan, name string, def *pipeline.StageDef, slog *logger.Logger) (StageStatus, string, *Report, error) {
	if def.Lock != "" {
		token, err := r.acquireLock(ctx, def, slog)
		if err != nil {
			if ctx.Err() != nil {
				return StageCancelled, "", nil, err
			}
			// Lock acquisition timeout is a reported failure, not a user
			// cancellation.
			return StageFailed, "", nil, err
		}
		// Release must run even when the run context is already cancelled.
		defer func() {
			if rerr := r.Locker.Release(context.WithoutCancel(ctx), token); rerr != nil {
				slog.Warn("lock release failed", logger.Fields(
					logger.FieldLock, def.Lock,
					logger.FieldError, rerr.Error(),
				))
			}
		}()
	}

	if def.IsSubPipeline() {
		return r.runSubPipeline(ctx, pl.subs[name], def)
	}

	action, _ := r.Actions.Get(def.Action)
	outcome := executor.Execute(ctx, action, inst.Params(), def.Timeout.Std())
	switch outcome.Status {
	case executor.StatusSucceeded:
		return StageSucceeded, outcome.Output, nil, nil
	case executor.StatusCancelled:
		return StageCancelled, outcome.Output, nil, outcome.Err
	default:
		return StageFailed, outcome.Output, nil, outcome.Err
	}
}

func (r *Runner) acquireLock(ctx context.Context, def *pipeline.StageDef, slog *logger.Logger) (*mutex.Token, error) {
	timeout := r.lockTimeout(def)

	ctx, span := observability.StartSpan(ctx, observability.SpanLockWait)
	defer span.End()
	observability.SetSpanAttribute(ctx, observability.AttrLock, def.Lock)

	waitStart := time.Now()
	token, err := r.Locker.Acquire(ctx, def.Lock, timeout)
	wait := time.Since(waitStart)

	if r.Metrics != nil {
		r.Metrics.RecordLockWait(ctx, def.Lock, wait, err == nil)
	}
	if err != nil {
		observability.SetSpanError(ctx, err)
		return nil, err
	}
	slog.Debug("lock acquired", logger.Fields(
		logger.FieldLock, def.Lock,
		logger.FieldDuration, wait.Milliseconds(),
	))
	return token, nil
}

// runSubPipeline executes a nested pipeline as the stage body. The child
// run sees only the stage's bindings merged over the child definition's
// defaults, never the parent run's parameters. The stage's timeout bounds
// the whole child run, same as it bounds an action body.
func (r *Runner) runSubPipeline(ctx context.Context, sub *plan, def *pipeline.StageDef) (StageStatus, string, *Report, error) {
	childDef := sub.graph.Pipeline()
	params := pipeline.BindParams(childDef.Params, def.Params)
	if err := pipeline.CheckGuards(childDef, params); err != nil {
		return StageFailed, "", nil, err
	}

	runCtx := ctx
	if timeout := def.Timeout.Std(); timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	child := r.execute(runCtx, sub, params)
	switch child.Status {
	case StatusSucceeded:
		return StageSucceeded, "", child, nil
	case StatusCancelled:
		if stderrors.Is(runCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
			return StageCancelled, "", child, errors.ActionTimeout(def.Name, def.Timeout.String())
		}
		return StageCancelled, "", child, errors.RunCancelled(child.RunID)
	default:
		return StageFailed, "", child, errors.ActionFailure(def.Pipeline, nil)
	}
}
