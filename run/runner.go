package run

import (
	"context"
	"strings"
	"time"

	"github.com/kbukum/pipekit/errors"
	"github.com/kbukum/pipekit/executor"
	"github.com/kbukum/pipekit/logger"
	"github.com/kbukum/pipekit/mutex"
	"github.com/kbukum/pipekit/observability"
	"github.com/kbukum/pipekit/pipeline"
	"github.com/kbukum/pipekit/util"
)

// DefaultLockTimeout bounds lock waits for stages that do not set their own.
const DefaultLockTimeout = 5 * time.Minute

// Runner validates pipeline definitions and executes runs.
type Runner struct {
	// Actions resolves action stage references.
	Actions *executor.Registry
	// Loader resolves sub-pipeline stage references. May be nil when no
	// definition uses sub-pipelines.
	Loader pipeline.Loader
	// Locker serializes stages naming the same resource lock. May be nil
	// when no definition uses locks.
	Locker mutex.Locker
	// Log is the run logger.
	Log *logger.Logger
	// Metrics records stage outcomes and lock waits. Optional.
	Metrics *observability.Metrics
	// MaxParallel caps concurrently running stages per run. Zero means
	// unbounded.
	MaxParallel int
	// LockTimeout is the default lock wait bound for stages without one.
	// Zero means DefaultLockTimeout.
	LockTimeout time.Duration
}

// New creates a Runner with the given collaborators.
func New(actions *executor.Registry, loader pipeline.Loader, locker mutex.Locker, log *logger.Logger) *Runner {
	return &Runner{
		Actions: actions,
		Loader:  loader,
		Locker:  locker,
		Log:     log.WithComponent("run"),
	}
}

// plan is a fully resolved, validated pipeline: its graph plus a compiled
// plan for every sub-pipeline stage. Compilation happens entirely before
// execution so every broken reference surfaces before any stage runs.
type plan struct {
	graph *pipeline.Graph
	subs  map[string]*plan
}

// compile builds and validates the graph, resolves every action reference
// against the registry, and recursively compiles sub-pipeline references.
// The stack carries the pipeline names on the current resolution path to
// reject reference cycles.
func (r *Runner) compile(p *pipeline.Pipeline, stack []string) (*plan, error) {
	for _, name := range stack {
		if name == p.Name {
			return nil, errors.Definition(p.Name, "sub-pipeline reference cycle")
		}
	}

	graph, err := pipeline.Build(p)
	if err != nil {
		return nil, err
	}

	pl := &plan{graph: graph, subs: make(map[string]*plan)}
	stack = append(stack, p.Name)

	for _, name := range graph.Stages() {
		def := graph.Def(name)
		if def.IsSubPipeline() {
			if r.Loader == nil {
				return nil, errors.UnknownPipeline(name, def.Pipeline)
			}
			child, err := r.Loader.Load(def.Pipeline)
			if err != nil {
				return nil, errors.UnknownPipeline(name, def.Pipeline).WithCause(err)
			}
			sub, err := r.compile(child, stack)
			if err != nil {
				return nil, err
			}
			pl.subs[name] = sub
			continue
		}
		if _, ok := r.Actions.Get(def.Action); !ok {
			return nil, errors.UnknownAction(name, def.Action)
		}
	}
	return pl, nil
}

// Validate checks a definition without executing it: graph shape, action
// references, and sub-pipeline references, recursively.
func (r *Runner) Validate(p *pipeline.Pipeline) error {
	_, err := r.compile(p, nil)
	return err
}

// Run executes the pipeline with the given parameter overrides bound over
// its defaults. The returned error covers pre-execution rejection only
// (definition errors, guard violations, unresolved references); execution
// outcomes, including failures, are expressed in the report.
func (r *Runner) Run(ctx context.Context, p *pipeline.Pipeline, overrides map[string]string) (*Report, error) {
	params := pipeline.BindParams(p.Params, overrides)
	if err := pipeline.CheckGuards(p, params); err != nil {
		return nil, err
	}
	pl, err := r.compile(p, nil)
	if err != nil {
		return nil, err
	}
	return r.execute(ctx, pl, params), nil
}

// RunByName loads a pipeline through the Loader and runs it.
func (r *Runner) RunByName(ctx context.Context, name string, overrides map[string]string) (*Report, error) {
	if r.Loader == nil {
		return nil, errors.NotFound("pipeline", name)
	}
	p, err := r.Loader.Load(name)
	if err != nil {
		return nil, errors.NotFound("pipeline", name).WithCause(err)
	}
	return r.Run(ctx, p, overrides)
}

// execute schedules one compiled plan to completion and returns its report.
func (r *Runner) execute(ctx context.Context, pl *plan, params map[string]string) *Report {
	return r.executeInstance(ctx, newInstance(pl.graph, params), pl)
}

func (r *Runner) executeInstance(ctx context.Context, inst *Instance, pl *plan) *Report {
	log := r.Log.WithRun(inst.ID()).WithFields(map[string]interface{}{
		logger.FieldPipeline: pl.graph.Pipeline().Name,
	})

	ctx, span := observability.StartSpan(ctx, observability.SpanRun)
	defer span.End()
	observability.SetSpanAttribute(ctx, observability.AttrPipeline, pl.graph.Pipeline().Name)
	observability.SetSpanAttribute(ctx, observability.AttrRunID, inst.ID())

	log.Info("run started", logger.Fields("params", maskedParams(inst.Params())))
	inst.start()
	r.schedule(ctx, inst, pl, log)
	inst.finish(ctx.Err() != nil)

	report := inst.Snapshot()
	observability.SetSpanAttribute(ctx, observability.AttrStatus, report.Status.String())
	log.Info("run finished", logger.Fields(
		logger.FieldStatus, report.Status.String(),
		logger.FieldDuration, report.Duration.Milliseconds(),
	))
	return report
}

// maskedParams renders run parameters for logging, hiding values whose
// keys look sensitive.
func maskedParams(params map[string]string) map[string]string {
	out := make(map[string]string, len(params))
	for k, v := range params {
		lk := strings.ToLower(k)
		if strings.Contains(lk, "secret") || strings.Contains(lk, "token") || strings.Contains(lk, "password") {
			out[k] = util.MaskSecret(v, 2)
		} else {
			out[k] = v
		}
	}
	return out
}

func (r *Runner) lockTimeout(def *pipeline.StageDef) time.Duration {
	if def.LockTimeout > 0 {
		return def.LockTimeout.Std()
	}
	if r.LockTimeout > 0 {
		return r.LockTimeout
	}
	return DefaultLockTimeout
}
