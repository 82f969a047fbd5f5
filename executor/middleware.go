package executor

import (
	"context"
	"time"

	"github.com/kbukum/pipekit/logger"
	"github.com/kbukum/pipekit/observability"
)

// WithTracing wraps an Action with OpenTelemetry span creation.
// Each execution creates a span named "{prefix}.{actionName}".
func WithTracing(action Action, prefix string) Action {
	return &tracingAction{inner: action, prefix: prefix}
}

type tracingAction struct {
	inner  Action
	prefix string
}

func (a *tracingAction) Name() string { return a.inner.Name() }

func (a *tracingAction) Execute(ctx context.Context, params map[string]string) (string, error) {
	spanName := a.prefix + "." + a.inner.Name()
	ctx, span := observability.StartSpan(ctx, spanName)
	defer span.End()

	observability.SetSpanAttribute(ctx, observability.AttrStage, a.inner.Name())

	output, err := a.inner.Execute(ctx, params)
	if err != nil {
		observability.SetSpanError(ctx, err)
	}

	return output, err
}

// WithMetrics wraps an Action with error counting.
// Stage-level duration metrics are recorded by the scheduler, which also
// sees skips and lock waits; this wrapper only attributes raw action errors.
func WithMetrics(action Action, metrics *observability.Metrics) Action {
	return &metricsAction{inner: action, metrics: metrics}
}

type metricsAction struct {
	inner   Action
	metrics *observability.Metrics
}

func (a *metricsAction) Name() string { return a.inner.Name() }

func (a *metricsAction) Execute(ctx context.Context, params map[string]string) (string, error) {
	output, err := a.inner.Execute(ctx, params)
	if err != nil {
		a.metrics.RecordError(ctx, "execute", a.inner.Name())
	}
	return output, err
}

// WithLogging wraps an Action with execution logging.
// Logs: action name, duration, and success/error status.
func WithLogging(action Action, log *logger.Logger) Action {
	return &loggingAction{inner: action, log: log}
}

type loggingAction struct {
	inner Action
	log   *logger.Logger
}

func (a *loggingAction) Name() string { return a.inner.Name() }

func (a *loggingAction) Execute(ctx context.Context, params map[string]string) (string, error) {
	start := time.Now()
	output, err := a.inner.Execute(ctx, params)
	duration := time.Since(start)

	fields := map[string]interface{}{
		"action":   a.inner.Name(),
		"duration": duration.String(),
	}

	if err != nil {
		fields["error"] = err.Error()
		a.log.Error("action failed", fields)
	} else {
		a.log.Debug("action completed", fields)
	}

	return output, err
}
