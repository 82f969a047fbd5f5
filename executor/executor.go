package executor

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/kbukum/pipekit/errors"
)

// Status classifies how an action execution ended.
type Status string

const (
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
	StatusCancelled Status = "cancelled"
)

// Outcome is the result of executing one action.
type Outcome struct {
	// Status is the terminal classification of the execution.
	Status Status
	// Output is the action's short output, present on success and often on
	// failure too.
	Output string
	// Err carries the failure or cancellation cause, nil on success.
	Err error
	// Duration is wall-clock execution time.
	Duration time.Duration
}

// Execute runs an action with the stage's bound parameters under timeout.
// A zero timeout means no per-stage limit; the run's context still applies.
//
// Outcome mapping:
//   - nil error: Succeeded.
//   - the stage timeout fired: Cancelled with an ACTION_TIMEOUT cause. The
//     timeout is an execution bound being enforced, not an action defect.
//   - the surrounding run was cancelled: Cancelled.
//   - anything else: Failed with an ACTION_FAILURE cause.
func Execute(ctx context.Context, action Action, params map[string]string, timeout time.Duration) Outcome {
	runCtx := ctx
	var cancel context.CancelFunc
	if timeout > 0 {
		runCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	start := time.Now()
	output, err := action.Execute(runCtx, params)
	duration := time.Since(start)

	if err == nil {
		return Outcome{Status: StatusSucceeded, Output: output, Duration: duration}
	}

	// The stage deadline fired while the run itself was still live.
	if stderrors.Is(runCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
		return Outcome{
			Status:   StatusCancelled,
			Output:   output,
			Err:      errors.ActionTimeout(action.Name(), timeout.String()).WithCause(err),
			Duration: duration,
		}
	}

	if ctx.Err() != nil {
		return Outcome{
			Status:   StatusCancelled,
			Output:   output,
			Err:      err,
			Duration: duration,
		}
	}

	return Outcome{
		Status:   StatusFailed,
		Output:   output,
		Err:      errors.ActionFailure(action.Name(), err),
		Duration: duration,
	}
}
