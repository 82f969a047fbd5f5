package executor

import "context"

// Action is a unit of work a stage can execute. Execute receives the bound
// parameter set for the stage and returns a short human-readable output
// (command tail, summary line) along with any error.
//
// Execute must honor ctx cancellation: the executor enforces timeouts and
// run cancellation exclusively through the context.
type Action interface {
	Name() string
	Execute(ctx context.Context, params map[string]string) (string, error)
}

// ActionFunc adapts a function to the Action interface.
type ActionFunc struct {
	name string
	fn   func(ctx context.Context, params map[string]string) (string, error)
}

// NewFunc creates an Action from a function.
func NewFunc(name string, fn func(ctx context.Context, params map[string]string) (string, error)) *ActionFunc {
	return &ActionFunc{name: name, fn: fn}
}

// Name returns the action name.
func (a *ActionFunc) Name() string { return a.name }

// Execute invokes the wrapped function.
func (a *ActionFunc) Execute(ctx context.Context, params map[string]string) (string, error) {
	return a.fn(ctx, params)
}
