package executor

import (
	"context"
	"time"

	"github.com/kbukum/pipekit/process"
)

// outputTailLines bounds how much subprocess output an outcome carries.
const outputTailLines = 20

// CommandAction executes a subprocess, passing the stage's bound parameters
// as environment variables.
type CommandAction struct {
	name string
	cmd  process.Command
}

// NewCommand creates an action that runs the given subprocess.
func NewCommand(name string, cmd process.Command) *CommandAction {
	return &CommandAction{name: name, cmd: cmd}
}

// Name returns the action name.
func (a *CommandAction) Name() string { return a.name }

// Execute runs the subprocess with params appended to its environment.
// A non-zero exit is an error; the returned output is the tail of the
// process output either way.
func (a *CommandAction) Execute(ctx context.Context, params map[string]string) (string, error) {
	result, err := process.Run(ctx, a.cmd.WithParams(params))
	if result == nil {
		return "", err
	}
	return result.Tail(outputTailLines), err
}

// Grace returns a copy of the action with the given SIGTERM grace period.
func (a *CommandAction) Grace(d time.Duration) *CommandAction {
	cmd := a.cmd
	cmd.GracePeriod = d
	return &CommandAction{name: a.name, cmd: cmd}
}
