package process

import (
	"fmt"
	"io"
	"sort"
	"time"
)

// Command configures a subprocess to execute.
type Command struct {
	// Binary is the executable path or name (resolved via PATH).
	Binary string
	// Args are the command-line arguments.
	Args []string
	// Dir is the working directory. If empty, uses the current directory.
	Dir string
	// Env is additional environment variables (key=value). Merged with os.Environ.
	Env []string
	// Stdin provides input to the process. May be nil.
	Stdin io.Reader
	// GracePeriod is how long to wait after SIGTERM before SIGKILL.
	// Defaults to 5 seconds if zero.
	GracePeriod time.Duration
}

// WithParams returns a copy of the command with the parameter bundle
// appended as KEY=VALUE environment variables, in sorted key order.
func (c Command) WithParams(params map[string]string) Command {
	if len(params) == 0 {
		return c
	}
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	env := make([]string, 0, len(c.Env)+len(keys))
	env = append(env, c.Env...)
	for _, k := range keys {
		env = append(env, fmt.Sprintf("%s=%s", k, params[k]))
	}
	out := c
	out.Env = env
	return out
}
