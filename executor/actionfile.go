package executor

import (
	"fmt"
	"os"
	"sort"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/kbukum/pipekit/process"
)

// CommandSpec is the YAML form of a command action.
type CommandSpec struct {
	Name   string            `yaml:"name" validate:"required"`
	Binary string            `yaml:"binary" validate:"required"`
	Args   []string          `yaml:"args,omitempty"`
	Dir    string            `yaml:"dir,omitempty"`
	Env    map[string]string `yaml:"env,omitempty"`
	// Grace is the SIGTERM-to-SIGKILL grace period (e.g. "10s").
	Grace string `yaml:"grace,omitempty"`
}

type actionsFile struct {
	Actions []CommandSpec `yaml:"actions"`
}

// ParseCommandSpecs decodes an actions file from YAML bytes.
func ParseCommandSpecs(data []byte) ([]CommandSpec, error) {
	var f actionsFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, err
	}
	return f.Actions, nil
}

// LoadCommandActions reads an actions YAML file and registers a
// CommandAction for every entry.
func LoadCommandActions(r *Registry, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	specs, err := ParseCommandSpecs(data)
	if err != nil {
		return fmt.Errorf("executor: parsing %s: %w", path, err)
	}
	return RegisterCommandSpecs(r, specs)
}

// RegisterCommandSpecs registers a CommandAction per spec.
func RegisterCommandSpecs(r *Registry, specs []CommandSpec) error {
	for _, spec := range specs {
		action, err := spec.Action()
		if err != nil {
			return err
		}
		r.Register(action)
	}
	return nil
}

// Action builds the CommandAction described by the spec.
func (s CommandSpec) Action() (*CommandAction, error) {
	if s.Name == "" {
		return nil, fmt.Errorf("executor: action name is required")
	}
	if s.Binary == "" {
		return nil, fmt.Errorf("executor: action %q binary is required", s.Name)
	}

	cmd := process.Command{
		Binary: s.Binary,
		Args:   s.Args,
		Dir:    s.Dir,
		Env:    envList(s.Env),
	}
	if s.Grace != "" {
		grace, err := time.ParseDuration(s.Grace)
		if err != nil {
			return nil, fmt.Errorf("executor: action %q grace %q is not a duration: %w", s.Name, s.Grace, err)
		}
		cmd.GracePeriod = grace
	}
	return NewCommand(s.Name, cmd), nil
}

func envList(env map[string]string) []string {
	if len(env) == 0 {
		return nil
	}
	keys := make([]string, 0, len(env))
	for k := range env {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	list := make([]string, 0, len(keys))
	for _, k := range keys {
		list = append(list, k+"="+env[k])
	}
	return list
}
