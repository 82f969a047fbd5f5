package pipeline

// Pipeline is a declarative, YAML-defined pipeline definition. It is
// immutable once a run starts; concrete parameter values are bound per run.
type Pipeline struct {
	// Name is the pipeline identifier.
	Name string `yaml:"name" validate:"required"`
	// Params are default parameter values, overridable per run.
	Params map[string]string `yaml:"params,omitempty"`
	// Guards protect parameter values from destructive runs.
	Guards []Guard `yaml:"protected,omitempty"`
	// Stages defines the pipeline's stage specifications.
	Stages []StageDef `yaml:"stages" validate:"required,min=1,dive"`
}

// StageDef defines one stage within a pipeline. Exactly one of Action or
// Pipeline must be set: an action stage runs a registered action; a pipeline
// stage invokes a nested pipeline definition as its body.
type StageDef struct {
	// Name is the stage identifier, unique within the definition.
	Name string `yaml:"name" validate:"required"`
	// Action is the registry lookup key for an action stage.
	Action string `yaml:"action,omitempty"`
	// Pipeline is the name of a nested pipeline definition for a
	// sub-pipeline stage, resolved through the loader.
	Pipeline string `yaml:"pipeline,omitempty"`
	// DependsOn lists stage names this stage depends on.
	DependsOn []string `yaml:"depends_on,omitempty"`
	// Condition is a predicate over run parameters; when it evaluates
	// false the stage is skipped and counts as satisfied for dependents.
	Condition string `yaml:"condition,omitempty"`
	// Lock is an optional resource-lock name serializing this stage
	// against any other stage (in any run) naming the same lock.
	Lock string `yaml:"lock,omitempty"`
	// LockTimeout bounds the wait for Lock. Zero means the runner default.
	LockTimeout Duration `yaml:"lock_timeout,omitempty"`
	// Timeout bounds the stage body execution. Zero means no timeout.
	Timeout Duration `yaml:"timeout,omitempty"`
	// Params are parameter bindings for a sub-pipeline stage. The nested
	// run sees only these bindings merged over the nested definition's
	// defaults, never the parent run's parameters.
	Params map[string]string `yaml:"params,omitempty"`
}

// IsSubPipeline reports whether the stage body is a nested pipeline.
func (s *StageDef) IsSubPipeline() bool { return s.Pipeline != "" }

// Guard marks parameter values that must not be targeted by destructive
// runs. A run is destructive when its bound Flag parameter is truthy.
type Guard struct {
	// Param is the run parameter to inspect (e.g. "stack").
	Param string `yaml:"param" validate:"required"`
	// Values are the protected values of Param (e.g. "prod", "staging").
	Values []string `yaml:"values" validate:"required,min=1"`
	// Flag is the parameter marking a run destructive. Defaults to "destroy".
	Flag string `yaml:"flag,omitempty"`
}

// Stage returns the stage definition with the given name, or nil.
func (p *Pipeline) Stage(name string) *StageDef {
	for i := range p.Stages {
		if p.Stages[i].Name == name {
			return &p.Stages[i]
		}
	}
	return nil
}
