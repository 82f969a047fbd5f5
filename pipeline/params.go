package pipeline

import (
	"github.com/kbukum/pipekit/errors"
	"github.com/kbukum/pipekit/util"
)

// defaultGuardFlag is the run parameter that marks a run destructive.
const defaultGuardFlag = "destroy"

// BindParams merges override values over defaults into a fresh map.
// Values are sanitized; neither input map is modified. The result is the
// complete parameter set a run (or sub-run) sees. Sub-pipelines are bound
// from their own defaults plus the invoking stage's explicit bindings only,
// never from the parent run's parameters.
func BindParams(defaults, overrides map[string]string) map[string]string {
	bound := make(map[string]string, len(defaults)+len(overrides))
	for k, v := range defaults {
		bound[k] = util.SanitizeEnvValue(v)
	}
	for k, v := range overrides {
		bound[k] = util.SanitizeEnvValue(v)
	}
	return bound
}

// CheckGuards rejects destructive runs against protected parameter values.
// A run is destructive when the guard's flag parameter is truthy.
func CheckGuards(p *Pipeline, params map[string]string) error {
	for _, g := range p.Guards {
		flag := g.Flag
		if flag == "" {
			flag = defaultGuardFlag
		}
		if !IsTruthy(params[flag]) {
			continue
		}
		current := params[g.Param]
		for _, v := range g.Values {
			if current == v {
				return errors.ProtectedTarget(g.Param, current)
			}
		}
	}
	return nil
}
