package pipeline

import (
	"fmt"

	"github.com/kbukum/pipekit/errors"
	"github.com/kbukum/pipekit/validation"
)

// Graph is a validated, compiled dependency graph for one pipeline
// definition. Stages live in an arena indexed by position; predecessor and
// successor sets are index-based, so the structure has no pointer cycles.
type Graph struct {
	pipeline *Pipeline
	index    map[string]int
	preds    [][]int
	succs    [][]int
	conds    []*Condition
}

// Build validates a pipeline definition and compiles it into a Graph.
// Every possible definition error (duplicate stage names, a stage with both
// or neither of action/pipeline, dangling or cyclic predecessor references,
// malformed conditions) is caught here, before any execution.
func Build(p *Pipeline) (*Graph, error) {
	if err := validation.Validate(p); err != nil {
		return nil, errors.Definition(p.Name, err.Error()).WithCause(err)
	}

	n := len(p.Stages)
	g := &Graph{
		pipeline: p,
		index:    make(map[string]int, n),
		preds:    make([][]int, n),
		succs:    make([][]int, n),
		conds:    make([]*Condition, n),
	}

	for i := range p.Stages {
		s := &p.Stages[i]
		if _, dup := g.index[s.Name]; dup {
			return nil, errors.Definition(p.Name, fmt.Sprintf("duplicate stage name %q", s.Name))
		}
		g.index[s.Name] = i

		switch {
		case s.Action == "" && s.Pipeline == "":
			return nil, errors.Definition(p.Name, fmt.Sprintf("stage %q must reference an action or a pipeline", s.Name))
		case s.Action != "" && s.Pipeline != "":
			return nil, errors.Definition(p.Name, fmt.Sprintf("stage %q cannot reference both an action and a pipeline", s.Name))
		}

		cond, err := ParseCondition(s.Condition)
		if err != nil {
			return nil, errors.Definition(p.Name, fmt.Sprintf("stage %q: %v", s.Name, err))
		}
		g.conds[i] = cond
	}

	for i := range p.Stages {
		s := &p.Stages[i]
		for _, dep := range s.DependsOn {
			j, ok := g.index[dep]
			if !ok {
				return nil, errors.Definition(p.Name, fmt.Sprintf("stage %q depends on unknown stage %q", s.Name, dep))
			}
			if j == i {
				return nil, errors.Definition(p.Name, fmt.Sprintf("stage %q depends on itself", s.Name))
			}
			g.preds[i] = append(g.preds[i], j)
			g.succs[j] = append(g.succs[j], i)
		}
	}

	if _, err := g.levels(); err != nil {
		return nil, err
	}
	return g, nil
}

// levels groups stages by dependency level using Kahn's algorithm.
// Stages within the same level have no ordering between them.
// Returns a definition error if a cycle is detected.
func (g *Graph) levels() ([][]string, error) {
	n := len(g.pipeline.Stages)
	inDegree := make([]int, n)
	for i := range g.preds {
		inDegree[i] = len(g.preds[i])
	}

	var queue []int
	for i, deg := range inDegree {
		if deg == 0 {
			queue = append(queue, i)
		}
	}

	var levels [][]string
	visited := 0

	for len(queue) > 0 {
		level := make([]string, 0, len(queue))
		var next []int
		for _, i := range queue {
			level = append(level, g.pipeline.Stages[i].Name)
			visited++
			for _, j := range g.succs[i] {
				inDegree[j]--
				if inDegree[j] == 0 {
					next = append(next, j)
				}
			}
		}
		levels = append(levels, level)
		queue = next
	}

	if visited != n {
		return nil, errors.Definition(g.pipeline.Name,
			fmt.Sprintf("dependency cycle detected (%d of %d stages reachable)", visited, n))
	}
	return levels, nil
}

// Levels returns the stages grouped by dependency level.
func (g *Graph) Levels() [][]string {
	levels, _ := g.levels() // acyclicity proven at Build time
	return levels
}

// Pipeline returns the underlying definition.
func (g *Graph) Pipeline() *Pipeline { return g.pipeline }

// Stages returns stage names in definition order.
func (g *Graph) Stages() []string {
	names := make([]string, len(g.pipeline.Stages))
	for i := range g.pipeline.Stages {
		names[i] = g.pipeline.Stages[i].Name
	}
	return names
}

// Preds returns the predecessor names of a stage.
func (g *Graph) Preds(name string) []string {
	i, ok := g.index[name]
	if !ok {
		return nil
	}
	out := make([]string, 0, len(g.preds[i]))
	for _, j := range g.preds[i] {
		out = append(out, g.pipeline.Stages[j].Name)
	}
	return out
}

// Condition returns the parsed condition of a stage, or nil.
func (g *Graph) Condition(name string) *Condition {
	i, ok := g.index[name]
	if !ok {
		return nil
	}
	return g.conds[i]
}

// Def returns the stage definition by name, or nil.
func (g *Graph) Def(name string) *StageDef {
	i, ok := g.index[name]
	if !ok {
		return nil
	}
	return &g.pipeline.Stages[i]
}
