package pipeline

import (
	"testing"

	"github.com/kbukum/pipekit/errors"
)

func stage(name string, deps ...string) StageDef {
	return StageDef{Name: name, Action: name, DependsOn: deps}
}

func TestBuild_Linear(t *testing.T) {
	p := &Pipeline{
		Name: "deploy",
		Stages: []StageDef{
			stage("lint"),
			stage("refresh", "lint"),
			stage("preview", "refresh"),
		},
	}
	g, err := Build(p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	levels := g.Levels()
	if len(levels) != 3 {
		t.Fatalf("expected 3 levels, got %d: %v", len(levels), levels)
	}
	if levels[0][0] != "lint" || levels[1][0] != "refresh" || levels[2][0] != "preview" {
		t.Fatalf("unexpected level order: %v", levels)
	}
}

func TestBuild_Diamond(t *testing.T) {
	p := &Pipeline{
		Name: "fanout",
		Stages: []StageDef{
			stage("a"),
			stage("b", "a"),
			stage("c", "a"),
			stage("d", "b", "c"),
		},
	}
	g, err := Build(p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	levels := g.Levels()
	if len(levels) != 3 {
		t.Fatalf("expected 3 levels, got %v", levels)
	}
	if len(levels[1]) != 2 {
		t.Fatalf("expected b and c in the same level, got %v", levels[1])
	}
	preds := g.Preds("d")
	if len(preds) != 2 {
		t.Fatalf("expected 2 predecessors of d, got %v", preds)
	}
}

func TestBuild_Cycle(t *testing.T) {
	p := &Pipeline{
		Name: "cyclic",
		Stages: []StageDef{
			stage("a", "b"),
			stage("b", "a"),
		},
	}
	_, err := Build(p)
	if err == nil {
		t.Fatal("expected definition error for cycle")
	}
	if !errors.HasCode(err, errors.ErrCodeDefinition) {
		t.Fatalf("expected DEFINITION_ERROR, got %v", err)
	}
}

func TestBuild_DanglingDependency(t *testing.T) {
	p := &Pipeline{
		Name: "dangling",
		Stages: []StageDef{
			stage("a", "ghost"),
		},
	}
	_, err := Build(p)
	if !errors.HasCode(err, errors.ErrCodeDefinition) {
		t.Fatalf("expected DEFINITION_ERROR, got %v", err)
	}
}

func TestBuild_SelfDependency(t *testing.T) {
	p := &Pipeline{
		Name:   "selfish",
		Stages: []StageDef{stage("a", "a")},
	}
	if _, err := Build(p); !errors.HasCode(err, errors.ErrCodeDefinition) {
		t.Fatalf("expected DEFINITION_ERROR, got %v", err)
	}
}

func TestBuild_DuplicateStageName(t *testing.T) {
	p := &Pipeline{
		Name:   "dups",
		Stages: []StageDef{stage("a"), stage("a")},
	}
	if _, err := Build(p); !errors.HasCode(err, errors.ErrCodeDefinition) {
		t.Fatalf("expected DEFINITION_ERROR, got %v", err)
	}
}

func TestBuild_ActionAndPipelineExclusive(t *testing.T) {
	p := &Pipeline{
		Name: "both",
		Stages: []StageDef{
			{Name: "x", Action: "a", Pipeline: "p"},
		},
	}
	if _, err := Build(p); !errors.HasCode(err, errors.ErrCodeDefinition) {
		t.Fatalf("expected DEFINITION_ERROR for both bodies, got %v", err)
	}

	p = &Pipeline{
		Name:   "neither",
		Stages: []StageDef{{Name: "x"}},
	}
	if _, err := Build(p); !errors.HasCode(err, errors.ErrCodeDefinition) {
		t.Fatalf("expected DEFINITION_ERROR for missing body, got %v", err)
	}
}

func TestBuild_BadCondition(t *testing.T) {
	p := &Pipeline{
		Name: "badcond",
		Stages: []StageDef{
			{Name: "x", Action: "a", Condition: "platform = linux ="},
		},
	}
	if _, err := Build(p); !errors.HasCode(err, errors.ErrCodeDefinition) {
		t.Fatalf("expected DEFINITION_ERROR for bad condition, got %v", err)
	}
}

func TestBuild_MissingName(t *testing.T) {
	p := &Pipeline{Stages: []StageDef{stage("a")}}
	if _, err := Build(p); !errors.HasCode(err, errors.ErrCodeDefinition) {
		t.Fatalf("expected DEFINITION_ERROR for missing pipeline name, got %v", err)
	}
}
