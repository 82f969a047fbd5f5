package pipeline

import (
	"testing"

	"github.com/kbukum/pipekit/errors"
)

func TestBindParams(t *testing.T) {
	defaults := map[string]string{"region": "us-east-1", "stack": "dev"}
	overrides := map[string]string{"stack": `"prod"`}

	bound := BindParams(defaults, overrides)
	if bound["region"] != "us-east-1" {
		t.Fatalf("expected default to survive, got %q", bound["region"])
	}
	if bound["stack"] != "prod" {
		t.Fatalf("expected sanitized override, got %q", bound["stack"])
	}
	if defaults["stack"] != "dev" {
		t.Fatal("defaults must not be mutated")
	}
}

func TestCheckGuards(t *testing.T) {
	p := &Pipeline{
		Name:   "deploy",
		Guards: []Guard{{Param: "stack", Values: []string{"prod", "staging"}}},
	}

	// Non-destructive run against a protected value is fine.
	if err := CheckGuards(p, map[string]string{"stack": "prod"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Destructive run against a protected value is rejected.
	err := CheckGuards(p, map[string]string{"stack": "prod", "destroy": "true"})
	if !errors.HasCode(err, errors.ErrCodeProtectedTarget) {
		t.Fatalf("expected PROTECTED_TARGET, got %v", err)
	}

	// Destructive run against an unprotected value is fine.
	if err := CheckGuards(p, map[string]string{"stack": "test-branch", "destroy": "true"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestCheckGuards_CustomFlag(t *testing.T) {
	p := &Pipeline{
		Name:   "deploy",
		Guards: []Guard{{Param: "env", Values: []string{"prod"}, Flag: "teardown"}},
	}
	err := CheckGuards(p, map[string]string{"env": "prod", "teardown": "yes"})
	if !errors.HasCode(err, errors.ErrCodeProtectedTarget) {
		t.Fatalf("expected PROTECTED_TARGET, got %v", err)
	}
}
