package executor

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const actionsYAML = `
actions:
  - name: lint
    binary: sh
    args: ["-c", "echo lint $MODE"]
    env:
      MODE: strict
  - name: deploy
    binary: sh
    args: ["-c", "echo deploy"]
    grace: 10s
`

func TestLoadCommandActions(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "actions.yaml")
	if err := os.WriteFile(path, []byte(actionsYAML), 0o644); err != nil {
		t.Fatal(err)
	}

	r := NewRegistry()
	if err := LoadCommandActions(r, path); err != nil {
		t.Fatalf("LoadCommandActions failed: %v", err)
	}

	got := r.List()
	if len(got) != 2 || got[0] != "deploy" || got[1] != "lint" {
		t.Fatalf("List = %v", got)
	}

	lint, _ := r.Get("lint")
	out, err := lint.Execute(context.Background(), nil)
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if !strings.Contains(out, "lint strict") {
		t.Errorf("output = %q, want env from spec applied", out)
	}
}

func TestCommandSpecValidation(t *testing.T) {
	if _, err := (CommandSpec{Binary: "sh"}).Action(); err == nil {
		t.Error("expected error for missing name")
	}
	if _, err := (CommandSpec{Name: "x"}).Action(); err == nil {
		t.Error("expected error for missing binary")
	}
	if _, err := (CommandSpec{Name: "x", Binary: "sh", Grace: "soon"}).Action(); err == nil {
		t.Error("expected error for bad grace duration")
	}
}

func TestParseCommandSpecsBadYAML(t *testing.T) {
	if _, err := ParseCommandSpecs([]byte("actions: {not a list}")); err == nil {
		t.Error("expected parse error")
	}
}
