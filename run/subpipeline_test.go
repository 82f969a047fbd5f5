package run

import (
	"context"
	stderrors "errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/kbukum/pipekit/errors"
	"github.com/kbukum/pipekit/executor"
	"github.com/kbukum/pipekit/logger"
	"github.com/kbukum/pipekit/mutex"
	"github.com/kbukum/pipekit/pipeline"
)

func TestSubPipelineParamIsolation(t *testing.T) {
	var mu sync.Mutex
	var seen map[string]string

	actions := executor.NewRegistry()
	actions.Register(executor.NewFunc("capture", func(_ context.Context, params map[string]string) (string, error) {
		mu.Lock()
		seen = params
		mu.Unlock()
		return "", nil
	}))

	child := &pipeline.Pipeline{
		Name:   "preview-only",
		Params: map[string]string{"mode": "preview", "region": "us-east-1"},
		Stages: []pipeline.StageDef{{Name: "do", Action: "capture"}},
	}
	parent := &pipeline.Pipeline{
		Name:   "deploy-ml",
		Params: map[string]string{"parent_secret": "hidden", "region": "eu-west-1"},
		Stages: []pipeline.StageDef{{
			Name:     "preview",
			Pipeline: "preview-only",
			Params:   map[string]string{"region": "ap-south-1"},
		}},
	}

	r := New(actions, pipeline.MapLoader{"preview-only": child}, mutex.NewLocal(), logger.NewDefault("test"))
	report, err := r.Run(context.Background(), parent, map[string]string{"run_only": "yes"})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if report.Status != StatusSucceeded {
		t.Fatalf("Status = %v", report.Status)
	}

	// The child sees its defaults merged with the stage bindings and
	// nothing from the parent run.
	if seen["mode"] != "preview" {
		t.Errorf("mode = %q, want child default", seen["mode"])
	}
	if seen["region"] != "ap-south-1" {
		t.Errorf("region = %q, want stage binding to win", seen["region"])
	}
	if _, leaked := seen["parent_secret"]; leaked {
		t.Error("parent param leaked into child run")
	}
	if _, leaked := seen["run_only"]; leaked {
		t.Error("parent run override leaked into child run")
	}

	sr := report.Stage("preview")
	if sr.Child == nil {
		t.Fatal("sub-pipeline stage report has no child report")
	}
	if sr.Child.Pipeline != "preview-only" {
		t.Errorf("child pipeline = %q", sr.Child.Pipeline)
	}
	if sr.Child.RunID == report.RunID {
		t.Error("child run shares the parent run ID")
	}
}

func TestSubPipelineFailureMapsToStage(t *testing.T) {
	actions := executor.NewRegistry()
	actions.Register(executor.NewFunc("ok", func(_ context.Context, _ map[string]string) (string, error) {
		return "", nil
	}))
	actions.Register(executor.NewFunc("bad", func(_ context.Context, _ map[string]string) (string, error) {
		return "", stderrors.New("child failure")
	}))

	child := &pipeline.Pipeline{
		Name:   "flaky",
		Stages: []pipeline.StageDef{{Name: "do", Action: "bad"}},
	}
	parent := &pipeline.Pipeline{
		Name: "outer",
		Stages: []pipeline.StageDef{
			{Name: "sub", Pipeline: "flaky"},
			{Name: "after", Action: "ok", DependsOn: []string{"sub"}},
		},
	}

	r := New(actions, pipeline.MapLoader{"flaky": child}, mutex.NewLocal(), logger.NewDefault("test"))
	report, err := r.Run(context.Background(), parent, nil)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if report.Status != StatusFailed {
		t.Fatalf("Status = %v, want %v", report.Status, StatusFailed)
	}

	sr := report.Stage("sub")
	if sr.Status != StageFailed {
		t.Errorf("sub = %v, want %v", sr.Status, StageFailed)
	}
	if sr.Child == nil || sr.Child.Status != StatusFailed {
		t.Error("child report missing or not failed")
	}
	if got := report.Stage("after").Status; got != StageSkippedByUpstreamFailure {
		t.Errorf("after = %v, want %v", got, StageSkippedByUpstreamFailure)
	}
}

func TestSubPipelineTimeoutCancelsStage(t *testing.T) {
	actions := executor.NewRegistry()
	actions.Register(executor.NewFunc("slow", func(ctx context.Context, _ map[string]string) (string, error) {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(500 * time.Millisecond):
			return "", nil
		}
	}))

	child := &pipeline.Pipeline{
		Name:   "long-deploy",
		Stages: []pipeline.StageDef{{Name: "do", Action: "slow"}},
	}
	parent := &pipeline.Pipeline{
		Name: "outer",
		Stages: []pipeline.StageDef{{
			Name:     "sub",
			Pipeline: "long-deploy",
			Timeout:  pipeline.Duration(30 * time.Millisecond),
		}},
	}

	r := New(actions, pipeline.MapLoader{"long-deploy": child}, mutex.NewLocal(), logger.NewDefault("test"))
	start := time.Now()
	report, err := r.Run(context.Background(), parent, nil)
	elapsed := time.Since(start)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	sr := report.Stage("sub")
	if sr.Status != StageCancelled {
		t.Errorf("sub = %v, want %v", sr.Status, StageCancelled)
	}
	if !strings.Contains(sr.Error, "timeout") {
		t.Errorf("sub stage error = %q, want timeout detail", sr.Error)
	}
	if sr.Child == nil || sr.Child.Status != StatusCancelled {
		t.Error("child report missing or not cancelled")
	}
	if report.Status != StatusCancelled {
		t.Errorf("Status = %v, want %v", report.Status, StatusCancelled)
	}
	if elapsed >= 400*time.Millisecond {
		t.Errorf("run took %v, timeout never fired", elapsed)
	}
}

func TestSubPipelineReferenceCycle(t *testing.T) {
	a := &pipeline.Pipeline{
		Name:   "a",
		Stages: []pipeline.StageDef{{Name: "to-b", Pipeline: "b"}},
	}
	b := &pipeline.Pipeline{
		Name:   "b",
		Stages: []pipeline.StageDef{{Name: "to-a", Pipeline: "a"}},
	}

	r := New(executor.NewRegistry(), pipeline.MapLoader{"a": a, "b": b}, mutex.NewLocal(), logger.NewDefault("test"))
	_, err := r.Run(context.Background(), a, nil)
	if !errors.HasCode(err, errors.ErrCodeDefinition) {
		t.Fatalf("err = %v, want %v", err, errors.ErrCodeDefinition)
	}
}

func TestSubPipelineGuardAppliesToChild(t *testing.T) {
	actions := executor.NewRegistry()
	actions.Register(executor.NewFunc("ok", func(_ context.Context, _ map[string]string) (string, error) {
		return "", nil
	}))

	child := &pipeline.Pipeline{
		Name:   "teardown",
		Params: map[string]string{"stack": "dev"},
		Guards: []pipeline.Guard{{Param: "stack", Values: []string{"prod"}}},
		Stages: []pipeline.StageDef{{Name: "do", Action: "ok"}},
	}
	parent := &pipeline.Pipeline{
		Name: "outer",
		Stages: []pipeline.StageDef{{
			Name:     "sub",
			Pipeline: "teardown",
			Params:   map[string]string{"stack": "prod", "destroy": "true"},
		}},
	}

	r := New(actions, pipeline.MapLoader{"teardown": child}, mutex.NewLocal(), logger.NewDefault("test"))
	report, err := r.Run(context.Background(), parent, nil)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	sr := report.Stage("sub")
	if sr.Status != StageFailed {
		t.Errorf("sub = %v, want %v", sr.Status, StageFailed)
	}
	if !strings.Contains(sr.Error, "protected") {
		t.Errorf("sub stage error = %q, want protected-target detail", sr.Error)
	}
}
