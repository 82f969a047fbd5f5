package validation

import (
	"testing"

	"github.com/kbukum/pipekit/errors"
)

type sampleConfig struct {
	Name    string `validate:"required"`
	Mode    string `validate:"oneof=batch streaming"`
	Retries int    `validate:"min=0,max=10"`
}

func TestValidate_OK(t *testing.T) {
	cfg := sampleConfig{Name: "deploy", Mode: "batch", Retries: 3}
	if err := Validate(cfg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_Violations(t *testing.T) {
	cfg := sampleConfig{Mode: "bogus", Retries: 50}
	err := Validate(cfg)
	if err == nil {
		t.Fatal("expected validation error")
	}
	appErr, ok := errors.AsAppError(err)
	if !ok {
		t.Fatalf("expected AppError, got %T", err)
	}
	if appErr.Code != errors.ErrCodeInvalidInput {
		t.Fatalf("unexpected code %s", appErr.Code)
	}
}

func TestFluentValidator(t *testing.T) {
	v := New().
		Required("stack", "").
		OneOf("environment", "prod", "dev", "staging").
		MaxLength("region", "us-east-1", 32)

	if !v.HasErrors() {
		t.Fatal("expected violations")
	}
	if len(v.Errors()) != 2 {
		t.Fatalf("expected 2 violations, got %d", len(v.Errors()))
	}
	if v.Validate() == nil {
		t.Fatal("expected aggregated error")
	}
}

func TestToSnakeCase(t *testing.T) {
	if got := toSnakeCase("LockTimeout"); got != "lock_timeout" {
		t.Fatalf("unexpected: %q", got)
	}
}
