package logger

import (
	"testing"
	"time"
)

func TestConfig_ApplyDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()
	if cfg.Level != "info" {
		t.Fatalf("expected default level info, got %s", cfg.Level)
	}
	if cfg.Format != "console" {
		t.Fatalf("expected default format console, got %s", cfg.Format)
	}
	if !cfg.Timestamp {
		t.Fatal("expected timestamps enabled by default")
	}
}

func TestConfig_Validate(t *testing.T) {
	cfg := Config{Level: "verbose", Format: "json", Output: "stdout"}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for invalid level")
	}

	cfg = Config{Level: "debug", Format: "json", Output: "stdout"}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestNew_InvalidLevelFallsBack(t *testing.T) {
	log := New(&Config{Level: "nonsense", Format: "json", Output: "stdout"}, "test")
	if log == nil {
		t.Fatal("expected logger")
	}
}

func TestWithComponent(t *testing.T) {
	log := NewDefault("pipekit")
	child := log.WithComponent("runner")
	if child == nil || child == log {
		t.Fatal("expected a derived logger instance")
	}
}

func TestFields(t *testing.T) {
	m := Fields("stage", "lint", "status", "succeeded")
	if m["stage"] != "lint" || m["status"] != "succeeded" {
		t.Fatalf("unexpected fields map: %v", m)
	}
	// Odd trailing key is dropped.
	m = Fields("stage", "lint", "orphan")
	if _, ok := m["orphan"]; ok {
		t.Fatal("expected orphan key to be dropped")
	}
}

func TestDurationFields(t *testing.T) {
	m := DurationFields("run", 1500*time.Millisecond)
	if m[FieldDuration] != int64(1500) {
		t.Fatalf("expected 1500ms, got %v", m[FieldDuration])
	}
}

func TestGetGlobalLogger_LazyInit(t *testing.T) {
	globalLogger = nil
	if GetGlobalLogger() == nil {
		t.Fatal("expected lazily created global logger")
	}
}
