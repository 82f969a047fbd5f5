package component

import (
	"context"
	stderrors "errors"
	"sync"
	"testing"
)

// fakeComponent records lifecycle calls into a shared log.
type fakeComponent struct {
	name     string
	startErr error
	stopErr  error
	health   HealthStatus

	mu  *sync.Mutex
	log *[]string
}

func (f *fakeComponent) Name() string { return f.name }

func (f *fakeComponent) Start(_ context.Context) error {
	f.record("start:" + f.name)
	return f.startErr
}

func (f *fakeComponent) Stop(_ context.Context) error {
	f.record("stop:" + f.name)
	return f.stopErr
}

func (f *fakeComponent) Health(_ context.Context) Health {
	status := f.health
	if status == "" {
		status = StatusHealthy
	}
	return Health{Name: f.name, Status: status}
}

func (f *fakeComponent) record(event string) {
	if f.log == nil {
		return
	}
	f.mu.Lock()
	*f.log = append(*f.log, event)
	f.mu.Unlock()
}

func newFakes(names ...string) (*Registry, *[]string) {
	r := NewRegistry()
	var mu sync.Mutex
	log := &[]string{}
	for _, name := range names {
		_ = r.Register(&fakeComponent{name: name, mu: &mu, log: log})
	}
	return r, log
}

func TestRegistryStartStopOrdering(t *testing.T) {
	r, log := newFakes("redis", "server")
	ctx := context.Background()

	if err := r.StartAll(ctx); err != nil {
		t.Fatalf("StartAll failed: %v", err)
	}
	if err := r.StopAll(ctx); err != nil {
		t.Fatalf("StopAll failed: %v", err)
	}

	want := []string{"start:redis", "start:server", "stop:server", "stop:redis"}
	if len(*log) != len(want) {
		t.Fatalf("log = %v, want %v", *log, want)
	}
	for i := range want {
		if (*log)[i] != want[i] {
			t.Errorf("log[%d] = %q, want %q", i, (*log)[i], want[i])
		}
	}
}

func TestRegistryDuplicateRegistration(t *testing.T) {
	r := NewRegistry()
	if err := r.Register(&fakeComponent{name: "x"}); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if err := r.Register(&fakeComponent{name: "x"}); err == nil {
		t.Fatal("duplicate Register should fail")
	}
}

func TestRegistryStartFailureStopsStartedOnly(t *testing.T) {
	var mu sync.Mutex
	log := &[]string{}
	r := NewRegistry()
	_ = r.Register(&fakeComponent{name: "ok", mu: &mu, log: log})
	_ = r.Register(&fakeComponent{name: "bad", startErr: stderrors.New("nope"), mu: &mu, log: log})

	ctx := context.Background()
	if err := r.StartAll(ctx); err == nil {
		t.Fatal("StartAll should fail")
	}

	// Only the started component is stopped.
	if err := r.StopAll(ctx); err != nil {
		t.Fatalf("StopAll failed: %v", err)
	}
	for _, event := range *log {
		if event == "stop:bad" {
			t.Error("unstarted component was stopped")
		}
	}
}

func TestRegistryHealthAll(t *testing.T) {
	r := NewRegistry()
	_ = r.Register(&fakeComponent{name: "good"})
	_ = r.Register(&fakeComponent{name: "sick", health: StatusUnhealthy})

	checks := r.HealthAll(context.Background())
	if len(checks) != 2 {
		t.Fatalf("HealthAll length = %d", len(checks))
	}
	if checks[0].Status != StatusHealthy || checks[1].Status != StatusUnhealthy {
		t.Errorf("checks = %+v", checks)
	}
}

func TestRegistryGet(t *testing.T) {
	r := NewRegistry()
	_ = r.Register(&fakeComponent{name: "mutex"})

	if c := r.Get("mutex"); c == nil || c.Name() != "mutex" {
		t.Errorf("Get(mutex) = %v", c)
	}
	if c := r.Get("missing"); c != nil {
		t.Errorf("Get(missing) = %v, want nil", c)
	}
	if got := len(r.All()); got != 1 {
		t.Errorf("All length = %d", got)
	}
}
