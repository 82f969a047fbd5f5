package run

import (
	"context"
	"sync"

	"github.com/kbukum/pipekit/errors"
)

// Manager tracks runs submitted through it, serving reports for both live
// and completed runs. It is safe for concurrent use.
type Manager struct {
	runner *Runner

	mu      sync.RWMutex
	handles map[string]*Handle
	order   []string
}

// NewManager creates a Manager on top of a Runner.
func NewManager(runner *Runner) *Manager {
	return &Manager{
		runner:  runner,
		handles: make(map[string]*Handle),
	}
}

// Submit loads the named pipeline and starts it asynchronously, returning
// the new run's ID. Validation and guard errors are returned synchronously.
func (m *Manager) Submit(ctx context.Context, name string, overrides map[string]string) (string, error) {
	if m.runner.Loader == nil {
		return "", errors.NotFound("pipeline", name)
	}
	p, err := m.runner.Loader.Load(name)
	if err != nil {
		return "", errors.NotFound("pipeline", name).WithCause(err)
	}

	h, err := m.runner.Start(ctx, p, overrides)
	if err != nil {
		return "", err
	}

	m.mu.Lock()
	m.handles[h.ID()] = h
	m.order = append(m.order, h.ID())
	m.mu.Unlock()
	return h.ID(), nil
}

// Get returns the current report for a run.
func (m *Manager) Get(id string) (*Report, error) {
	m.mu.RLock()
	h, ok := m.handles[id]
	m.mu.RUnlock()
	if !ok {
		return nil, errors.NotFound("run", id)
	}
	return h.Snapshot(), nil
}

// Cancel requests cancellation of a run.
func (m *Manager) Cancel(id string) error {
	m.mu.RLock()
	h, ok := m.handles[id]
	m.mu.RUnlock()
	if !ok {
		return errors.NotFound("run", id)
	}
	h.Cancel()
	return nil
}

// Wait blocks until the run ends or ctx is cancelled.
func (m *Manager) Wait(ctx context.Context, id string) (*Report, error) {
	m.mu.RLock()
	h, ok := m.handles[id]
	m.mu.RUnlock()
	if !ok {
		return nil, errors.NotFound("run", id)
	}
	return h.Wait(ctx)
}

// List returns reports for all tracked runs in submission order.
func (m *Manager) List() []*Report {
	m.mu.RLock()
	defer m.mu.RUnlock()
	reports := make([]*Report, 0, len(m.order))
	for _, id := range m.order {
		reports = append(reports, m.handles[id].Snapshot())
	}
	return reports
}
