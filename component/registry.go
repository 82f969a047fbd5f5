package component

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/kbukum/pipekit/logger"
)

// stopTimeout bounds how long one component may take to stop before the
// registry moves on to the next.
const stopTimeout = 10 * time.Second

type entry struct {
	comp    Component
	started bool
}

// Registry owns the lifecycle of the orchestrator's infrastructure
// components (lock backend, HTTP server). Start order is registration
// order; stop order is the reverse, so dependents go down before their
// dependencies.
type Registry struct {
	mu      sync.RWMutex
	entries []*entry
	byName  map[string]*entry
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]*entry)}
}

// Register adds a component. Register dependencies before the components
// that use them. Duplicate names are rejected.
func (r *Registry) Register(c Component) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := c.Name()
	if _, dup := r.byName[name]; dup {
		return fmt.Errorf("component %s already registered", name)
	}

	e := &entry{comp: c}
	r.entries = append(r.entries, e)
	r.byName[name] = e

	logger.Debug("component registered", logger.Fields("component", name))
	return nil
}

// StartAll starts components in registration order, stopping at the first
// failure. Components started before the failure stay marked started so a
// following StopAll tears them down.
func (r *Registry) StartAll(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, e := range r.entries {
		name := e.comp.Name()
		if err := e.comp.Start(ctx); err != nil {
			return fmt.Errorf("failed to start %s: %w", name, err)
		}
		e.started = true
		logger.Debug("component started", logger.Fields("component", name))
	}
	return nil
}

// StopAll stops started components in reverse registration order. Every
// component gets its own stop deadline and a failure to stop one does not
// prevent stopping the rest; errors are collected and returned together.
func (r *Registry) StopAll(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var errs []error
	for i := len(r.entries) - 1; i >= 0; i-- {
		e := r.entries[i]
		if !e.started {
			continue
		}
		name := e.comp.Name()

		stopCtx, cancel := context.WithTimeout(ctx, stopTimeout)
		err := e.comp.Stop(stopCtx)
		cancel()
		e.started = false

		if err != nil {
			errs = append(errs, fmt.Errorf("failed to stop %s: %w", name, err))
			logger.Error("component stop failed", logger.Fields(
				"component", name,
				"error", err.Error(),
			))
			continue
		}
		logger.Debug("component stopped", logger.Fields("component", name))
	}

	if len(errs) > 0 {
		return fmt.Errorf("shutdown errors: %v", errs)
	}
	return nil
}

// HealthAll checks every registered component in registration order.
func (r *Registry) HealthAll(ctx context.Context) []Health {
	r.mu.RLock()
	defer r.mu.RUnlock()

	checks := make([]Health, 0, len(r.entries))
	for _, e := range r.entries {
		checks = append(checks, e.comp.Health(ctx))
	}
	return checks
}

// Get returns the component registered under name, or nil.
func (r *Registry) Get(name string) Component {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if e, ok := r.byName[name]; ok {
		return e.comp
	}
	return nil
}

// All returns the registered components in registration order.
func (r *Registry) All() []Component {
	r.mu.RLock()
	defer r.mu.RUnlock()

	comps := make([]Component, 0, len(r.entries))
	for _, e := range r.entries {
		comps = append(comps, e.comp)
	}
	return comps
}
