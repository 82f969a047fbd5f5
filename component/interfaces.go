package component

import "context"

// HealthStatus is a component's reported health state.
type HealthStatus string

const (
	StatusHealthy   HealthStatus = "healthy"
	StatusUnhealthy HealthStatus = "unhealthy"
	StatusDegraded  HealthStatus = "degraded"
)

// Health is one component's health check result, as exposed on the
// /health endpoint.
type Health struct {
	Name    string       `json:"name"`
	Status  HealthStatus `json:"status"`
	Message string       `json:"message,omitempty"`
}

// Component is a lifecycle-managed piece of infrastructure: the lock
// backend, the HTTP server. The registry drives Start, Stop, and Health.
type Component interface {
	// Name identifies the component; unique within a registry.
	Name() string

	// Start brings the component up and returns once it is usable.
	Start(ctx context.Context) error

	// Stop shuts the component down and releases its resources.
	Stop(ctx context.Context) error

	// Health reports current health, cheap enough to call per request.
	Health(ctx context.Context) Health
}

// Description is optional self-reported summary info for startup output.
type Description struct {
	// Name is the display name, falling back to Name() when empty.
	Name string
	// Type categorizes the component, e.g. "server" or "redis".
	Type string
	// Details is a one-line configuration summary.
	Details string
	// Port is the primary port, 0 when not applicable.
	Port int
}

// Describable is implemented by components that self-describe at startup.
type Describable interface {
	Describe() Description
}
