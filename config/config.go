package config

import (
	"fmt"
	"time"

	"github.com/kbukum/pipekit/logger"
	"github.com/kbukum/pipekit/mutex"
	"github.com/kbukum/pipekit/observability"
	"github.com/kbukum/pipekit/server"
	"github.com/kbukum/pipekit/util"
)

// PipelinesConfig locates pipeline definition files.
type PipelinesConfig struct {
	// Dirs are the directories searched for pipeline YAML files.
	Dirs []string `yaml:"dirs" mapstructure:"dirs"`
}

// ApplyDefaults sets the default pipeline search path.
func (c *PipelinesConfig) ApplyDefaults() {
	if len(c.Dirs) == 0 {
		c.Dirs = []string{"./pipelines"}
	}
}

// RunConfig tunes run scheduling.
type RunConfig struct {
	// MaxParallel caps concurrently running stages per run. Zero means
	// unbounded.
	MaxParallel int `yaml:"max_parallel" mapstructure:"max_parallel"`
	// LockTimeout is the default lock wait bound (e.g. "5m") for stages
	// that do not set their own.
	LockTimeout string `yaml:"lock_timeout" mapstructure:"lock_timeout"`
}

// ApplyDefaults sets scheduling defaults.
func (c *RunConfig) ApplyDefaults() {
	if c.LockTimeout == "" {
		c.LockTimeout = "5m"
	}
}

// Validate checks scheduling values.
func (c *RunConfig) Validate() error {
	if c.MaxParallel < 0 {
		return fmt.Errorf("run.max_parallel must be non-negative (got: %d)", c.MaxParallel)
	}
	if _, err := time.ParseDuration(c.LockTimeout); err != nil {
		return fmt.Errorf("run.lock_timeout %q is not a duration: %w", c.LockTimeout, err)
	}
	return nil
}

// LockTimeoutDuration returns the parsed default lock timeout.
func (c *RunConfig) LockTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.LockTimeout)
	return d
}

// ObservabilityConfig controls tracing and metrics export.
type ObservabilityConfig struct {
	// Enabled turns OTLP export on. When false, spans and metrics fall
	// back to no-op providers.
	Enabled bool                       `yaml:"enabled" mapstructure:"enabled"`
	Tracing observability.TracerConfig `yaml:"tracing" mapstructure:"tracing"`
	Metrics observability.MeterConfig  `yaml:"metrics" mapstructure:"metrics"`
}

// Config is the orchestrator's complete service configuration.
type Config struct {
	Name        string `yaml:"name" mapstructure:"name"`
	Environment string `yaml:"environment" mapstructure:"environment"`
	Debug       bool   `yaml:"debug" mapstructure:"debug"`

	Logging       logger.Config       `yaml:"logging" mapstructure:"logging"`
	Pipelines     PipelinesConfig     `yaml:"pipelines" mapstructure:"pipelines"`
	Run           RunConfig           `yaml:"run" mapstructure:"run"`
	Lock          mutex.RedisConfig   `yaml:"lock" mapstructure:"lock"`
	Server        server.Config       `yaml:"server" mapstructure:"server"`
	Observability ObservabilityConfig `yaml:"observability" mapstructure:"observability"`
}

// ApplyDefaults applies defaults to every section.
func (c *Config) ApplyDefaults() {
	c.Name = util.Coalesce(c.Name, "pipekit")
	c.Environment = util.Coalesce(c.Environment, "development")
	if c.Environment == "development" {
		c.Debug = true
	}
	c.Logging.ApplyDefaults()
	c.Pipelines.ApplyDefaults()
	c.Run.ApplyDefaults()
	c.Lock.ApplyDefaults()
	c.Server.ApplyDefaults()
}

// Validate validates every section.
func (c *Config) Validate() error {
	validEnvs := []string{"development", "staging", "production"}
	found := false
	for _, v := range validEnvs {
		if c.Environment == v {
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("config.environment must be one of %v (got: %s)", validEnvs, c.Environment)
	}
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("config.logging: %w", err)
	}
	if err := c.Run.Validate(); err != nil {
		return fmt.Errorf("config.run: %w", err)
	}
	if err := c.Lock.Validate(); err != nil {
		return fmt.Errorf("config.lock: %w", err)
	}
	if err := c.Server.Validate(); err != nil {
		return fmt.Errorf("config.server: %w", err)
	}
	return nil
}
