package mutex

import (
	"fmt"
	"time"
)

// RedisConfig holds Redis lock backend configuration.
type RedisConfig struct {
	// Enabled controls whether the Redis locker is active. When false the
	// service falls back to the in-process locker.
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`

	// Addr is the Redis server address (host:port).
	Addr string `yaml:"addr" mapstructure:"addr"`

	// Password is the Redis server password.
	Password string `yaml:"password" mapstructure:"password"`

	// DB is the Redis database number.
	DB int `yaml:"db" mapstructure:"db"`

	// PoolSize is the maximum number of socket connections.
	PoolSize int `yaml:"pool_size" mapstructure:"pool_size"`

	// DialTimeout is the timeout for establishing new connections (e.g. "5s").
	DialTimeout string `yaml:"dial_timeout" mapstructure:"dial_timeout"`

	// ReadTimeout is the timeout for socket reads (e.g. "3s").
	ReadTimeout string `yaml:"read_timeout" mapstructure:"read_timeout"`

	// WriteTimeout is the timeout for socket writes (e.g. "3s").
	WriteTimeout string `yaml:"write_timeout" mapstructure:"write_timeout"`

	// KeyPrefix namespaces lock keys in Redis.
	KeyPrefix string `yaml:"key_prefix" mapstructure:"key_prefix"`

	// LockTTL bounds how long a granted lock survives if its holder dies
	// without releasing (e.g. "30m"). Must exceed the longest lock-holding
	// stage; an expired lock reappearing under a live holder would defeat
	// mutual exclusion.
	LockTTL string `yaml:"lock_ttl" mapstructure:"lock_ttl"`

	// PollInterval is the delay between acquisition attempts (e.g. "250ms").
	PollInterval string `yaml:"poll_interval" mapstructure:"poll_interval"`
}

// ApplyDefaults sets sensible defaults for zero-valued fields.
func (c *RedisConfig) ApplyDefaults() {
	if c.PoolSize <= 0 {
		c.PoolSize = 10
	}
	if c.DialTimeout == "" {
		c.DialTimeout = "5s"
	}
	if c.ReadTimeout == "" {
		c.ReadTimeout = "3s"
	}
	if c.WriteTimeout == "" {
		c.WriteTimeout = "3s"
	}
	if c.KeyPrefix == "" {
		c.KeyPrefix = "pipekit:lock:"
	}
	if c.LockTTL == "" {
		c.LockTTL = "30m"
	}
	if c.PollInterval == "" {
		c.PollInterval = "250ms"
	}
}

// Validate checks that required fields are present and parseable.
func (c *RedisConfig) Validate() error {
	if !c.Enabled {
		return nil // skip validation when disabled
	}
	if c.Addr == "" {
		return fmt.Errorf("mutex: redis addr is required")
	}
	for _, f := range []struct{ name, value string }{
		{"dial_timeout", c.DialTimeout},
		{"read_timeout", c.ReadTimeout},
		{"write_timeout", c.WriteTimeout},
		{"lock_ttl", c.LockTTL},
		{"poll_interval", c.PollInterval},
	} {
		if _, err := time.ParseDuration(f.value); err != nil {
			return fmt.Errorf("mutex: redis %s %q is not a duration: %w", f.name, f.value, err)
		}
	}
	return nil
}
