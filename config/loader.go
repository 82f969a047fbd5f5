package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// configSearchPaths are the locations probed for a config file when none is
// given explicitly.
var configSearchPaths = []string{
	"./config.yml",
	"./config.yaml",
	"./config/config.yml",
	"./config/config.yaml",
	"/etc/pipekit/config.yml",
}

// envSearchPaths are the locations probed for a .env file.
var envSearchPaths = []string{
	"./.env.pipekit",
	"./.env",
}

// LoaderOption customizes Load.
type LoaderOption func(*loaderOptions)

type loaderOptions struct {
	configFile string
	envFile    string
}

// WithConfigFile sets an explicit config file path.
func WithConfigFile(path string) LoaderOption {
	return func(o *loaderOptions) { o.configFile = path }
}

// WithEnvFile sets an explicit .env file path.
func WithEnvFile(path string) LoaderOption {
	return func(o *loaderOptions) { o.envFile = path }
}

// Load builds the service configuration: YAML file first, then .env file,
// then process environment variables, later sources overriding earlier
// ones. Defaults are applied and the result validated before returning.
func Load(opts ...LoaderOption) (*Config, error) {
	var o loaderOptions
	for _, opt := range opts {
		opt(&o)
	}

	v := viper.New()

	configFile := o.configFile
	if configFile == "" {
		configFile = firstExisting(configSearchPaths)
	}
	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: reading %s: %w", configFile, err)
		}
	}

	envFile := o.envFile
	if envFile == "" {
		envFile = firstExisting(envSearchPaths)
	}
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return nil, fmt.Errorf("config: loading %s: %w", envFile, err)
		}
	}

	// PIPEKIT_SERVER_PORT overrides server.port, and so on.
	v.SetEnvPrefix("PIPEKIT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindEnvKeys(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}

	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// bindEnvKeys registers the nested keys viper should consider for
// environment overrides. AutomaticEnv alone only sees keys it already
// knows about, so the well-known sections are bound explicitly.
func bindEnvKeys(v *viper.Viper) {
	keys := []string{
		"name", "environment", "debug",
		"logging.level", "logging.format", "logging.output",
		"pipelines.dirs",
		"run.max_parallel", "run.lock_timeout",
		"lock.enabled", "lock.addr", "lock.password", "lock.db",
		"lock.key_prefix", "lock.lock_ttl", "lock.poll_interval",
		"server.enabled", "server.host", "server.port",
		"observability.enabled",
		"observability.tracing.endpoint", "observability.metrics.endpoint",
	}
	for _, key := range keys {
		_ = v.BindEnv(key)
	}
}

func firstExisting(paths []string) string {
	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
