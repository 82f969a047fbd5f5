package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/kbukum/pipekit/config"
	"github.com/kbukum/pipekit/executor"
	"github.com/kbukum/pipekit/logger"
	"github.com/kbukum/pipekit/mutex"
	"github.com/kbukum/pipekit/pipeline"
	"github.com/kbukum/pipekit/run"
)

// loadConfig builds the service configuration, honoring the global
// --config flag.
func loadConfig(cmd *cli.Command) (*config.Config, error) {
	var opts []config.LoaderOption
	if path := cmd.String("config"); path != "" {
		opts = append(opts, config.WithConfigFile(path))
	}
	return config.Load(opts...)
}

// newLogger initializes the process logger from configuration.
func newLogger(cfg *config.Config) *logger.Logger {
	log := logger.New(&cfg.Logging, cfg.Name)
	logger.SetGlobalLogger(log)
	return log
}

// loadActions registers command actions from every actions.yaml found in
// the pipeline directories.
func loadActions(cfg *config.Config) (*executor.Registry, error) {
	registry := executor.NewRegistry()
	for _, dir := range cfg.Pipelines.Dirs {
		for _, name := range []string{"actions.yaml", "actions.yml"} {
			path := filepath.Join(dir, name)
			if _, err := os.Stat(path); err != nil {
				continue
			}
			if err := executor.LoadCommandActions(registry, path); err != nil {
				return nil, fmt.Errorf("loading actions from %s: %w", path, err)
			}
		}
	}
	return registry, nil
}

// newLocker picks the lock backend: Redis when configured, otherwise
// in-process.
func newLocker(cfg *config.Config, log *logger.Logger) (mutex.Locker, func(), error) {
	if !cfg.Lock.Enabled {
		return mutex.NewLocal(), func() {}, nil
	}
	locker, err := mutex.NewRedis(cfg.Lock, log)
	if err != nil {
		return nil, nil, err
	}
	return locker, func() { _ = locker.Close() }, nil
}

// newRunner assembles the runner from configuration.
func newRunner(cfg *config.Config, log *logger.Logger) (*run.Runner, func(), error) {
	actions, err := loadActions(cfg)
	if err != nil {
		return nil, nil, err
	}
	locker, cleanup, err := newLocker(cfg, log)
	if err != nil {
		return nil, nil, err
	}

	runner := run.New(actions, pipeline.NewFileLoader(cfg.Pipelines.Dirs...), locker, log)
	runner.MaxParallel = cfg.Run.MaxParallel
	runner.LockTimeout = cfg.Run.LockTimeoutDuration()
	return runner, cleanup, nil
}

// parseParams converts repeated KEY=VALUE flags into a parameter map.
func parseParams(pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	params := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid parameter %q, expected KEY=VALUE", pair)
		}
		params[key] = value
	}
	return params, nil
}
