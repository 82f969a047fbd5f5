package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/kbukum/pipekit/component"
	"github.com/kbukum/pipekit/config"
	"github.com/kbukum/pipekit/logger"
	"github.com/kbukum/pipekit/mutex"
	"github.com/kbukum/pipekit/observability"
	"github.com/kbukum/pipekit/pipeline"
	"github.com/kbukum/pipekit/run"
	"github.com/kbukum/pipekit/server"
	"github.com/kbukum/pipekit/version"
)

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "run the HTTP API for submitting and inspecting runs",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			log := newLogger(cfg)

			ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			shutdownTelemetry, metrics, err := initTelemetry(ctx, cfg, log)
			if err != nil {
				return err
			}
			defer shutdownTelemetry()

			actions, err := loadActions(cfg)
			if err != nil {
				return err
			}
			loader := pipeline.NewFileLoader(cfg.Pipelines.Dirs...)

			components := component.NewRegistry()

			var locker mutex.Locker = mutex.NewLocal()
			if cfg.Lock.Enabled {
				redisLocker, err := mutex.NewRedis(cfg.Lock, log)
				if err != nil {
					return err
				}
				if err := components.Register(mutex.NewComponentFor(redisLocker, log)); err != nil {
					return err
				}
				locker = redisLocker
			}

			srv := server.New(cfg.Server, log)
			srv.ApplyMiddleware()
			if err := components.Register(srv); err != nil {
				return err
			}

			runner := run.New(actions, loader, locker, log)
			runner.MaxParallel = cfg.Run.MaxParallel
			runner.LockTimeout = cfg.Run.LockTimeoutDuration()
			runner.Metrics = metrics

			api := &server.API{
				Runs:       run.NewManager(runner),
				Loader:     loader,
				Components: components,
			}
			api.Register(srv.Engine())

			if err := components.StartAll(ctx); err != nil {
				return err
			}

			log.Info("orchestrator ready", logger.Fields(
				"addr", srv.Addr(),
				"version", version.GetShortVersion(),
			))

			<-ctx.Done()
			log.Info("shutdown signal received")

			stopCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
			defer cancel()
			return components.StopAll(stopCtx)
		},
	}
}

// initTelemetry wires OTLP export when observability is enabled. It always
// returns usable metric instruments; with export disabled they record into
// the no-op global provider.
func initTelemetry(ctx context.Context, cfg *config.Config, log *logger.Logger) (func(), *observability.Metrics, error) {
	shutdown := func() {}

	if cfg.Observability.Enabled {
		tracing := cfg.Observability.Tracing
		if tracing.ServiceName == "" {
			tracing = observability.DefaultTracerConfig(cfg.Name)
			tracing.Environment = cfg.Environment
		}
		tp, err := observability.InitTracer(ctx, tracing)
		if err != nil {
			return nil, nil, err
		}

		metering := cfg.Observability.Metrics
		if metering.ServiceName == "" {
			metering = observability.DefaultMeterConfig(cfg.Name)
			metering.Environment = cfg.Environment
		}
		mp, err := observability.InitMeter(ctx, &metering)
		if err != nil {
			_ = tp.Shutdown(context.Background())
			return nil, nil, err
		}

		shutdown = func() {
			flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := tp.Shutdown(flushCtx); err != nil {
				log.Warn("tracer shutdown failed", logger.Fields("error", err.Error()))
			}
			if err := mp.Shutdown(flushCtx); err != nil {
				log.Warn("meter shutdown failed", logger.Fields("error", err.Error()))
			}
		}
	}

	metrics, err := observability.NewMetrics(observability.Meter("pipekit"))
	if err != nil {
		return nil, nil, err
	}
	return shutdown, metrics, nil
}
